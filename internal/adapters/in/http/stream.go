package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// StreamKeepAlive is the interval of comment frames on an idle stream.
const StreamKeepAlive = 15 * time.Second

// StreamOrder handles GET /api/v1/orders/:id/stream - server-sent events
// carrying a full snapshot on every committed change of the order. The
// subscription is released when the client goes away.
func (s *Server) StreamOrder(c echo.Context) error {
	orderID, err := parseID("id", c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	view, err := resolveView(c)
	if err != nil {
		return s.fail(c, err)
	}

	ctx := c.Request().Context()
	sub, err := s.handlers.Realtime.Subscribe(ctx, orderID, view)
	if err != nil {
		return s.fail(c, err)
	}
	defer sub.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	keepAlive := time.NewTicker(StreamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot, ok := <-sub.Snapshots():
			if !ok {
				return nil
			}
			data, marshalErr := json.Marshal(snapshot)
			if marshalErr != nil {
				s.logger.ErrorContext(ctx, "Encode snapshot", "error", marshalErr)
				continue
			}
			if _, err = fmt.Fprintf(w, "id: %d\nevent: snapshot\ndata: %s\n\n", snapshot.Version, data); err != nil {
				return nil
			}
			w.Flush()
		case <-keepAlive.C:
			if _, err = fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
