package queries

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"time"

	"pharmadelivery/internal/pkg/errs"
)

// DefaultReadTimeout bounds one-shot reads when no timeout is configured.
const DefaultReadTimeout = 5 * time.Second

// failFast runs read under timeout. A deadline or a broken connection is
// reported as errs.NetworkUnavailableError so callers can retry; other
// errors pass through.
func failFast(ctx context.Context, timeout time.Duration, operation string, read func(ctx context.Context) error) error {
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := read(ctx)
	if err == nil {
		return nil
	}
	if isUnavailable(err) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errs.NewNetworkUnavailableError(operation, err)
	}
	return err
}

func isUnavailable(err error) bool {
	var netErr net.Error
	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.As(err, &netErr)
}
