package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"pharmadelivery/internal/core/application/realtime"
	"pharmadelivery/internal/core/application/usecases/commands"
	"pharmadelivery/internal/core/application/usecases/queries"
	"pharmadelivery/internal/core/domain/model/kernel"
	"pharmadelivery/internal/core/domain/model/order"
	"pharmadelivery/internal/core/ports"
	"pharmadelivery/internal/pkg/errs"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockCommandHandler[C any] struct {
	mock.Mock
}

func (m *MockCommandHandler[C]) Handle(ctx context.Context, cmd C) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockResultHandler[R any, T any] struct {
	mock.Mock
}

func (m *MockResultHandler[R, T]) Handle(ctx context.Context, request R) (T, error) {
	args := m.Called(ctx, request)
	result, _ := args.Get(0).(T)
	return result, args.Error(1)
}

type feedStub struct {
	ch chan ports.Change
}

func (f *feedStub) Subscribe(context.Context) (<-chan ports.Change, func(), error) {
	return f.ch, func() {}, nil
}

type fixture struct {
	auth Authenticator
	echo *echo.Echo

	createOrder       *MockCommandHandler[commands.CreateOrderCommand]
	changeStatus      *MockCommandHandler[commands.ChangeOrderStatusCommand]
	reactivate        *MockCommandHandler[commands.ReactivateOrderCommand]
	assign            *MockCommandHandler[commands.AssignDeliverymanCommand]
	submitReview      *MockResultHandler[commands.SubmitReviewCommand, bool]
	declineReview     *MockResultHandler[commands.DeclineReviewCommand, bool]
	createDeliveryman *MockCommandHandler[commands.CreateDeliverymanCommand]
	startRun          *MockCommandHandler[commands.StartDeliveryRunCommand]
	addOrders         *MockCommandHandler[commands.AddOrdersToRunCommand]
	checkpoint        *MockCommandHandler[commands.RecordCheckpointCommand]
	completeRun       *MockCommandHandler[commands.CompleteDeliveryRunCommand]
	listOrders        *MockResultHandler[queries.ListOrdersQuery, []queries.ListOrdersQueryResponse]
	tracking          *MockResultHandler[queries.GetOrderTrackingQuery, queries.OrderSnapshot]
	tip               *MockResultHandler[queries.GetTipKeyQuery, queries.GetTipKeyQueryResponse]
	feed              *feedStub
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	auth, err := NewAuthenticator(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		auth:              auth,
		createOrder:       &MockCommandHandler[commands.CreateOrderCommand]{},
		changeStatus:      &MockCommandHandler[commands.ChangeOrderStatusCommand]{},
		reactivate:        &MockCommandHandler[commands.ReactivateOrderCommand]{},
		assign:            &MockCommandHandler[commands.AssignDeliverymanCommand]{},
		submitReview:      &MockResultHandler[commands.SubmitReviewCommand, bool]{},
		declineReview:     &MockResultHandler[commands.DeclineReviewCommand, bool]{},
		createDeliveryman: &MockCommandHandler[commands.CreateDeliverymanCommand]{},
		startRun:          &MockCommandHandler[commands.StartDeliveryRunCommand]{},
		addOrders:         &MockCommandHandler[commands.AddOrdersToRunCommand]{},
		checkpoint:        &MockCommandHandler[commands.RecordCheckpointCommand]{},
		completeRun:       &MockCommandHandler[commands.CompleteDeliveryRunCommand]{},
		listOrders:        &MockResultHandler[queries.ListOrdersQuery, []queries.ListOrdersQueryResponse]{},
		tracking:          &MockResultHandler[queries.GetOrderTrackingQuery, queries.OrderSnapshot]{},
		tip:               &MockResultHandler[queries.GetTipKeyQuery, queries.GetTipKeyQueryResponse]{},
		feed:              &feedStub{ch: make(chan ports.Change, 4)},
	}

	server, err := NewServer(Handlers{
		CreateOrder:       f.createOrder,
		ChangeOrderStatus: f.changeStatus,
		ReactivateOrder:   f.reactivate,
		AssignDeliveryman: f.assign,
		SubmitReview:      f.submitReview,
		DeclineReview:     f.declineReview,
		CreateDeliveryman: f.createDeliveryman,
		StartDeliveryRun:  f.startRun,
		AddOrdersToRun:    f.addOrders,
		RecordCheckpoint:  f.checkpoint,
		CompleteRun:       f.completeRun,
		ListOrders:        f.listOrders,
		OrderTracking:     f.tracking,
		TipKey:            f.tip,
		Realtime:          realtime.NewBridge(f.feed, f.tracking, logger),
	}, auth, logger)
	require.NoError(t, err)
	f.echo = server.NewEcho()

	return f
}

func (f *fixture) token(t *testing.T, role order.Actor) string {
	t.Helper()
	tok, err := f.auth.IssueToken("user-1", role, time.Hour, time.Now())
	require.NoError(t, err)
	return tok
}

func (f *fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var body Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_Health(t *testing.T) {
	t.Run("should report healthy", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/health", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Healthy", rec.Body.String())
	})
}

func TestServer_CreateOrder(t *testing.T) {
	unitID := kernel.NewUUID()
	body := `{
		"number": "1042",
		"customerName": "Maria Souza",
		"customerPhone": "+55 11 99999-0000",
		"address": "Av. Paulista, 1000",
		"latitude": -23.56,
		"longitude": -46.65,
		"items": ["Dipirona 500mg"],
		"priceNumber": 12.50,
		"pharmacyUnitId": "` + unitID.String() + `"
	}`

	t.Run("should create the order on behalf of the staff member", func(t *testing.T) {
		f := newFixture(t)
		f.createOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
			p := cmd.Params()
			return p.CreatedBy == order.ActorManager &&
				p.Number == "1042" &&
				p.PharmacyUnitID.IsEqual(unitID) &&
				p.Location != nil
		})).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", body, f.token(t, order.ActorManager))

		require.Equal(t, http.StatusCreated, rec.Code)
		var created CreatedResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		_, err := kernel.UUIDFromString(created.ID)
		require.NoError(t, err)
		f.createOrder.AssertExpectations(t)
	})

	t.Run("should require a token", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/orders", body, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		f.createOrder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should forbid couriers", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/orders", body, f.token(t, order.ActorCourier))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("should reject a malformed pharmacy unit", func(t *testing.T) {
		f := newFixture(t)
		bad := strings.Replace(body, unitID.String(), "not-a-uuid", 1)

		rec := f.do(http.MethodPost, "/api/v1/orders", bad, f.token(t, order.ActorAdmin))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "pharmacyUnitId")
	})
}

func TestServer_ChangeOrderStatus(t *testing.T) {
	orderID := kernel.NewUUID()
	path := "/api/v1/orders/" + orderID.String() + "/transitions"

	t.Run("should apply the transition as the token's actor", func(t *testing.T) {
		f := newFixture(t)
		f.changeStatus.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
			return cmd.OrderID().IsEqual(orderID) &&
				cmd.Target() == order.OnTheWay &&
				cmd.Actor() == order.ActorCourier
		})).Return(nil).Once()

		rec := f.do(http.MethodPost, path, `{"status":"A caminho"}`, f.token(t, order.ActorCourier))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		f.changeStatus.AssertExpectations(t)
	})

	errorCases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid transition", errs.NewInvalidTransitionError("Entregue", "Pendente", order.ErrOrderIsDelivered), http.StatusConflict},
		{"cancel without reason", errs.NewInvalidTransitionError("Pendente", "Cancelado", order.ErrReasonIsRequired), http.StatusConflict},
		{"forbidden role", errs.NewForbiddenError("courier", "move an order to Cancelado"), http.StatusForbidden},
		{"exhausted retries", errs.NewVersionIsInvalidError("order"), http.StatusConflict},
		{"missing order", errs.NewObjectNotFoundError("order", orderID.String()), http.StatusNotFound},
		{"store unavailable", errs.NewNetworkUnavailableError("get order", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range errorCases {
		t.Run("should map "+tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.changeStatus.On("Handle", mock.Anything, mock.Anything).Return(tc.err).Once()

			rec := f.do(http.MethodPost, path, `{"status":"Pendente"}`, f.token(t, order.ActorAdmin))

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.code, decodeError(t, rec).Code)
		})
	}

	t.Run("should hide internal error details", func(t *testing.T) {
		f := newFixture(t)
		f.changeStatus.On("Handle", mock.Anything, mock.Anything).Return(errors.New("pq: secret detail")).Once()

		rec := f.do(http.MethodPost, path, `{"status":"Pendente"}`, f.token(t, order.ActorAdmin))

		assert.NotContains(t, rec.Body.String(), "secret detail")
	})

	t.Run("should reject an unknown status", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, path, `{"status":"Perdido"}`, f.token(t, order.ActorAdmin))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.changeStatus.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should reject a tampered token", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, path, `{"status":"Entregue"}`, f.token(t, order.ActorCourier)+"x")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestServer_ReactivateAndAssign(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("should reactivate with the note", func(t *testing.T) {
		f := newFixture(t)
		f.reactivate.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ReactivateOrderCommand) bool {
			return cmd.Actor() == order.ActorManager && cmd.Note() == "customer called back"
		})).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/reactivation",
			`{"note":"customer called back"}`, f.token(t, order.ActorManager))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		f.reactivate.AssertExpectations(t)
	})

	t.Run("should assign the deliveryman", func(t *testing.T) {
		f := newFixture(t)
		deliverymanID := kernel.NewUUID()
		f.assign.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.AssignDeliverymanCommand) bool {
			return cmd.DeliverymanID().IsEqual(deliverymanID) && cmd.LicensePlate() == "ABC1D23"
		})).Return(nil).Once()

		rec := f.do(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/deliveryman",
			`{"deliverymanId":"`+deliverymanID.String()+`","licensePlate":"ABC1D23"}`, f.token(t, order.ActorAdmin))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		f.assign.AssertExpectations(t)
	})

	t.Run("should forbid couriers from assigning", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/deliveryman",
			`{"deliverymanId":"`+kernel.NewUUID().String()+`"}`, f.token(t, order.ActorCourier))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		f.assign.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}

func TestServer_GetOrder(t *testing.T) {
	orderID := kernel.NewUUID()
	path := "/api/v1/orders/" + orderID.String()

	viewIs := func(view queries.View) interface{} {
		return mock.MatchedBy(func(q queries.GetOrderTrackingQuery) bool {
			return q.OrderID().IsEqual(orderID) && q.View() == view
		})
	}

	t.Run("should serve the customer view without a token", func(t *testing.T) {
		f := newFixture(t)
		f.tracking.On("Handle", mock.Anything, viewIs(queries.ViewCustomer)).
			Return(queries.OrderSnapshot{ID: orderID.String(), Status: "Pendente", Version: 1}, nil).Once()

		rec := f.do(http.MethodGet, path, "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var snap queries.OrderSnapshot
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
		assert.Equal(t, orderID.String(), snap.ID)
		f.tracking.AssertExpectations(t)
	})

	t.Run("should derive the view from the role", func(t *testing.T) {
		f := newFixture(t)
		f.tracking.On("Handle", mock.Anything, viewIs(queries.ViewCourier)).
			Return(queries.OrderSnapshot{ID: orderID.String()}, nil).Once()
		f.tracking.On("Handle", mock.Anything, viewIs(queries.ViewAdmin)).
			Return(queries.OrderSnapshot{ID: orderID.String()}, nil).Once()

		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, "", f.token(t, order.ActorCourier)).Code)
		assert.Equal(t, http.StatusOK, f.do(http.MethodGet, path, "", f.token(t, order.ActorManager)).Code)
		f.tracking.AssertExpectations(t)
	})

	t.Run("should guard the courier and admin views", func(t *testing.T) {
		f := newFixture(t)

		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, path+"?view=courier", "", "").Code)
		assert.Equal(t, http.StatusUnauthorized, f.do(http.MethodGet, path+"?view=admin", "", "").Code)
		assert.Equal(t, http.StatusForbidden,
			f.do(http.MethodGet, path+"?view=admin", "", f.token(t, order.ActorCourier)).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, path+"?view=everything", "", "").Code)
		f.tracking.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should report an unreachable store as unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.tracking.On("Handle", mock.Anything, mock.Anything).
			Return(queries.OrderSnapshot{}, errs.NewNetworkUnavailableError("get order tracking", context.DeadlineExceeded)).Once()

		rec := f.do(http.MethodGet, path, "", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("should reject a malformed id", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/orders/42", "", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_ListOrders(t *testing.T) {
	t.Run("should pass the filters to the query", func(t *testing.T) {
		f := newFixture(t)
		unitID := kernel.NewUUID()
		f.listOrders.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListOrdersQuery) bool {
			filter := q.Filter()
			return filter.Status != nil && *filter.Status == order.Delivered &&
				filter.PharmacyUnitID != nil && filter.PharmacyUnitID.IsEqual(unitID) &&
				filter.From != nil && filter.To == nil
		})).Return([]queries.ListOrdersQueryResponse{
			{ID: kernel.NewUUID(), Number: "1", Status: order.Delivered, Price: "R$ 10,00"},
		}, nil).Once()

		params := url.Values{}
		params.Set("status", "Entregue")
		params.Set("pharmacyUnitId", unitID.String())
		params.Set("from", "2026-01-01T00:00:00Z")

		rec := f.do(http.MethodGet, "/api/v1/orders?"+params.Encode(), "", f.token(t, order.ActorAdmin))

		require.Equal(t, http.StatusOK, rec.Code)
		var items []OrderListItem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, "Entregue", items[0].Status)
		f.listOrders.AssertExpectations(t)
	})

	t.Run("should reject an inverted period", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/orders?from=2026-02-01T00:00:00Z&to=2026-01-01T00:00:00Z",
			"", f.token(t, order.ActorAdmin))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should forbid couriers", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/orders", "", f.token(t, order.ActorCourier))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestServer_Review(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("should submit a review without a token", func(t *testing.T) {
		f := newFixture(t)
		f.submitReview.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.SubmitReviewCommand) bool {
			return cmd.Rating() == 5 && cmd.Comment() == "Rápido"
		})).Return(true, nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/review", `{"rating":5,"comment":"Rápido"}`, "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"applied":true}`, rec.Body.String())
	})

	t.Run("should map an out of range rating", func(t *testing.T) {
		f := newFixture(t)
		f.submitReview.On("Handle", mock.Anything, mock.Anything).
			Return(false, errs.NewValueIsOutOfRangeError("rating", 5, 1, 4)).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/review", `{"rating":5}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.submitReview.AssertExpectations(t)
	})

	t.Run("should report a repeated decline as not applied", func(t *testing.T) {
		f := newFixture(t)
		f.declineReview.On("Handle", mock.Anything, mock.Anything).Return(false, nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/review/decline", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"applied":false}`, rec.Body.String())
	})

	t.Run("should disclose the tip key", func(t *testing.T) {
		f := newFixture(t)
		f.tip.On("Handle", mock.Anything, mock.Anything).
			Return(queries.GetTipKeyQueryResponse{DeliverymanName: "João", ChavePix: "joao@pix"}, nil).Once()

		rec := f.do(http.MethodGet, "/api/v1/orders/"+orderID.String()+"/tip", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"deliverymanName":"João","chavePix":"joao@pix"}`, rec.Body.String())
	})
}

func TestServer_Runs(t *testing.T) {
	t.Run("should start a run and return its id", func(t *testing.T) {
		f := newFixture(t)
		deliverymanID, orderID := kernel.NewUUID(), kernel.NewUUID()
		f.startRun.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.StartDeliveryRunCommand) bool {
			return cmd.DeliverymanID().IsEqual(deliverymanID) &&
				len(cmd.OrderIDs()) == 1 && cmd.OrderIDs()[0].IsEqual(orderID)
		})).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/runs",
			`{"deliverymanId":"`+deliverymanID.String()+`","orderIds":["`+orderID.String()+`"]}`,
			f.token(t, order.ActorCourier))

		assert.Equal(t, http.StatusCreated, rec.Code)
		f.startRun.AssertExpectations(t)
	})

	t.Run("should record a checkpoint without a device timestamp", func(t *testing.T) {
		f := newFixture(t)
		runID := kernel.NewUUID()
		f.checkpoint.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.RecordCheckpointCommand) bool {
			return cmd.RunID().IsEqual(runID) && cmd.Latitude() == -23.5 && cmd.Timestamp().IsZero()
		})).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/runs/"+runID.String()+"/checkpoints",
			`{"latitude":-23.5,"longitude":-46.6}`, f.token(t, order.ActorCourier))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		f.checkpoint.AssertExpectations(t)
	})

	t.Run("should add orders and complete the run", func(t *testing.T) {
		f := newFixture(t)
		runID := kernel.NewUUID()
		f.addOrders.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()
		f.completeRun.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()
		tok := f.token(t, order.ActorCourier)

		add := f.do(http.MethodPost, "/api/v1/runs/"+runID.String()+"/orders",
			`{"orderIds":["`+kernel.NewUUID().String()+`"]}`, tok)
		complete := f.do(http.MethodPost, "/api/v1/runs/"+runID.String()+"/completion", "", tok)

		assert.Equal(t, http.StatusNoContent, add.Code)
		assert.Equal(t, http.StatusNoContent, complete.Code)
	})

	t.Run("should require a token for courier actions", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/runs/"+kernel.NewUUID().String()+"/checkpoints",
			`{"latitude":1,"longitude":1}`, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestServer_CreateDeliveryman(t *testing.T) {
	t.Run("should create a deliveryman as staff", func(t *testing.T) {
		f := newFixture(t)
		f.createDeliveryman.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateDeliverymanCommand) bool {
			return cmd.Name() == "João" && cmd.ChavePix() == "joao@pix"
		})).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/deliverymen",
			`{"name":"João","pharmacyUnitId":"`+kernel.NewUUID().String()+`","chavePix":"joao@pix"}`,
			f.token(t, order.ActorAdmin))

		assert.Equal(t, http.StatusCreated, rec.Code)
		f.createDeliveryman.AssertExpectations(t)
	})
}

func TestServer_StreamOrder(t *testing.T) {
	t.Run("should push the current snapshot and every change", func(t *testing.T) {
		f := newFixture(t)
		orderID := kernel.NewUUID()
		f.tracking.On("Handle", mock.Anything, mock.Anything).
			Return(queries.OrderSnapshot{ID: orderID.String(), Status: "Pendente", Version: 1}, nil).Once()
		f.tracking.On("Handle", mock.Anything, mock.Anything).
			Return(queries.OrderSnapshot{ID: orderID.String(), Status: "Em Preparação", Version: 2}, nil).Once()

		srv := httptest.NewServer(f.echo)
		defer srv.Close()

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/orders/"+orderID.String()+"/stream", nil)
		require.NoError(t, err)

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/event-stream", resp.Header.Get(echo.HeaderContentType))

		events := readEvents(resp.Body)

		first := nextEvent(t, events)
		assert.Contains(t, first, "id: 1")
		assert.Contains(t, first, `"status":"Pendente"`)

		f.feed.ch <- ports.Change{Kind: ports.ChangeKindOrder, ID: orderID.String(), Version: 2}

		second := nextEvent(t, events)
		assert.Contains(t, second, "id: 2")
		assert.Contains(t, second, `"status":"Em Preparação"`)
	})

	t.Run("should fail before streaming when the order cannot be read", func(t *testing.T) {
		f := newFixture(t)
		f.tracking.On("Handle", mock.Anything, mock.Anything).
			Return(queries.OrderSnapshot{}, errs.NewObjectNotFoundError("order", "x")).Once()

		rec := f.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String()+"/stream", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("should accept the token as a query parameter", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String()+"/stream?view=admin&access_token="+
			f.token(t, order.ActorCourier), "", "")

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

// readEvents splits a server-sent events body into frames.
func readEvents(body io.Reader) <-chan string {
	out := make(chan string, 8)
	go func() {
		defer close(out)
		scanner := bufio.NewScanner(body)
		var frame strings.Builder
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				if frame.Len() > 0 {
					out <- frame.String()
					frame.Reset()
				}
				continue
			}
			frame.WriteString(line)
			frame.WriteString("\n")
		}
	}()
	return out
}

func nextEvent(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "stream ended")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return ""
	}
}

func TestAuthenticator(t *testing.T) {
	auth, err := NewAuthenticator(testSecret)
	require.NoError(t, err)

	t.Run("should resolve subject and role", func(t *testing.T) {
		tok, err := auth.IssueToken("42", order.ActorCourier, time.Hour, time.Now())
		require.NoError(t, err)

		p, err := auth.Parse(tok)

		require.NoError(t, err)
		assert.Equal(t, Principal{Subject: "42", Actor: order.ActorCourier}, p)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		tok, err := auth.IssueToken("42", order.ActorAdmin, time.Minute, time.Now().Add(-time.Hour))
		require.NoError(t, err)

		_, err = auth.Parse(tok)

		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("should reject another signing method", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
			Role:             "admin",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = auth.Parse(tok)

		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("should reject an unknown role", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			Role:             "customer",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = auth.Parse(tok)

		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("should require a secret", func(t *testing.T) {
		_, err := NewAuthenticator(" ")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestServer_RequestValidation(t *testing.T) {
	t.Run("should reject a create order body without items", func(t *testing.T) {
		f := newFixture(t)
		body := `{
			"number": "1043",
			"customerName": "Ana",
			"customerPhone": "+55 11 98888-0000",
			"address": "Rua Augusta, 10",
			"priceNumber": 8,
			"pharmacyUnitId": "` + kernel.NewUUID().String() + `"
		}`

		rec := f.do(http.MethodPost, "/api/v1/orders", body, f.token(t, order.ActorManager))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "items")
		f.createOrder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should reject a checkpoint off the globe", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/runs/"+kernel.NewUUID().String()+"/checkpoints",
			`{"latitude":120,"longitude":-46.6}`, f.token(t, order.ActorCourier))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "latitude")
		f.checkpoint.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should reject a rating outside one to five before the handler", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/review", `{"rating":0}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "rating")
		f.submitReview.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should reject an unknown view", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/orders/"+kernel.NewUUID().String()+"?view=everything", "", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "view")
		f.tracking.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should leave undocumented routes to the router", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/api/v1/unknown", "", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("should serve the document", func(t *testing.T) {
		f := newFixture(t)

		rec := f.do(http.MethodGet, "/openapi.yaml", "", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")
		assert.Contains(t, rec.Body.String(), "/api/v1/runs/{id}/checkpoints")
	})
}
