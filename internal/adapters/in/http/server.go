package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tracking/internal/core/application/usecases/commands"
	"tracking/internal/core/application/usecases/queries"
	"tracking/internal/core/domain/model/kernel"
	"tracking/internal/core/domain/model/order"
	"tracking/internal/core/domain/model/stage"
	"tracking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server handles HTTP requests by delegating to the application use cases.
type Server struct {
	// Command handlers
	createOrderHandler     commands.CreateOrderCommandHandler
	applyTransitionHandler commands.ApplyTransitionCommandHandler
	cancelOrderHandler     commands.CancelOrderCommandHandler

	// Query handlers
	trackOrderHandler queries.TrackOrderQueryHandler

	now    func() time.Time
	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	applyTransitionHandler commands.ApplyTransitionCommandHandler,
	cancelOrderHandler commands.CancelOrderCommandHandler,
	trackOrderHandler queries.TrackOrderQueryHandler,
	now func() time.Time,
	logger *slog.Logger,
) *Server {
	return &Server{
		createOrderHandler:     createOrderHandler,
		applyTransitionHandler: applyTransitionHandler,
		cancelOrderHandler:     cancelOrderHandler,
		trackOrderHandler:      trackOrderHandler,
		now:                    now,
		logger:                 logger.With("component", "HTTPServer"),
	}
}

// TrackOrder handles GET /api/v1/orders/:id/track.
func (s *Server) TrackOrder(c echo.Context) error {
	orderID, err := orderIDParam(c)
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	query, err := queries.NewTrackOrderQuery(orderID, actorOf(c))
	if err != nil {
		return s.fail(c, err)
	}

	snapshot, err := s.trackOrderHandler.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return s.respond(c, http.StatusOK, snapshot)
}

// PatchOrder handles PATCH /api/v1/orders/:id: cancellation by the customer or a
// forward transition by the worker or system.
func (s *Server) PatchOrder(c echo.Context) error {
	orderID, err := orderIDParam(c)
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	var body PatchOrder
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	o, err := s.mutate(c, orderID, body)
	if err != nil {
		return s.fail(c, err)
	}

	snapshot, err := s.trackOrderHandler.Snapshot(c.Request().Context(), o)
	if err != nil {
		return s.fail(c, err)
	}

	return s.respond(c, http.StatusOK, snapshot)
}

// CreateOrder handles POST /api/v1/orders, the intake call of the order service.
func (s *Server) CreateOrder(c echo.Context) error {
	actor := actorOf(c)
	if actor.Role() != kernel.RoleSystem {
		return s.fail(c, errs.NewForbiddenError(actor.String(), "create orders"))
	}

	var body NewOrder
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	orderID := kernel.NewUUID()
	if body.Id != nil {
		id, err := kernel.UUIDFromString(body.Id.String())
		if err != nil {
			return badRequest(c, "invalid order id")
		}
		orderID = id
	}
	customerID, err := kernel.UUIDFromString(body.CustomerId.String())
	if err != nil {
		return badRequest(c, "invalid customer id")
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, body.CategoryId, customerID, s.now())
	if err != nil {
		return s.fail(c, err)
	}

	o, err := s.createOrderHandler.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	snapshot, err := s.trackOrderHandler.Snapshot(c.Request().Context(), o)
	if err != nil {
		return s.fail(c, err)
	}

	return s.respond(c, http.StatusCreated, snapshot)
}

// Health handles GET /health.
func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) mutate(c echo.Context, orderID kernel.UUID, body PatchOrder) (*order.Order, error) {
	ctx := c.Request().Context()
	actor := actorOf(c)
	at := s.now()

	action := strings.ToLower(strings.TrimSpace(body.Action))
	if action == "cancel" {
		cmd, err := commands.NewCancelOrderCommand(orderID, actor, body.CancelReason, at)
		if err != nil {
			return nil, err
		}
		return s.cancelOrderHandler.Handle(ctx, cmd)
	}

	if action == "advance" {
		from, err := stage.ParseKey(body.FromStage)
		if err != nil {
			return nil, errs.NewValueIsRequiredErrorWithCause("fromStage", err)
		}
		cmd, err := commands.NewAdvanceOrderCommand(orderID, from, actor, at)
		if err != nil {
			return nil, err
		}
		return s.applyTransitionHandler.Handle(ctx, cmd)
	}

	target, err := targetOf(action, body.TargetStage)
	if err != nil {
		return nil, err
	}
	cmd, err := commands.NewApplyTransitionCommand(orderID, target, actor, at)
	if err != nil {
		return nil, err
	}
	return s.applyTransitionHandler.Handle(ctx, cmd)
}

func targetOf(action, targetStage string) (stage.Key, error) {
	switch action {
	case "accept":
		return stage.Accepted, nil
	case "start":
		return stage.InProgress, nil
	case "complete":
		return stage.Completed, nil
	case "transition":
		key, err := stage.ParseKey(targetStage)
		if err != nil {
			return "", errs.NewValueIsRequiredErrorWithCause("targetStage", err)
		}
		return key, nil
	case "":
		return "", errs.NewValueIsRequiredError("action")
	default:
		return "", errs.NewValueIsInvalidError("action " + action)
	}
}

func (s *Server) respond(c echo.Context, code int, snapshot queries.TrackOrderQueryResponse) error {
	body, err := json.Marshal(toTracking(snapshot))
	if err != nil {
		return s.fail(c, err)
	}
	return writeTracked(c, code, body)
}
