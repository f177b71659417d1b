package notification

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/dto"
	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/presentation/http/response"
	"github.com/campuswash/laundry/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/campuswash/laundry/transport/http/notification")

// Service is the notification surface the handler depends on.
type Service interface {
	Create(ctx context.Context, p auth.Principal, orderID uuid.UUID, message string) (*entity.Notification, error)
	List(ctx context.Context, p auth.Principal) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error
}

// Handler exposes notification endpoints.
type Handler struct {
	svc Service
}

// NewHandler constructs a notification Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts /notifications behind the bearer token middleware.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/notifications", auth.Middleware(tokens))
	g.POST("", h.create, auth.RequireRole(entity.RoleLaunderer))
	g.GET("", h.list, auth.RequireRole(entity.RoleStudent))
	g.PATCH("/:id/read", h.markRead, auth.RequireRole(entity.RoleStudent))
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return b.WithError(errorbank.Unauthorized("authentication required")).Build()
	}
	var payload dto.CreateNotificationRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid orderId", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.create", trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	n, err := h.svc.Create(ctx, p, orderID, payload.Message)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.FromNotification(n)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return b.WithError(errorbank.Unauthorized("authentication required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.list")
	defer span.End()

	items, err := h.svc.List(ctx, p)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithMeta("count", len(items)).WithData(dto.FromNotifications(items)).Build()
}

func (h *Handler) markRead(c echo.Context) error {
	b := response.New(c)

	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return b.WithError(errorbank.Unauthorized("authentication required")).Build()
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "notifications.markRead", trace.WithAttributes(attribute.String("notification.id", id.String())))
	defer span.End()

	if err := h.svc.MarkRead(ctx, p, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(map[string]any{"id": id.String(), "read": true}).Build()
}
