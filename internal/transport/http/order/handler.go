package order

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
	"github.com/campuswash/laundry/internal/orderview"
	"github.com/campuswash/laundry/internal/presentation/http/response"
	"github.com/campuswash/laundry/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/campuswash/laundry/transport/http/order")

// Service is the order use-case surface the handler depends on.
type Service interface {
	Create(ctx context.Context, p auth.Principal, order *entity.Order) error
	Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, p auth.Principal, filters orderview.FilterSet) ([]*entity.Order, error)
	Accept(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error)
	MarkPickedUp(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error)
	MarkDelivered(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error)
	MarkPaid(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error)
	History(ctx context.Context, p auth.Principal, id uuid.UUID) ([]*entity.OrderEvent, error)
}

type transitionFunc func(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error)

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes behind the bearer token middleware.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/orders", auth.Middleware(tokens))
	g.POST("", h.create, auth.RequireRole(entity.RoleStudent))
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.GET("/:id/events", h.history)

	launderers := auth.RequireRole(entity.RoleLaunderer)
	g.PATCH("/:id/accept", h.transition("accept", h.svc.Accept), launderers)
	g.PATCH("/:id/pickup", h.transition("pickup", h.svc.MarkPickedUp), launderers)
	g.PATCH("/:id/deliver", h.transition("deliver", h.svc.MarkDelivered), launderers)
	g.PATCH("/:id/pay", h.transition("pay", h.svc.MarkPaid), auth.RequireRole(entity.RoleStudent))
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	p, id, err := principalAndID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	order, err := h.svc.Get(ctx, p, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.WithData(dto.FromOrder(order, true)).Build()
}

func (h *Handler) history(c echo.Context) error {
	b := response.New(c)

	p, id, err := principalAndID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.history", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	events, err := h.svc.History(ctx, p, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithMeta("count", len(events)).WithData(dto.FromOrderEvents(events)).Build()
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return b.WithError(errorbank.Unauthorized("authentication required")).Build()
	}
	filters, err := orderview.FromClicks(c.QueryParams()["filter"])
	if err != nil {
		return b.WithError(errorbank.BadRequest(err.Error(), errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx, p, filters)
	if err != nil {
		return b.WithError(err).Build()
	}

	return b.
		WithMeta("count", len(orders)).
		WithData(dto.OrderListResponse{Filters: filters.Tags(), Orders: dto.FromOrders(orders)}).
		Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return b.WithError(errorbank.Unauthorized("authentication required")).Build()
	}

	var payload dto.CreateOrderRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if err := c.Validate(&payload); err != nil {
		return b.WithError(err).Build()
	}

	order := &entity.Order{
		PickupAddress:   payload.PickupAddress,
		DeliveryAddress: payload.DeliveryAddress,
		PickupDate:      payload.PickupDate,
		PickupTime:      payload.PickupTime,
		DeliveryDate:    payload.DeliveryDate,
		DeliveryTime:    payload.DeliveryTime,
	}
	for _, item := range payload.Items {
		order.Items = append(order.Items, &entity.OrderItem{
			Name:         item.Name,
			WashType:     entity.WashType(item.WashType),
			Quantity:     item.Quantity,
			PricePerItem: item.PricePerItem,
		})
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create")
	span.SetAttributes(attribute.Int("order.items", len(order.Items)))
	defer span.End()

	if err := h.svc.Create(ctx, p, order); err != nil {
		return b.WithError(err).Build()
	}

	return b.WithStatus(http.StatusCreated).WithData(dto.FromOrder(order, true)).Build()
}

func (h *Handler) transition(name string, apply transitionFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		b := response.New(c)

		p, id, err := principalAndID(c)
		if err != nil {
			return b.WithError(err).Build()
		}

		ctx, span := httpTracer.Start(c.Request().Context(), "orders."+name, trace.WithAttributes(attribute.String("order.id", id.String())))
		defer span.End()

		order, err := apply(ctx, p, id)
		if err != nil {
			return b.WithError(err).Build()
		}
		return b.WithData(dto.FromOrder(order, true)).Build()
	}
}

func principalAndID(c echo.Context) (auth.Principal, uuid.UUID, error) {
	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, uuid.Nil, errorbank.Unauthorized("authentication required")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return auth.Principal{}, uuid.Nil, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return p, id, nil
}
