package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/cache"
	"github.com/campuswash/laundry/internal/config"
	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/messaging"
	"github.com/campuswash/laundry/internal/orderview"
	repo "github.com/campuswash/laundry/internal/repository/order"
	"github.com/campuswash/laundry/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/campuswash/laundry/service/order")
	serviceMeter  = otel.Meter("github.com/campuswash/laundry/service/order")
)

// Store is the persistence the service needs; *repo.Repository satisfies it.
type Store interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, q repo.ListQuery) ([]*entity.Order, error)
	ApplyTransition(ctx context.Context, id uuid.UUID, transition entity.Transition, actorID uuid.UUID, mutate func(*entity.Order) error) (*entity.Order, error)
	Events(ctx context.Context, id uuid.UUID) ([]*entity.OrderEvent, error)
}

// Notifier tells the student about a transition. Failures never undo the transition.
type Notifier interface {
	Notify(ctx context.Context, order *entity.Order, transition entity.Transition, launderer string) error
}

// Service encapsulates business logic around orders.
type Service struct {
	store       Store
	cache       cache.Store
	cacheTTL    time.Duration
	logger      *zap.Logger
	publisher   messaging.Client
	publish     bool
	notifier    Notifier
	transitions metric.Int64Counter
	now         func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Cache     cache.Store
	Config    config.Config
	Logger    *zap.Logger
	Publisher messaging.Client
	Notifier  Notifier
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	s := &Service{
		store:     p.Store,
		cache:     p.Cache,
		cacheTTL:  p.Config.Cache.DefaultTTL,
		logger:    p.Logger,
		publisher: p.Publisher,
		publish:   p.Config.Messaging.Enabled,
		notifier:  p.Notifier,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	counter, err := serviceMeter.Int64Counter("laundry.order.transitions",
		metric.WithDescription("Order lifecycle transitions by outcome"),
	)
	if err != nil {
		s.logger.Warn("order transition counter unavailable", zap.Error(err))
	}
	s.transitions = counter
	return s
}

// Create places a new order for the calling student. The total is computed from the items.
func (s *Service) Create(ctx context.Context, p auth.Principal, order *entity.Order) error {
	if order == nil {
		return errorbank.BadRequest("order payload is required")
	}
	if !p.IsStudent() {
		return errorbank.Forbidden("only students can place orders")
	}
	if err := order.ValidateItems(); err != nil {
		return errorbank.BadRequest("invalid order items", errorbank.WithCause(err))
	}

	now := s.now()
	order.ID = uuid.New()
	order.StudentID = p.UserID
	order.LaundererID = nil
	order.AcceptedStatus, order.PickUpStatus, order.DeliveredStatus, order.Paid = false, false, false, false
	order.Version = 1
	order.CreatedAt = now
	order.UpdatedAt = now
	order.RefreshTotal()

	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.String("order.id", order.ID.String())))
	defer span.End()

	if err := s.store.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to create order", errorbank.WithCause(err))
	}
	return nil
}

// Get retrieves an order by id, consulting cache when available. Students only see
// their own orders; launderers see unassigned orders and their own.
func (s *Service) Get(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(p, order) {
		// Hide existence from callers who may not see it.
		return nil, errorbank.NotFound("order not found")
	}
	return order, nil
}

// History returns the transitions applied to an order the caller may view, oldest first.
func (s *Service) History(ctx context.Context, p auth.Principal, id uuid.UUID) ([]*entity.OrderEvent, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.History", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	order, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) || (err == nil && !canView(p, order)) {
		return nil, errorbank.NotFound("order not found")
	}
	if err != nil {
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	events, err := s.store.Events(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order history", errorbank.WithCause(err))
	}
	return events, nil
}

// List returns the orders visible to the caller that pass filters.
func (s *Service) List(ctx context.Context, p auth.Principal, filters orderview.FilterSet) ([]*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	var q repo.ListQuery
	switch {
	case p.IsStudent():
		q.StudentID = &p.UserID
	case p.IsLaunderer():
		q.LaundererID = &p.UserID
	default:
		return nil, errorbank.Forbidden("unknown role")
	}

	orders, err := s.store.List(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list orders", errorbank.WithCause(err))
	}
	return filters.Apply(orders), nil
}

// Accept marks an order accepted and assigns it to the calling launderer.
func (s *Service) Accept(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return s.transition(ctx, p, id, entity.TransitionAccept, func(o *entity.Order) error {
		if !p.IsLaunderer() {
			return errorbank.Forbidden("only launderers can accept orders")
		}
		return nil
	})
}

// MarkPickedUp records that the assigned launderer collected the laundry.
func (s *Service) MarkPickedUp(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return s.transition(ctx, p, id, entity.TransitionPickUp, assignedLaunderer(p))
}

// MarkDelivered records delivery. The order must be accepted and picked up.
func (s *Service) MarkDelivered(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return s.transition(ctx, p, id, entity.TransitionDeliver, assignedLaunderer(p))
}

// MarkPaid records payment by the owning student. It is independent of delivery progress.
func (s *Service) MarkPaid(ctx context.Context, p auth.Principal, id uuid.UUID) (*entity.Order, error) {
	return s.transition(ctx, p, id, entity.TransitionPay, func(o *entity.Order) error {
		if !p.IsStudent() || o.StudentID != p.UserID {
			return errorbank.Forbidden("only the ordering student can pay")
		}
		return nil
	})
}

func assignedLaunderer(p auth.Principal) func(*entity.Order) error {
	return func(o *entity.Order) error {
		if !p.IsLaunderer() {
			return errorbank.Forbidden("only launderers can update delivery progress")
		}
		if o.LaundererID != nil && *o.LaundererID != p.UserID {
			return errorbank.Forbidden("order is assigned to another launderer")
		}
		return nil
	}
}

func (s *Service) transition(ctx context.Context, p auth.Principal, id uuid.UUID, t entity.Transition, authorize func(*entity.Order) error) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Transition", trace.WithAttributes(
		attribute.String("order.id", id.String()),
		attribute.String("order.transition", string(t)),
	))
	defer span.End()

	order, err := s.store.ApplyTransition(ctx, id, t, p.UserID, func(o *entity.Order) error {
		if err := authorize(o); err != nil {
			return err
		}
		if err := o.Apply(t, s.now()); err != nil {
			return err
		}
		if t == entity.TransitionAccept {
			launderer := p.UserID
			o.LaundererID = &launderer
		}
		return nil
	})
	if err != nil {
		appErr := s.transitionError(err, t)
		s.countTransition(ctx, t, string(appErr.Kind()))
		if appErr.Kind() == errorbank.KindInternal {
			span.RecordError(err)
			span.SetStatus(codes.Error, "repository error")
		}
		return nil, appErr
	}
	s.countTransition(ctx, t, "ok")

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", id.String()), zap.Error(err))
	}
	s.publishStatusChanged(ctx, order, t, p.UserID)

	if s.notifier != nil && t != entity.TransitionPay {
		if err := s.notifier.Notify(ctx, order, t, p.Username); err != nil {
			s.logger.Warn("order notification failed",
				zap.String("id", id.String()),
				zap.String("transition", string(t)),
				zap.Error(err),
			)
		}
	}
	return order, nil
}

func (s *Service) transitionError(err error, t entity.Transition) *errorbank.AppError {
	var appErr *errorbank.AppError
	var te *entity.TransitionError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, repo.ErrNotFound):
		return errorbank.NotFound("order not found")
	case errors.As(err, &te):
		return errorbank.Conflict(te.Reason,
			errorbank.WithCause(err),
			errorbank.WithDetail("transition", string(te.Transition)),
			errorbank.WithDetail("status", string(te.From)),
		)
	case errors.Is(err, repo.ErrStaleOrder):
		return errorbank.Conflict("order was updated by someone else; reload and retry", errorbank.WithCause(err))
	default:
		return errorbank.Internal(fmt.Sprintf("failed to %s order", t), errorbank.WithCause(err))
	}
}

func (s *Service) countTransition(ctx context.Context, t entity.Transition, outcome string) {
	if s.transitions == nil {
		return
	}
	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transition", string(t)),
		attribute.String("outcome", outcome),
	))
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	if order, err := s.getFromCache(ctx, id); err == nil {
		return order, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("orders cache read failed", zap.String("id", id.String()), zap.Error(err))
	}

	order, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	if err := s.storeInCache(ctx, order); err != nil {
		s.logger.Warn("orders cache write failed", zap.String("id", id.String()), zap.Error(err))
	}
	return order, nil
}

func canView(p auth.Principal, o *entity.Order) bool {
	switch {
	case p.IsStudent():
		return o.StudentID == p.UserID
	case p.IsLaunderer():
		return o.LaundererID == nil || *o.LaundererID == p.UserID
	default:
		return false
	}
}

func (s *Service) publishStatusChanged(ctx context.Context, order *entity.Order, t entity.Transition, actor uuid.UUID) {
	if !s.publish || s.publisher == nil {
		return
	}
	event := StatusChangedEvent{
		OrderID:    order.ID.String(),
		Transition: t,
		Status:     order.Status(),
		Paid:       order.Paid,
		ActorID:    actor.String(),
		ChangedAt:  order.UpdatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal order status changed", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, []byte(CacheKey(order.ID)), payload); err != nil {
		s.logger.Error("publish order status changed", zap.Error(err))
	}
}

// CacheKey is the cache entry of an order; it doubles as the event key.
func CacheKey(id uuid.UUID) string {
	return "orders:" + id.String()
}

func (s *Service) getFromCache(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, CacheKey(id))
	if err != nil {
		return nil, err
	}
	var order entity.Order
	if err := json.Unmarshal(bytes, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) storeInCache(ctx context.Context, order *entity.Order) error {
	if s.cache == nil || order == nil {
		return nil
	}
	bytes, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, CacheKey(order.ID), bytes, s.cacheTTL)
}

// StatusChangedEvent is emitted after every applied transition.
type StatusChangedEvent struct {
	OrderID    string            `json:"order_id"`
	Transition entity.Transition `json:"transition"`
	Status     entity.Status     `json:"status"`
	Paid       bool              `json:"paid"`
	ActorID    string            `json:"actor_id"`
	ChangedAt  time.Time         `json:"changed_at"`
}
