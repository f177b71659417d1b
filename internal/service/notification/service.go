package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
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
	"github.com/campuswash/laundry/internal/entity"
	notificationrepo "github.com/campuswash/laundry/internal/repository/notification"
	orderrepo "github.com/campuswash/laundry/internal/repository/order"
	"github.com/campuswash/laundry/pkg/errorbank"
)

var (
	serviceTracer = otel.Tracer("github.com/campuswash/laundry/service/notification")
	serviceMeter  = otel.Meter("github.com/campuswash/laundry/service/notification")
)

// DefaultListLimit caps GET /notifications.
const DefaultListLimit = 100

// Store persists notifications; *notificationrepo.Repository satisfies it.
type Store interface {
	Create(ctx context.Context, n *entity.Notification) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, studentID uuid.UUID) error
}

// OrderReader resolves the order a notification refers to.
type OrderReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
}

// Service records and serves student notifications.
type Service struct {
	store      Store
	orders     OrderReader
	logger     *zap.Logger
	dispatched metric.Int64Counter
	now        func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store  Store
	Orders OrderReader
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	s := &Service{
		store:  p.Store,
		orders: p.Orders,
		logger: p.Logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	counter, err := serviceMeter.Int64Counter("laundry.notifications.dispatched",
		metric.WithDescription("Notifications dispatched after order transitions by outcome"),
	)
	if err != nil {
		s.logger.Warn("notification counter unavailable", zap.Error(err))
	}
	s.dispatched = counter
	return s
}

// Message renders the text sent to a student after t. ok is false for
// transitions that do not notify.
func Message(orderID uuid.UUID, t entity.Transition) (msg string, ok bool) {
	var verb string
	switch t {
	case entity.TransitionAccept:
		verb = "accepted"
	case entity.TransitionPickUp:
		verb = "picked up"
	case entity.TransitionDeliver:
		verb = "delivered"
	default:
		return "", false
	}
	return fmt.Sprintf("Your order with Order ID: %s has been %s.", orderID, verb), true
}

// Notify records the notification for a transition that was just applied to order.
func (s *Service) Notify(ctx context.Context, order *entity.Order, t entity.Transition, launderer string) (err error) {
	if order == nil {
		return errors.New("nil order")
	}
	msg, ok := Message(order.ID, t)
	if !ok {
		return nil
	}

	ctx, span := serviceTracer.Start(ctx, "NotificationService.Notify", trace.WithAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.String("order.transition", string(t)),
	))
	defer span.End()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "failed"
			span.RecordError(err)
			span.SetStatus(codes.Error, "dispatch failed")
		}
		if s.dispatched != nil {
			s.dispatched.Add(ctx, 1, metric.WithAttributes(
				attribute.String("transition", string(t)),
				attribute.String("outcome", outcome),
			))
		}
	}()

	return s.store.Create(ctx, s.build(order, launderer, msg))
}

// Create records a notification written by a launderer for an existing order.
func (s *Service) Create(ctx context.Context, p auth.Principal, orderID uuid.UUID, message string) (*entity.Notification, error) {
	if !p.IsLaunderer() {
		return nil, errorbank.Forbidden("only launderers can send notifications")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errorbank.BadRequest("message is required")
	}

	ctx, span := serviceTracer.Start(ctx, "NotificationService.Create", trace.WithAttributes(attribute.String("order.id", orderID.String())))
	defer span.End()

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}
	// Orders assigned to another launderer are invisible to this one.
	if order.LaundererID != nil && *order.LaundererID != p.UserID {
		return nil, errorbank.NotFound("order not found")
	}

	n := s.build(order, p.Username, message)
	if err := s.store.Create(ctx, n); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create notification", errorbank.WithCause(err))
	}
	return n, nil
}

// List returns the calling student's notifications, newest first.
func (s *Service) List(ctx context.Context, p auth.Principal) ([]*entity.Notification, error) {
	if !p.IsStudent() {
		return nil, errorbank.Forbidden("only students receive notifications")
	}
	ctx, span := serviceTracer.Start(ctx, "NotificationService.List")
	defer span.End()

	items, err := s.store.ListByStudent(ctx, p.UserID, DefaultListLimit)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to list notifications", errorbank.WithCause(err))
	}
	return items, nil
}

// MarkRead flags one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, p auth.Principal, id uuid.UUID) error {
	if !p.IsStudent() {
		return errorbank.Forbidden("only students receive notifications")
	}
	ctx, span := serviceTracer.Start(ctx, "NotificationService.MarkRead", trace.WithAttributes(attribute.String("notification.id", id.String())))
	defer span.End()

	if err := s.store.MarkRead(ctx, id, p.UserID); err != nil {
		if errors.Is(err, notificationrepo.ErrNotFound) {
			return errorbank.NotFound("notification not found")
		}
		span.RecordError(err)
		return errorbank.Internal("failed to update notification", errorbank.WithCause(err))
	}
	return nil
}

func (s *Service) build(order *entity.Order, launderer, message string) *entity.Notification {
	n := &entity.Notification{
		ID:        uuid.New(),
		OrderID:   order.ID,
		StudentID: order.StudentID,
		Launderer: launderer,
		Message:   message,
		CreatedAt: s.now(),
	}
	if order.Student != nil {
		n.Student = order.Student.Username
	}
	return n
}
