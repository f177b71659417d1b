package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/campuswash/laundry/internal/database"
	"github.com/campuswash/laundry/internal/entity"
)

var repoTracer = otel.Tracer("github.com/campuswash/laundry/repository/order")

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrStaleOrder is returned when another writer changed the order first.
	ErrStaleOrder = errors.New("order was modified concurrently")
)

// ListQuery narrows List. Nil fields do not filter.
type ListQuery struct {
	// StudentID keeps only orders placed by this student.
	StudentID *uuid.UUID
	// LaundererID keeps orders that are unassigned or assigned to this launderer.
	LaundererID *uuid.UUID
}

// Repository encapsulates read/write access for orders.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

// Create persists a new order and its items in one transaction.
func (r *Repository) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.Int("order.items", len(order.Items)),
	))
	defer span.End()

	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return err
		}
		for i, item := range order.Items {
			item.OrderID = order.ID
			item.Position = i
		}
		if len(order.Items) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&order.Items).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order with its items and participants using the read replica when available.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	order, err := getByID(ctx, r.reader, id)
	if errors.Is(err, ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return nil, err
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return order, nil
}

// List returns matching orders, newest first.
func (r *Repository) List(ctx context.Context, q ListQuery) ([]*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []*entity.Order
	query := withDetails(r.reader.NewSelect().Model(&orders)).OrderExpr("o.created_at DESC")
	if q.StudentID != nil {
		span.SetAttributes(attribute.String("order.student_id", q.StudentID.String()))
		query = query.Where("o.student_id = ?", *q.StudentID)
	}
	if q.LaundererID != nil {
		span.SetAttributes(attribute.String("order.launderer_id", q.LaundererID.String()))
		query = query.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("o.launderer_id IS NULL").WhereOr("o.launderer_id = ?", *q.LaundererID)
		})
	}
	if err := query.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// ApplyTransition loads the order inside a transaction, lets mutate validate and change it,
// then writes the flags back guarded by the version column and records an OrderEvent.
// Nothing is written when mutate fails.
func (r *Repository) ApplyTransition(ctx context.Context, id uuid.UUID, transition entity.Transition, actorID uuid.UUID, mutate func(*entity.Order) error) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ApplyTransition", trace.WithAttributes(
		attribute.String("order.id", id.String()),
		attribute.String("order.transition", string(transition)),
	))
	defer span.End()

	var updated *entity.Order
	err := r.writer.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		order, err := getByID(ctx, tx, id)
		if err != nil {
			return err
		}

		from := order.Status()
		version := order.Version
		if err := mutate(order); err != nil {
			return err
		}
		order.Version = version + 1
		if order.UpdatedAt.IsZero() {
			order.UpdatedAt = time.Now().UTC()
		}

		res, err := tx.NewUpdate().
			Model(order).
			Column("launderer_id", "accepted_status", "pick_up_status", "delivered_status", "paid", "version", "updated_at").
			Where("o.id = ?", id).
			Where("o.version = ?", version).
			Exec(ctx)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrStaleOrder
		}

		event := &entity.OrderEvent{
			OrderID:    id,
			Transition: transition,
			FromStatus: from,
			ToStatus:   order.Status(),
			Paid:       order.Paid,
			ActorID:    actorID,
			CreatedAt:  order.UpdatedAt,
		}
		if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
			return err
		}

		updated, err = getByID(ctx, tx, id)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "transition failed")
		return nil, err
	}
	return updated, nil
}

// Events returns the audit trail of an order, oldest first.
func (r *Repository) Events(ctx context.Context, id uuid.UUID) ([]*entity.OrderEvent, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Events", trace.WithAttributes(attribute.String("order.id", id.String())))
	defer span.End()

	var events []*entity.OrderEvent
	err := r.reader.NewSelect().Model(&events).Where("oe.order_id = ?", id).OrderExpr("oe.id ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return events, nil
}

func getByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*entity.Order, error) {
	order := new(entity.Order)
	err := withDetails(db.NewSelect().Model(order)).Where("o.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func withDetails(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Student").
		Relation("Launderer").
		Relation("Items", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.OrderExpr("oi.position ASC")
		})
}
