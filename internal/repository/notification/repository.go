package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/campuswash/laundry/internal/database"
	"github.com/campuswash/laundry/internal/entity"
)

var repoTracer = otel.Tracer("github.com/campuswash/laundry/repository/notification")

// ErrNotFound is returned when no notification matches.
var ErrNotFound = errors.New("notification not found")

// Repository stores notifications.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Create inserts n.
func (r *Repository) Create(ctx context.Context, n *entity.Notification) error {
	if n == nil {
		return errors.New("nil notification")
	}
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.Create", trace.WithAttributes(attribute.String("order.id", n.OrderID.String())))
	defer span.End()

	if _, err := r.writer.NewInsert().Model(n).Exec(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// ListByStudent returns a student's notifications, newest first.
func (r *Repository) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]*entity.Notification, error) {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.ListByStudent", trace.WithAttributes(attribute.String("user.id", studentID.String())))
	defer span.End()

	var items []*entity.Notification
	q := r.reader.NewSelect().Model(&items).Where("n.student_id = ?", studentID).OrderExpr("n.created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return items, nil
}

// MarkRead flags one of the student's notifications as read.
func (r *Repository) MarkRead(ctx context.Context, id, studentID uuid.UUID) error {
	ctx, span := repoTracer.Start(ctx, "NotificationRepository.MarkRead", trace.WithAttributes(attribute.String("notification.id", id.String())))
	defer span.End()

	res, err := r.writer.NewUpdate().Model((*entity.Notification)(nil)).
		Set("is_read = ?", true).
		Where("id = ?", id).
		Where("student_id = ?", studentID).
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports zero rows when the flag was already set.
		exists, err := r.writer.NewSelect().Model((*entity.Notification)(nil)).
			Where("n.id = ?", id).
			Where("n.student_id = ?", studentID).
			Exists(ctx)
		if err != nil {
			span.RecordError(err)
			return err
		}
		if !exists {
			return ErrNotFound
		}
	}
	return nil
}
