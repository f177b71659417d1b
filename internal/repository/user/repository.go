package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/campuswash/laundry/internal/database"
	"github.com/campuswash/laundry/internal/entity"
)

var repoTracer = otel.Tracer("github.com/campuswash/laundry/repository/user")

var (
	// ErrNotFound is returned when a user is missing.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when the username or email is taken.
	ErrDuplicate = errors.New("username or email already taken")
)

const (
	mysqlDuplicateEntry = 1062
	pgUniqueViolation   = "23505"
	sqliteUniqueFailed  = "UNIQUE constraint failed"
)

// Repository stores accounts.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{writer: conns.Writer, reader: conns.Reader}
}

// Create inserts u. A taken username or email yields ErrDuplicate.
func (r *Repository) Create(ctx context.Context, u *entity.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	ctx, span := repoTracer.Start(ctx, "UserRepository.Create", trace.WithAttributes(attribute.String("user.username", u.Username)))
	defer span.End()

	taken, err := r.writer.NewSelect().Model((*entity.User)(nil)).
		Where("u.username = ?", u.Username).
		WhereOr("u.email = ?", u.Email).
		Exists(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return err
	}
	if taken {
		return ErrDuplicate
	}

	if _, err := r.writer.NewInsert().Model(u).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByID", trace.WithAttributes(attribute.String("user.id", id.String())))
	defer span.End()

	return r.getOne(ctx, span, "u.id = ?", id)
}

// GetByUsername fetches a user for login.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	ctx, span := repoTracer.Start(ctx, "UserRepository.GetByUsername", trace.WithAttributes(attribute.String("user.username", username)))
	defer span.End()

	return r.getOne(ctx, span, "u.username = ?", username)
}

func (r *Repository) getOne(ctx context.Context, span trace.Span, where string, arg any) (*entity.User, error) {
	u := new(entity.User)
	err := r.reader.NewSelect().Model(u).Where(where, arg).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return u, nil
}

// isUniqueViolation reports whether err is a unique-key failure. Other
// integrity failures such as foreign key or not-null violations do not match.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		return pgErr.Field('C') == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	// SQLite drivers differ in error types but share the message.
	return strings.Contains(err.Error(), sqliteUniqueFailed)
}
