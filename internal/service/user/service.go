package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/dto"
	"github.com/campuswash/laundry/internal/entity"
	repo "github.com/campuswash/laundry/internal/repository/user"
	"github.com/campuswash/laundry/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/campuswash/laundry/service/user")

// Store persists accounts; *repo.Repository satisfies it.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}

// Validator checks request structs.
type Validator interface {
	Validate(i any) error
}

// Service manages accounts and sessions.
type Service struct {
	store     Store
	hasher    *auth.Hasher
	tokens    *auth.Tokens
	validator Validator
	logger    *zap.Logger
	now       func() time.Time
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Store     Store
	Hasher    *auth.Hasher
	Tokens    *auth.Tokens
	Validator Validator
	Logger    *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:     p.Store,
		hasher:    p.Hasher,
		tokens:    p.Tokens,
		validator: p.Validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Signup validates req and creates the account with a hashed password.
func (s *Service) Signup(ctx context.Context, req dto.SignupRequest) (*entity.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ctx, span := serviceTracer.Start(ctx, "UserService.Signup", trace.WithAttributes(attribute.String("user.username", req.Username)))
	defer span.End()

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to hash password", errorbank.WithCause(err))
	}

	now := s.now()
	u := &entity.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         entity.Role(req.Role),
		Hostel:       req.Hostel,
		RoomNumber:   req.RoomNumber,
		PhoneNumber:  req.PhoneNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, errorbank.Conflict("username or email already taken")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create user", errorbank.WithCause(err))
	}
	s.logger.Info("user created", zap.String("username", u.Username), zap.String("role", string(u.Role)))
	return u, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return dto.LoginResponse{}, err
	}

	ctx, span := serviceTracer.Start(ctx, "UserService.Login", trace.WithAttributes(attribute.String("user.username", req.Username)))
	defer span.End()

	u, err := s.store.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, repo.ErrNotFound) {
		return dto.LoginResponse{}, errorbank.Unauthorized(auth.ErrInvalidCredentials.Error())
	}
	if err != nil {
		span.RecordError(err)
		return dto.LoginResponse{}, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	if err := s.hasher.Compare(u.PasswordHash, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return dto.LoginResponse{}, errorbank.Unauthorized(err.Error())
		}
		return dto.LoginResponse{}, errorbank.Internal("failed to verify password", errorbank.WithCause(err))
	}

	token, expires, err := s.tokens.Issue(u)
	if err != nil {
		span.RecordError(err)
		return dto.LoginResponse{}, errorbank.Internal("failed to issue token", errorbank.WithCause(err))
	}
	return dto.LoginResponse{Token: token, ExpiresAt: expires, User: dto.FromUser(u)}, nil
}

// Me returns the account behind p.
func (s *Service) Me(ctx context.Context, p auth.Principal) (*entity.User, error) {
	ctx, span := serviceTracer.Start(ctx, "UserService.Me", trace.WithAttributes(attribute.String("user.id", p.UserID.String())))
	defer span.End()

	u, err := s.store.GetByID(ctx, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errorbank.NotFound("user not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, errorbank.Internal("failed to load user", errorbank.WithCause(err))
	}
	return u, nil
}
