package user

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/dto"
	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/presentation/http/response"
	"github.com/campuswash/laundry/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/campuswash/laundry/transport/http/user")

// Service is the account surface the handler depends on.
type Service interface {
	Signup(ctx context.Context, req dto.SignupRequest) (*entity.User, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	Me(ctx context.Context, p auth.Principal) (*entity.User, error)
}

// Handler exposes signup, login and the current account.
type Handler struct {
	svc Service
}

// NewHandler constructs a user Handler.
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts /auth routes. Only /auth/me needs a token.
func Register(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
	g := e.Group("/auth")
	g.POST("/signup", h.signup)
	g.POST("/login", h.login)
	g.GET("/me", h.me, auth.Middleware(tokens))
}

func (h *Handler) signup(c echo.Context) error {
	b := response.New(c)

	var payload dto.SignupRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.signup")
	defer span.End()

	u, err := h.svc.Signup(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.FromUser(u)).Build()
}

func (h *Handler) login(c echo.Context) error {
	b := response.New(c)

	var payload dto.LoginRequest
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.login")
	defer span.End()

	res, err := h.svc.Login(ctx, payload)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(res).Build()
}

func (h *Handler) me(c echo.Context) error {
	b := response.New(c)

	p, ok := auth.FromContext(c.Request().Context())
	if !ok {
		return b.WithError(errorbank.Unauthorized("authentication required")).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "auth.me")
	defer span.End()

	u, err := h.svc.Me(ctx, p)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromUser(u)).Build()
}
