package user

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/campuswash/laundry/internal/auth"
	service "github.com/campuswash/laundry/internal/service/user"
)

// Module wires HTTP account handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *service.Service) Service { return s },
		NewHandler,
	),
	fx.Invoke(func(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
		Register(e, h, tokens)
	}),
)
