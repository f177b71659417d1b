package order

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/campuswash/laundry/internal/auth"
	service "github.com/campuswash/laundry/internal/service/order"
)

// Module wires HTTP order handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *service.Service) Service { return s },
		NewHandler,
	),
	fx.Invoke(func(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
		Register(e, h, tokens)
	}),
)
