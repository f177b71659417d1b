package notification

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/campuswash/laundry/internal/auth"
	service "github.com/campuswash/laundry/internal/service/notification"
)

// Module wires HTTP notification handlers.
var Module = fx.Options(
	fx.Provide(
		func(s *service.Service) Service { return s },
		NewHandler,
	),
	fx.Invoke(func(e *echo.Echo, h *Handler, tokens *auth.Tokens) {
		Register(e, h, tokens)
	}),
)
