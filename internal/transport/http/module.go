package http

import (
	"go.uber.org/fx"

	notificationtransport "github.com/campuswash/laundry/internal/transport/http/notification"
	ordertransport "github.com/campuswash/laundry/internal/transport/http/order"
	usertransport "github.com/campuswash/laundry/internal/transport/http/user"
)

// Module aggregates all HTTP transport handlers.
var Module = fx.Options(
	usertransport.Module,
	ordertransport.Module,
	notificationtransport.Module,
)
