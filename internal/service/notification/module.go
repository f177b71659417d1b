package notification

import (
	"go.uber.org/fx"

	notificationrepo "github.com/campuswash/laundry/internal/repository/notification"
	orderrepo "github.com/campuswash/laundry/internal/repository/order"
	ordersvc "github.com/campuswash/laundry/internal/service/order"
)

// Module provides the notification service and exposes it as the order notifier.
var Module = fx.Provide(
	func(r *notificationrepo.Repository) Store { return r },
	func(r *orderrepo.Repository) OrderReader { return r },
	NewService,
	func(s *Service) ordersvc.Notifier { return s },
)
