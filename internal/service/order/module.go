package order

import (
	"go.uber.org/fx"

	repo "github.com/campuswash/laundry/internal/repository/order"
)

// Module provides the order service to Fx.
var Module = fx.Provide(
	func(r *repo.Repository) Store { return r },
	NewService,
)
