package seeder

import (
	"go.uber.org/fx"

	orderrepo "github.com/campuswash/laundry/internal/repository/order"
	userrepo "github.com/campuswash/laundry/internal/repository/user"
)

// Module provides the Seeder on top of the core repositories.
var Module = fx.Provide(
	func(r *userrepo.Repository) UserStore { return r },
	func(r *orderrepo.Repository) OrderStore { return r },
	New,
)
