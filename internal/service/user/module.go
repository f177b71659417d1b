package user

import (
	"go.uber.org/fx"

	repo "github.com/campuswash/laundry/internal/repository/user"
	"github.com/campuswash/laundry/internal/validation"
)

// Module provides the user service to Fx.
var Module = fx.Provide(
	func(r *repo.Repository) Store { return r },
	func(v *validation.Validator) Validator { return v },
	NewService,
)
