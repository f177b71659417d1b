package auth

import (
	"go.uber.org/fx"

	"github.com/campuswash/laundry/internal/config"
)

// Module provides token and password helpers to Fx.
var Module = fx.Provide(
	NewTokens,
	func(cfg config.Config) *Hasher { return NewHasher(cfg.Auth.BcryptCost) },
)
