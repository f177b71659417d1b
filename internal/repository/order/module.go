package order

import "go.uber.org/fx"

// Module provides the order repository, which also serves order events, to Fx.
var Module = fx.Module("order_repository",
	fx.Provide(NewRepository),
)
