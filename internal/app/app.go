package app

import (
	"go.uber.org/fx"

	"github.com/campuswash/laundry/internal/auth"
	"github.com/campuswash/laundry/internal/cache"
	"github.com/campuswash/laundry/internal/config"
	"github.com/campuswash/laundry/internal/database"
	"github.com/campuswash/laundry/internal/logger"
	"github.com/campuswash/laundry/internal/messaging"
	"github.com/campuswash/laundry/internal/observability"
	repositorynotification "github.com/campuswash/laundry/internal/repository/notification"
	repositoryorder "github.com/campuswash/laundry/internal/repository/order"
	repositoryuser "github.com/campuswash/laundry/internal/repository/user"
	grpcserver "github.com/campuswash/laundry/internal/server/grpc"
	httpserver "github.com/campuswash/laundry/internal/server/http"
	servicenotification "github.com/campuswash/laundry/internal/service/notification"
	serviceorder "github.com/campuswash/laundry/internal/service/order"
	serviceuser "github.com/campuswash/laundry/internal/service/user"
	transporthttp "github.com/campuswash/laundry/internal/transport/http"
	"github.com/campuswash/laundry/internal/validation"
	"github.com/campuswash/laundry/internal/worker"
	workerorder "github.com/campuswash/laundry/internal/worker/order"
)

// Core provides the foundational modules shared across executables.
// Providers are lazy, so commands only build what they populate.
var Core = fx.Options(
	config.Module,
	cache.Module,
	database.Module,
	logger.Module,
	messaging.Module,
	observability.Module,
	auth.Module,
	validation.Module,
	repositoryuser.Module,
	repositoryorder.Module,
	repositorynotification.Module,
	serviceuser.Module,
	servicenotification.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP and gRPC servers on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
	fx.Invoke(func(*observability.Manager) {}),
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
	fx.Invoke(func(*observability.Manager) {}),
)

// Module is the default application wiring (HTTP + gRPC).
var Module = HTTP
