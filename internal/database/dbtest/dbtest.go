// Package dbtest opens a migrated in-memory SQLite database for repository tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/config"
	"github.com/campuswash/laundry/internal/database"
	"github.com/campuswash/laundry/internal/migration"
)

// Open returns connections to a private in-memory database with every migration
// applied. The database is dropped when t finishes.
func Open(t testing.TB) *database.Connections {
	t.Helper()

	// A single pooled connection keeps the in-memory database alive and shared.
	cfg := config.Config{Database: config.Database{
		Driver:       "sqlite",
		WriterDSN:    ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}}

	lc := fxtest.NewLifecycle(t)
	conns, err := database.New(lc, cfg, zap.NewNop())
	require.NoError(t, err)
	lc.RequireStart()
	t.Cleanup(func() { lc.RequireStop() })

	migrator, err := migration.New(cfg, conns, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up(context.Background()))

	return conns
}
