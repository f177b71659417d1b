package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/campuswash/laundry/internal/app"
)

func TestModuleGraphResolves(t *testing.T) {
	require.NoError(t, fx.ValidateApp(app.Module))
}
