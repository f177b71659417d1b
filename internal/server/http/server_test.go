package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/config"
	"github.com/campuswash/laundry/internal/validation"
	"github.com/campuswash/laundry/pkg/errorbank"
)

func TestNewEcho_Health(t *testing.T) {
	cfg := config.Config{Observability: config.Observability{ServiceName: "laundry"}}
	e := NewEcho(EchoParams{Config: cfg, Validator: validation.New(), Logger: zap.NewNop()})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","service":"laundry"}`, rec.Body.String())
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"app error", errorbank.Conflict("order already accepted"), http.StatusConflict, "conflict"},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, "not_found"},
		{"echo bad request", echo.NewHTTPError(http.StatusBadRequest, "bad json"), http.StatusBadRequest, "bad_request"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			ErrorHandler(zap.NewNop())(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), `"kind":"`+tt.wantKind+`"`)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}
