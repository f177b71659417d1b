package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuswash/laundry/pkg/errorbank"
)

func newContext() (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/orders", nil), rec), rec
}

func TestBuilder_Success(t *testing.T) {
	c, rec := newContext()
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	err := New(c).WithStatus(http.StatusCreated).WithData(map[string]string{"id": "42"}).WithMeta("count", 1).WithMeta("", "ignored").Build()
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":"42"},"meta":{"count":1,"requestId":"req-1"}}`, rec.Body.String())
}

func TestBuilder_Error(t *testing.T) {
	c, rec := newContext()

	appErr := errorbank.Conflict("cannot pickup order in status pending",
		errorbank.WithDetails(map[string]any{"transition": "pickup", "status": "pending"}))
	require.NoError(t, New(c).WithStatus(http.StatusCreated).WithData("dropped").WithError(appErr).Build())

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"kind": "conflict",
			"message": "cannot pickup order in status pending",
			"details": {"transition": "pickup", "status": "pending"}
		}
	}`, rec.Body.String())
}

func TestAsAppError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind errorbank.Kind
		wantMsg  string
	}{
		{"app error", errorbank.Forbidden("students only"), errorbank.KindForbidden, "students only"},
		{"wrapped app error", errors.Join(errors.New("ctx"), errorbank.NotFound("order not found")), errorbank.KindNotFound, "order not found"},
		{"echo not found", echo.ErrNotFound, errorbank.KindNotFound, "Not Found"},
		{"echo method", echo.ErrMethodNotAllowed, errorbank.KindNotFound, "Method Not Allowed"},
		{"echo payload", echo.NewHTTPError(http.StatusRequestEntityTooLarge), errorbank.KindBadRequest, "Request Entity Too Large"},
		{"echo unauthorized", echo.NewHTTPError(http.StatusUnauthorized, "missing token"), errorbank.KindUnauthorized, "missing token"},
		{"plain", errors.New("boom"), errorbank.KindInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AsAppError(tt.err)
			assert.Equal(t, tt.wantKind, got.Kind())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, got.Message())
			}
		})
	}
}
