package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
)

func TestAppError_StatusAndGRPCCode(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantStatus int
		wantCode   codes.Code
	}{
		{name: "bad request", err: BadRequest("bad"), wantStatus: http.StatusBadRequest, wantCode: codes.InvalidArgument},
		{name: "unauthorized", err: Unauthorized("who"), wantStatus: http.StatusUnauthorized, wantCode: codes.Unauthenticated},
		{name: "forbidden", err: Forbidden("no"), wantStatus: http.StatusForbidden, wantCode: codes.PermissionDenied},
		{name: "not found", err: NotFound("gone"), wantStatus: http.StatusNotFound, wantCode: codes.NotFound},
		{name: "conflict", err: Conflict("again"), wantStatus: http.StatusConflict, wantCode: codes.AlreadyExists},
		{name: "unprocessable", err: Unprocessable("meh"), wantStatus: http.StatusUnprocessableEntity, wantCode: codes.FailedPrecondition},
		{name: "internal", err: Internal("boom"), wantStatus: http.StatusInternalServerError, wantCode: codes.Internal},
		{name: "nil", err: nil, wantStatus: http.StatusInternalServerError, wantCode: codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode())
			assert.Equal(t, tt.wantCode, tt.err.GRPCCode())
		})
	}
}

func TestAppError_CauseAndDetails(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to load order",
		WithCause(cause),
		WithDetail("order_id", "abc"),
		WithDetails(map[string]any{"attempt": 1}),
	)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load order: connection reset", err.Error())
	assert.Equal(t, "failed to load order", err.Message())
	assert.Equal(t, map[string]any{"order_id": "abc", "attempt": 1}, err.Details())
}

func TestNew_DefaultsMessageToKind(t *testing.T) {
	err := New(KindConflict, "")
	assert.Equal(t, "conflict", err.Message())
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	conflict := Conflict("order already accepted")
	wrapped := fmt.Errorf("accept: %w", conflict)
	assert.Same(t, conflict, From(wrapped))

	plain := errors.New("disk full")
	got := From(plain)
	assert.Equal(t, KindInternal, got.Kind())
	assert.ErrorIs(t, got, plain)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", NotFound("order not found"))
	assert.True(t, Is(err, KindNotFound))
	assert.False(t, Is(err, KindConflict))
	assert.False(t, Is(errors.New("plain"), KindNotFound))
}

func TestKind_UnknownFallsBackToInternal(t *testing.T) {
	k := Kind("teapot")
	assert.Equal(t, http.StatusInternalServerError, k.StatusCode())
	assert.Equal(t, codes.Internal, k.GRPCCode())
	assert.Equal(t, http.StatusInternalServerError, New(k, "").StatusCode())
}
