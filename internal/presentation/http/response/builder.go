package response

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campuswash/laundry/pkg/errorbank"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool           `json:"success"`
	Data    any            `json:"data,omitempty"`
	Error   *ErrorBody     `json:"error,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Kind    errorbank.Kind `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Builder accumulates status, payload and metadata for one response.
type Builder struct {
	ctx    echo.Context
	status int
	data   any
	err    error
	meta   map[string]any
}

// New instantiates a Builder for the provided request context.
func New(ctx echo.Context) *Builder {
	return &Builder{ctx: ctx, status: http.StatusOK}
}

// WithStatus overrides the success status code. Errors always use their own.
func (b *Builder) WithStatus(status int) *Builder {
	if status > 0 {
		b.status = status
	}
	return b
}

// WithData attaches a success payload.
func (b *Builder) WithData(data any) *Builder {
	b.data = data
	return b
}

// WithError switches the response to the error envelope.
func (b *Builder) WithError(err error) *Builder {
	b.err = err
	return b
}

// WithMeta appends auxiliary metadata to the response.
func (b *Builder) WithMeta(key string, value any) *Builder {
	if key == "" {
		return b
	}
	if b.meta == nil {
		b.meta = make(map[string]any)
	}
	b.meta[key] = value
	return b
}

// Build writes the envelope.
func (b *Builder) Build() error {
	if id := b.ctx.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		b.WithMeta("requestId", id)
	}
	if b.err != nil {
		appErr := AsAppError(b.err)
		return b.ctx.JSON(appErr.StatusCode(), Envelope{
			Error: &ErrorBody{
				Kind:    appErr.Kind(),
				Message: appErr.Message(),
				Details: appErr.Details(),
			},
			Meta: b.meta,
		})
	}
	return b.ctx.JSON(b.status, Envelope{Success: true, Data: b.data, Meta: b.meta})
}

// AsAppError classifies err, translating echo's own HTTP errors by status code.
func AsAppError(err error) *errorbank.AppError {
	var appErr *errorbank.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		return errorbank.From(err)
	}

	msg := http.StatusText(httpErr.Code)
	if m, ok := httpErr.Message.(string); ok && m != "" {
		msg = m
	}
	switch httpErr.Code {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return errorbank.BadRequest(msg, errorbank.WithCause(err))
	case http.StatusUnauthorized:
		return errorbank.Unauthorized(msg, errorbank.WithCause(err))
	case http.StatusForbidden:
		return errorbank.Forbidden(msg, errorbank.WithCause(err))
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		return errorbank.NotFound(msg, errorbank.WithCause(err))
	case http.StatusConflict:
		return errorbank.Conflict(msg, errorbank.WithCause(err))
	case http.StatusUnprocessableEntity:
		return errorbank.Unprocessable(msg, errorbank.WithCause(err))
	default:
		return errorbank.Internal(msg, errorbank.WithCause(err))
	}
}
