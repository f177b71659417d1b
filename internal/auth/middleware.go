package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campuswash/laundry/internal/entity"
	"github.com/campuswash/laundry/internal/presentation/http/response"
	"github.com/campuswash/laundry/pkg/errorbank"
)

const bearerPrefix = "Bearer "

// Middleware rejects requests without a valid bearer token and stores the principal
// in the request context.
func Middleware(tokens *Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return response.New(c).WithError(errorbank.Unauthorized("missing bearer token")).Build()
			}
			principal, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix)))
			if err != nil {
				return response.New(c).WithError(errorbank.Unauthorized("invalid or expired token")).Build()
			}
			req := c.Request()
			c.SetRequest(req.WithContext(WithPrincipal(req.Context(), principal)))
			return next(c)
		}
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
func RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := FromContext(c.Request().Context())
			if !ok {
				return response.New(c).WithError(errorbank.Unauthorized("authentication required")).Build()
			}
			for _, role := range roles {
				if principal.Role == role {
					return next(c)
				}
			}
			return response.New(c).WithError(errorbank.Forbidden("insufficient role")).Build()
		}
	}
}
