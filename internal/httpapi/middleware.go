package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/models"
)

// userContextKey is the echo context key holding the authenticated user.
const userContextKey = "authenticated_user"

// IdentityResolver maps a bearer credential to a user.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// BearerAuth rejects requests without a valid Authorization: Bearer
// credential and stores the resolved user on the context.
func BearerAuth(identities IdentityResolver, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token := strings.TrimPrefix(header, "Bearer ")
			if header == "" || token == header {
				return c.JSON(http.StatusUnauthorized, errorBody{Error: "missing bearer credential"})
			}

			user, err := identities.Resolve(c.Request().Context(), token)
			if err != nil {
				return respondErr(c, logger, err)
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// currentUser returns the user stored by BearerAuth. Only valid on routes
// behind the middleware.
func currentUser(c echo.Context) *models.User {
	user, _ := c.Get(userContextKey).(*models.User)
	return user
}

// RequestLogger logs one line per completed request.
func RequestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", c.Response().Status),
				zap.String("remote", c.RealIP()),
			)
			return nil
		}
	}
}
