package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/service"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// respondErr maps a service-layer failure onto an HTTP response. Internal
// failures are logged with the original chain and returned as an opaque 500.
func respondErr(c echo.Context, logger *zap.Logger, err error) error {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
		message = "storage unavailable, try again"
		logger.Warn("storage unavailable", zap.Error(err))
	default:
		logger.Error("request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
	}

	return c.JSON(status, errorBody{Error: message})
}
