package handler

import (
	"errors"
	"fmt"
	"net/http"

	"notes-service/internal/errs"
	"notes-service/internal/middleware"
	"notes-service/internal/model"
	"notes-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// respondError writes err as {"error": message}. Internal faults are logged
// and answered with a generic message.
func respondError(c echo.Context, err error) error {
	status := errs.HTTPStatus(err)
	log := logger.FromContext(c)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", zap.Error(err))
	} else {
		log.Debug("Request rejected", zap.Int("status", status), zap.String("code", string(errs.CodeOf(err))))
	}
	return c.JSON(status, echo.Map{"error": errs.MessageOf(err)})
}

// bindJSON decodes the request body as JSON whatever its Content-Type says
func bindJSON(c echo.Context, v interface{}) error {
	if err := c.Echo().JSONSerializer.Deserialize(c, v); err != nil {
		return errs.New(errs.Validation, "Invalid request body")
	}
	return nil
}

// identityFrom returns the caller identity; routes are registered behind
// AuthMiddleware so a missing identity is a wiring fault.
func identityFrom(c echo.Context) (model.Identity, error) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return model.Identity{}, errs.New(errs.Internal, "identity missing from request context")
	}
	return identity, nil
}

// HTTPErrorHandler renders errors that reach echo (unknown routes, bad
// methods, panics) in the same JSON shape as handler errors.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if he.Code < http.StatusInternalServerError {
			if m, ok := he.Message.(string); ok && m != "" {
				message = m
			} else if he.Message != nil {
				message = fmt.Sprint(he.Message)
			}
		} else {
			logger.FromContext(c).Error("Request failed", zap.Error(err))
			message = errs.InternalMessage
		}
		if writeErr := writeError(c, he.Code, message); writeErr != nil {
			logger.FromContext(c).Error("Failed to write error response", zap.Error(writeErr))
		}
		return
	}

	if writeErr := respondError(c, err); writeErr != nil {
		logger.FromContext(c).Error("Failed to write error response", zap.Error(writeErr))
	}
}

func writeError(c echo.Context, status int, message string) error {
	if c.Request().Method == http.MethodHead {
		return c.NoContent(status)
	}
	return c.JSON(status, echo.Map{"error": message})
}
