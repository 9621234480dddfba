package http

import (
	"net/http"

	"tracking/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

var statusByKind = map[string]int{
	"NotFound":          http.StatusNotFound,
	"Forbidden":         http.StatusForbidden,
	"InvalidTransition": http.StatusConflict,
	"Conflict":          http.StatusConflict,
	"InvalidValue":      http.StatusBadRequest,
}

// fail writes err as an Error body. Internal errors are logged and never echoed.
func (s *Server) fail(c echo.Context, err error) error {
	kind := errs.Kind(err)
	code, ok := statusByKind[kind]
	if !ok {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Kind:    "Internal",
			Message: "internal error",
		})
	}
	return c.JSON(code, Error{Code: code, Kind: kind, Message: err.Error()})
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Kind:    "InvalidValue",
		Message: message,
	})
}
