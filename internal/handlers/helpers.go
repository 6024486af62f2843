package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/sparkmatch/backend/internal/apperrors"
	"github.com/anonto42/sparkmatch/backend/internal/middleware"
)

// getUserIDFromContext returns the authenticated user's id, or 0 when there is none.
func getUserIDFromContext(c echo.Context) uint {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return 0
	}
	return s.UserID
}

func requireUser(c echo.Context) (uint, error) {
	id := getUserIDFromContext(c)
	if id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	return id, nil
}

// parseIDParam reads a positive integer path parameter.
func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return uint(id), nil
}

// bindAndValidate decodes the request body into req and runs the echo validator on it.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return httpError(err)
	}
	return nil
}

// httpError maps application errors onto HTTP status codes. Unclassified errors become
// 500s whose cause stays internal.
func httpError(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	status := apperrors.StatusCode(err)
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, http.StatusText(status)).SetInternal(err)
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}
