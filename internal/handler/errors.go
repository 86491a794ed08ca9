package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/employee_records/internal/domain"
	"github.com/locvowork/employee_records/internal/service/serviceutils"
)

const msgUnexpected = "An unexpected error occurred. Please try again later."

// errorStatus maps domain errors onto HTTP statuses. Unknown errors are 500.
func errorStatus(err error) int {
	var (
		verr     *domain.ValidationError
		groupBy  *domain.InvalidGroupByError
		notFound *domain.NotFoundError
		conflict *domain.ConflictError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &groupBy):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with status. Client errors carry the error text;
// server errors carry a generic message only.
func respondError(c echo.Context, status int, err error) error {
	if status >= http.StatusInternalServerError {
		return serviceutils.ResponseError(c, http.StatusInternalServerError, msgUnexpected, err)
	}
	return serviceutils.ResponseError(c, status, err.Error(), err)
}

// asBadRequest collapses every client error onto 400.
func asBadRequest(status int) int {
	if status < http.StatusInternalServerError {
		return http.StatusBadRequest
	}
	return status
}
