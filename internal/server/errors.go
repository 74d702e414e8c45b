package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/swzro/builders/internal/combine"
	"github.com/swzro/builders/internal/db"
	"github.com/swzro/builders/internal/ingestion"
	"github.com/swzro/builders/internal/pipeline"
	"github.com/swzro/builders/internal/storage"
)

// ValidationError indicates request validation failure
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// NotFoundError indicates a missing or hidden resource
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UnauthorizedError indicates a missing or unusable credential
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr   *ValidationError
		notFoundErr     *NotFoundError
		unauthorizedErr *UnauthorizedError
		fileErr         *ingestion.ValidationError
		fieldErrs       validator.ValidationErrors
	)

	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &fileErr),
		errors.As(err, &fieldErrs),
		errors.Is(err, pipeline.ErrNoSources),
		errors.Is(err, combine.ErrNoDrafts),
		errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.As(err, &unauthorizedErr), errors.Is(err, storage.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.As(err, &notFoundErr), errors.Is(err, db.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, db.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the message shown to clients. Internal errors are not exposed.
func publicMessage(err error, status int) string {
	if status >= http.StatusInternalServerError {
		return "internal server error"
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Sprintf("validation error: %s failed on %s", fe.Field(), fe.Tag())
	}
	return err.Error()
}
