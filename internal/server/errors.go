// Package server provides the HTTP REST API for the Chaos Engine service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/chaos-engine/internal/db"
	"github.com/jonathan/chaos-engine/internal/humanize"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotAffiliate indicates the caller has no affiliate account
type ErrNotAffiliate struct {
	UserID uuid.UUID
}

func (e *ErrNotAffiliate) Error() string {
	return fmt.Sprintf("user %s is not an affiliate", e.UserID)
}

// ErrUnavailable indicates an optional backend is not configured
type ErrUnavailable struct {
	Feature string
}

func (e *ErrUnavailable) Error() string {
	return fmt.Sprintf("%s is not configured on this server", e.Feature)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	var (
		emailExists  *ErrEmailAlreadyExists
		badLogin     *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userMissing  *ErrUserNotFound
		notAffiliate *ErrNotAffiliate
		validation   *ErrValidation
		unavailable  *ErrUnavailable
		precondition *humanize.PreconditionError
		fieldErrs    validator.ValidationErrors
	)
	switch {
	case errors.As(err, &emailExists), errors.Is(err, db.ErrDuplicate):
		return http.StatusConflict
	case errors.As(err, &badLogin), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userMissing), errors.As(err, &notAffiliate), errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &precondition), errors.As(err, &fieldErrs):
		return http.StatusBadRequest
	case errors.Is(err, db.ErrInsufficientBalance), errors.Is(err, db.ErrInvalidTransition):
		return http.StatusUnprocessableEntity
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal error text behind a generic message.
func publicMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return extractValidationErrors(fieldErrs)
	}
	return err.Error()
}
