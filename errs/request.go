package errs

import (
	"errors"
	"fmt"
)

// Authentication Errors
var (
	ErrMissingToken       = fmt.Errorf("missing access token: %w", ErrUnauthorized)
	ErrExpiredToken       = fmt.Errorf("expired access token: %w", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("invalid access token: %w", ErrUnauthorized)
	ErrRevokedToken       = fmt.Errorf("revoked token: %w", ErrUnauthorized)
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
)

// Request & Input-Validation Errors
var (
	ErrInvalidJSON          = fmt.Errorf("invalid JSON: %w", ErrBadRequest)
	ErrMissingRequiredField = fmt.Errorf("missing required field: %w", ErrBadRequest)
	ErrInvalidField         = fmt.Errorf("invalid field: %w", ErrBadRequest)
)

func NewMissingTokenError() *ApiErr {
	e := NewAuthenticationError("authentication token required")
	e.sentinel = ErrMissingToken
	return e
}

func NewExpiredTokenError() *ApiErr {
	e := NewAuthenticationError("token expired")
	e.sentinel = ErrExpiredToken
	return e
}

func NewInvalidTokenError() *ApiErr {
	e := NewAuthenticationError("invalid token")
	e.sentinel = ErrInvalidToken
	return e
}

func NewRevokedTokenError() *ApiErr {
	e := NewAuthenticationError("token has been revoked")
	e.sentinel = ErrRevokedToken
	return e
}

func NewInvalidCredentialsError() *ApiErr {
	e := NewAuthenticationError("invalid email or password")
	e.sentinel = ErrInvalidCredentials
	return e
}

func NewInvalidJSONError(cause error) *ApiErr {
	e := NewRequestError("invalid JSON in request body")
	e.sentinel = ErrInvalidJSON
	return e.WithCause(cause)
}

// NewMissingRequiredFieldError is a single-field validation failure.
func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	e := NewValidationError("missing required field", map[string]string{
		fieldName: fmt.Sprintf("%s is required", fieldName),
	})
	e.sentinel = ErrMissingRequiredField
	return e
}

func NewInvalidFieldError(fieldName, reason string) *ApiErr {
	e := NewValidationError("invalid input data", map[string]string{fieldName: reason})
	e.sentinel = ErrInvalidField
	return e
}

func IsInvalidJSONError(err error) bool {
	return errors.Is(err, ErrInvalidJSON)
}

func IsExpiredTokenError(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
