package errs

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Translate maps any fault to exactly one ApiErr. It never returns nil for a
// non-nil err and never returns an unmapped error.
func Translate(err error) *ApiErr {
	if err == nil {
		return nil
	}

	var apiErr *ApiErr
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if translated, ok := fromPgError(pgErr); ok {
			return translated
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError("Resource").WithCause(err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return NewExpiredTokenError().WithCause(err)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		e := NewAuthenticationError("token not valid yet")
		e.sentinel = ErrInvalidToken
		return e.WithCause(err)
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidClaims):
		return NewInvalidTokenError().WithCause(err)
	case errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.ErrUnexpectedEOF):
		return NewInvalidJSONError(err)
	}

	return NewInternalErrorWithCause("internal server error", err)
}
