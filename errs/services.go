package errs

import (
	"errors"
	"time"
)

// Dependency errors for collaborators other than the primary store
var (
	ErrStorageUnavailable = errors.New("object storage unavailable")
	ErrSessionStore       = errors.New("session store unavailable")
	ErrRateLimitExceeded  = errors.New("rate limit exceeded")
)

func NewStorageError(operation string, cause error) *ApiErr {
	e := NewExternalServiceError("storage", operation+" failed", cause)
	e.sentinel = ErrStorageUnavailable
	return e
}

func NewSessionStoreError(cause error) *ApiErr {
	e := NewExternalServiceError("session-store", "unable to reach session store", cause)
	e.sentinel = ErrSessionStore
	return e
}

// NewRetryAfterError is the RateLimitError raised on behalf of an upstream
// that asked us to back off.
func NewRetryAfterError(service string, retryAfter time.Duration) *ApiErr {
	e := NewRateLimitError(service+": too many requests", retryAfter)
	e.sentinel = ErrRateLimitExceeded
	return e.WithDetail("service", service)
}

func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
