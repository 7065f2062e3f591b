package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is the closed set of failure categories a client can observe.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
	KindRequest
	KindDatabase
	KindExternalService
)

type kindInfo struct {
	name   string
	code   string
	status int
}

var kinds = map[Kind]kindInfo{
	KindInternal:        {"ApiError", "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	KindValidation:      {"ValidationError", "VALIDATION_ERROR", http.StatusBadRequest},
	KindAuthentication:  {"AuthenticationError", "AUTHENTICATION_ERROR", http.StatusUnauthorized},
	KindAuthorization:   {"AuthorizationError", "AUTHORIZATION_ERROR", http.StatusForbidden},
	KindNotFound:        {"NotFoundError", "NOT_FOUND_ERROR", http.StatusNotFound},
	KindConflict:        {"ConflictError", "CONFLICT_ERROR", http.StatusConflict},
	KindRateLimit:       {"RateLimitError", "RATE_LIMIT_ERROR", http.StatusTooManyRequests},
	KindRequest:         {"RequestError", "REQUEST_ERROR", http.StatusBadRequest},
	KindDatabase:        {"DatabaseError", "DATABASE_ERROR", http.StatusInternalServerError},
	KindExternalService: {"ExternalServiceError", "EXTERNAL_SERVICE_ERROR", http.StatusBadGateway},
}

func (k Kind) info() kindInfo {
	if info, ok := kinds[k]; ok {
		return info
	}
	return kinds[KindInternal]
}

// Name returns the error class name used in logs.
func (k Kind) Name() string { return k.info().name }

// Code returns the stable machine code sent to clients.
func (k Kind) Code() string { return k.info().code }

// Status returns the default HTTP status for the kind.
func (k Kind) Status() int { return k.info().status }

func (k Kind) String() string { return k.Name() }

// Common error sentinel values
var (
	ErrForbidden    = errors.New("operation not allowed")
	ErrBadRequest   = errors.New("malformed request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
	ErrConflict     = errors.New("resource conflict")
	ErrNotFound     = errors.New("not found")
)

type ApiErr struct {
	Kind       Kind
	StatusCode int
	Details    map[string]any // Kind-specific fields merged into the "details" object
	Timestamp  time.Time
	Cause      error // The underlying cause of the error
	message    string
	sentinel   error
}

// New builds an ApiErr of the given kind with the kind's default status.
func New(kind Kind, message string) *ApiErr {
	return &ApiErr{
		Kind:       kind,
		StatusCode: kind.Status(),
		Timestamp:  time.Now().UTC(),
		message:    message,
	}
}

func newWrapped(kind Kind, sentinel error, message string) *ApiErr {
	e := New(kind, message)
	e.sentinel = sentinel
	return e
}

// implements error interface. this allows us to pass an instance of ApiErr as an argument of type `error`
func (e *ApiErr) Error() string {
	return e.message
}

// Message is the human readable text sent to clients.
func (e *ApiErr) Message() string {
	return e.message
}

// Code is shorthand for e.Kind.Code().
func (e *ApiErr) Code() string {
	return e.Kind.Code()
}

// GetFullError returns a recursive error message including all causes
func (e *ApiErr) GetFullError() string {
	msg := e.Error()
	if e.Cause != nil {
		if apiErr, ok := e.Cause.(*ApiErr); ok {
			msg = fmt.Sprintf("%s -> %s", msg, apiErr.GetFullError())
		} else {
			msg = fmt.Sprintf("%s -> %s", msg, e.Cause.Error())
		}
	}
	return msg
}

// this function allows us to do the following:
// err := errs.NewNotFoundError("Project")
// errors.Is(err, errs.ErrNotFound) ==> evaluates to true
func (e *ApiErr) Unwrap() error {
	return e.sentinel
}

// WithDetail sets one kind-specific detail and returns the receiver.
func (e *ApiErr) WithDetail(key string, value any) *ApiErr {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying failure without exposing it to clients.
func (e *ApiErr) WithCause(cause error) *ApiErr {
	e.Cause = cause
	return e
}

// Body is the client-facing JSON shape of an ApiErr.
type Body struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error"`
	Details   map[string]any `json:"details"`
	Timestamp string         `json:"timestamp"`
}

// ToBody renders the error envelope: {success:false, error, details:{code,...}, timestamp}.
func (e *ApiErr) ToBody() Body {
	details := make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details["code"] = e.Code()
	return Body{
		Success:   false,
		Error:     e.Message(),
		Details:   details,
		Timestamp: e.Timestamp.Format(time.RFC3339Nano),
	}
}

func (e *ApiErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.ToBody())
}

// Constructors, one per kind

func NewValidationError(message string, validationErrors map[string]string) *ApiErr {
	if validationErrors == nil {
		validationErrors = map[string]string{}
	}
	return newWrapped(KindValidation, ErrBadRequest, message).
		WithDetail("validation_errors", validationErrors)
}

func NewAuthenticationError(message string) *ApiErr {
	if message == "" {
		message = "authentication token required"
	}
	return newWrapped(KindAuthentication, ErrUnauthorized, message)
}

func NewAuthorizationError(message string) *ApiErr {
	if message == "" {
		message = "you do not have permission to perform this action"
	}
	return newWrapped(KindAuthorization, ErrForbidden, message)
}

func NewNotFoundError(resource string) *ApiErr {
	if resource == "" {
		resource = "Resource"
	}
	return newWrapped(KindNotFound, ErrNotFound, resource+" not found")
}

func NewConflictError(message string) *ApiErr {
	if message == "" {
		message = "resource already exists"
	}
	return newWrapped(KindConflict, ErrConflict, message)
}

func NewRateLimitError(message string, retryAfter time.Duration) *ApiErr {
	if message == "" {
		message = "too many requests"
	}
	return New(KindRateLimit, message).WithDetail("retry_after", int(retryAfter.Seconds()))
}

func NewRequestError(message string) *ApiErr {
	if message == "" {
		message = "bad request"
	}
	return newWrapped(KindRequest, ErrBadRequest, message)
}

func NewExternalServiceError(service, message string, cause error) *ApiErr {
	if message == "" {
		message = "external service error"
	}
	return newWrapped(KindExternalService, ErrInternal, fmt.Sprintf("%s: %s", service, message)).
		WithDetail("service", service).
		WithCause(cause)
}

func NewInternalError(message string) *ApiErr {
	if message == "" {
		message = "internal server error"
	}
	return newWrapped(KindInternal, ErrInternal, message)
}

func NewInternalErrorWithCause(message string, cause error) *ApiErr {
	return NewInternalError(message).WithCause(cause)
}

// Type checkers

func IsKind(err error, kind Kind) bool {
	var apiErr *ApiErr
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
