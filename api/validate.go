package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/schema"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// validator turns the schema registry into request-filtering middleware.
type validator struct {
	registry  *schema.Registry
	responder Responder
}

func newValidator(registry *schema.Registry) validator {
	logger := log.With().Str("handlerName", "validator").Logger()
	return validator{registry: registry, responder: NewResponder(logger)}
}

// body validates the JSON request body against the named schema and keeps
// the raw bytes for the handler to bind.
func (v validator) body(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					v.responder.WriteError(w, r, errs.NewRequestError("request body too large"))
					return
				}
				v.responder.WriteError(w, r, errs.NewRequestError("unable to read request body").WithCause(err))
				return
			}

			var data any
			if len(bytes.TrimSpace(raw)) == 0 {
				data = map[string]any{}
			} else if err := json.Unmarshal(raw, &data); err != nil {
				v.responder.WriteError(w, r, errs.NewInvalidJSONError(err))
				return
			}

			if !v.check(w, r, name, data) {
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(raw))
			next.ServeHTTP(w, r.WithContext(ctxWithBody(r.Context(), raw)))
		})
	}
}

// query validates the coerced query string against the named schema.
func (v validator) query(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query := schema.CoerceQuery(r.URL.Query())
			if !v.check(w, r, name, query) {
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxWithQuery(r.Context(), query)))
		})
	}
}

// params validates the route's URL parameters against the named schema.
func (v validator) params(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			params := map[string]any{}
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				for i, key := range rctx.URLParams.Keys {
					if key == "*" {
						continue
					}
					params[key] = rctx.URLParams.Values[i]
				}
			}
			if !v.check(w, r, name, params) {
				return
			}
			next.ServeHTTP(w, r.WithContext(ctxWithParams(r.Context(), params)))
		})
	}
}

func (v validator) check(w http.ResponseWriter, r *http.Request, name string, data any) bool {
	result, err := v.registry.Validate(name, data)
	if err != nil {
		v.responder.WriteError(w, r, errs.NewInternalErrorWithCause("validation failed", err))
		return false
	}
	if !result.Valid {
		v.responder.WriteError(w, r, errs.NewValidationError("invalid input data", result.FieldMap()))
		return false
	}
	return true
}

// bindBody decodes the validated body into dst. An empty body leaves dst untouched.
func bindBody(r *http.Request, dst any) error {
	raw, ok := ctxGetBody(r.Context())
	if !ok {
		var err error
		if raw, err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes)); err != nil {
			return errs.NewRequestError("unable to read request body").WithCause(err)
		}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errs.NewInvalidJSONError(err)
	}
	return nil
}

// uuidParam reads a URL parameter, preferring the value the params
// validator already checked.
func uuidParam(r *http.Request, key string) (uuid.UUID, error) {
	value := chi.URLParam(r, key)
	if validated, ok := ctxGetParams(r.Context())[key].(string); ok {
		value = validated
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError(key, "must be a valid UUID")
	}
	return id, nil
}
