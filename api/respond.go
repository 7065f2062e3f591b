package api

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/pagination"
	"github.com/rs/zerolog"
)

const maxResponseSize = 10 * 1024 * 1024 // 10MB

type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

// WriteJSON writes data with the given status.
func (r Responder) WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	// Marshal the data first to check size and handle errors
	jsonData, err := json.Marshal(data)
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling response data")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(jsonData) > maxResponseSize {
		r.logger.Error().
			Int("responseSize", len(jsonData)).
			Int("maxSize", maxResponseSize).
			Msg("response too large")
		r.writeBody(w, errs.New(errs.KindInternal, "response too large").
			WithDetail("max_size_mb", maxResponseSize/(1024*1024)))
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(jsonData); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// WriteSuccess writes {success:true, message, timestamp} plus data. A slice
// goes under "data" with a "total" count, a map or struct has its fields
// merged into the envelope and any other value goes under "data".
func (r Responder) WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	envelope := map[string]any{}

	if data != nil {
		v := reflect.ValueOf(data)
		for v.Kind() == reflect.Pointer && !v.IsNil() {
			v = v.Elem()
		}
		switch v.Kind() {
		case reflect.Slice, reflect.Array:
			envelope["data"] = data
			envelope["total"] = v.Len()
		case reflect.Map, reflect.Struct:
			fields, err := flatten(data)
			if err != nil {
				r.WriteError(w, nil, errs.NewInternalErrorWithCause("unable to encode response", err))
				return
			}
			for k, val := range fields {
				envelope[k] = val
			}
		default:
			envelope["data"] = data
		}
	}

	envelope["success"] = true
	envelope["message"] = message
	envelope["timestamp"] = timestamp()
	r.WriteJSON(w, status, envelope)
}

// PaginatedEnvelope is the body of every paginated listing.
type PaginatedEnvelope struct {
	Success    bool            `json:"success"`
	Data       any             `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
	Timestamp  string          `json:"timestamp"`
}

func (r Responder) WritePaginated(w http.ResponseWriter, data any, meta pagination.Meta) {
	r.WriteJSON(w, http.StatusOK, PaginatedEnvelope{
		Success:    true,
		Data:       data,
		Pagination: meta,
		Timestamp:  timestamp(),
	})
}

// WriteError translates err, logs it once and writes the error envelope.
// req may be nil when no request is at hand.
func (r Responder) WriteError(w http.ResponseWriter, req *http.Request, err error) {
	apiErr := errs.Translate(err)
	if apiErr == nil {
		apiErr = errs.NewInternalError("")
	}

	event := r.logger.Warn()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		event = r.logger.Error()
		if apiErr.Cause != nil {
			event = event.Str("cause", apiErr.GetFullError())
		}
	}
	if req != nil {
		event = event.Str("method", req.Method).Str("path", req.URL.Path)
	}
	event.
		Str("name", apiErr.Kind.Name()).
		Str("code", apiErr.Code()).
		Int("status", apiErr.StatusCode).
		Time("errorTime", apiErr.Timestamp).
		Msg(apiErr.Message())

	if apiErr.Kind == errs.KindRateLimit {
		if seconds, ok := apiErr.Details["retry_after"].(int); ok && seconds > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
		}
	}

	r.writeBody(w, apiErr)
}

func (r Responder) writeBody(w http.ResponseWriter, apiErr *errs.ApiErr) {
	body, err := json.Marshal(apiErr.ToBody())
	if err != nil {
		r.logger.Error().Err(err).Msg("error marshaling error body")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.StatusCode)
	if _, err := w.Write(body); err != nil {
		r.logger.Error().Err(err).Msg("error writing response")
	}
}

// flatten turns a map or struct into its JSON object fields.
func flatten(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
