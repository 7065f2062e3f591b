package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler    authHandler
	projectHandler projectHandler
	commentHandler commentHandler
	profileHandler profileHandler
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Uptime    string `json:"uptime"`
	StartedAt string `json:"started_at"`
}

type healthHandler struct {
	responder   Responder
	logger      zerolog.Logger
	pinger      Pinger
	startupTime time.Time
}

func newHealthHandler(pinger Pinger, startupTime time.Time) healthHandler {
	logger := log.With().Str("handlerName", "healthHandler").Logger()
	return healthHandler{
		responder:   NewResponder(logger),
		logger:      logger,
		pinger:      pinger,
		startupTime: startupTime,
	}
}

// health reports liveness and whether the database answers a ping. An
// unreachable database degrades the status without failing the probe.
func (h healthHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:    "ok",
			Database:  "ok",
			Uptime:    time.Since(h.startupTime).Round(time.Second).String(),
			StartedAt: h.startupTime.UTC().Format(time.RFC3339),
		}

		if h.pinger != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := h.pinger.Ping(ctx); err != nil {
				h.logger.Warn().Err(err).Msg("database ping failed")
				resp.Status = "degraded"
				resp.Database = "unreachable"
			}
		} else {
			resp.Database = "unknown"
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Service is healthy", resp)
	}
}
