package api

import (
	"net/http"

	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/pagination"
	"github.com/devconnect-app/backend/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type profileHandler struct {
	responder Responder
	logger    zerolog.Logger
	profiles  ProfileService
}

func newProfileHandler(profiles ProfileService) profileHandler {
	logger := log.With().Str("handlerName", "profileHandler").Logger()

	return profileHandler{
		responder: NewResponder(logger),
		logger:    logger,
		profiles:  profiles,
	}
}

func (h profileHandler) listProfiles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := ctxGetQuery(r.Context())
		page, err := h.profiles.List(r.Context(),
			schema.String(query, "search", ""),
			schema.Int(query, "page", 1),
			schema.Int(query, "limit", pagination.DefaultLimit),
		)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WritePaginated(w, page.Items, pagination.NewMeta(page.Page, page.Limit, page.Total))
	}
}

func (h profileHandler) getProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		profile, err := h.profiles.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Profile retrieved successfully", map[string]any{
			"profile": profile,
		})
	}
}

// updateMyProfile applies a partial update to the caller's own profile.
func (h profileHandler) updateMyProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var changes models.ProfileChanges
		if err := bindBody(r, &changes); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		profile, err := h.profiles.Update(r.Context(), ctxGetCaller(r.Context()), changes)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Profile updated successfully", map[string]any{
			"profile": profile,
		})
	}
}

func (h profileHandler) stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := h.profiles.Stats(r.Context())
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Profile statistics retrieved successfully", stats)
	}
}
