package api

import (
	"net/http"

	"github.com/devconnect-app/backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      AuthService
}

func newAuthHandler(auth AuthService) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      auth,
	}
}

// register creates an account and signs it in
// @Summary Register a new user
// @Tags Auth
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any "user and session"
// @Failure 400 {object} errs.Body "Validation error"
// @Failure 409 {object} errs.Body "Email or username already in use"
// @Router /api/auth/register [post]
func (h authHandler) register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Registration
		if err := bindBody(r, &in); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		user, session, err := h.auth.Register(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.logger.Info().Str("userID", user.ID.String()).Msg("user registered")
		h.responder.WriteSuccess(w, http.StatusCreated, "User registered successfully", map[string]any{
			"user":    user,
			"session": session,
		})
	}
}

// login exchanges credentials for a session
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any "user and session"
// @Failure 401 {object} errs.Body "Invalid credentials"
// @Router /api/auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.Login
		if err := bindBody(r, &in); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		user, session, err := h.auth.Login(r.Context(), in)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Login successful", map[string]any{
			"user":    user,
			"session": session,
		})
	}
}

func (h authHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.auth.Logout(r.Context(), ctxGetCaller(r.Context())); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "Logout successful", nil)
	}
}

func (h authHandler) refresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := bindBody(r, &in); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		session, err := h.auth.Refresh(r.Context(), in.RefreshToken)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", map[string]any{
			"session": session,
		})
	}
}

func (h authHandler) me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := h.auth.CurrentUser(r.Context(), ctxGetCaller(r.Context()))
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}
		h.responder.WriteSuccess(w, http.StatusOK, "User retrieved successfully", map[string]any{
			"user": user,
		})
	}
}
