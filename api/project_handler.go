package api

import (
	"errors"
	"net/http"

	"github.com/devconnect-app/backend/errs"
	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/pagination"
	"github.com/devconnect-app/backend/schema"
	"github.com/devconnect-app/backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// maxMultipartMemory is how much of an upload is kept in memory before
// spilling to a temporary file.
const maxMultipartMemory = 8 << 20

type projectHandler struct {
	responder Responder
	logger    zerolog.Logger
	projects  ProjectService
}

func newProjectHandler(projects ProjectService) projectHandler {
	logger := log.With().Str("handlerName", "projectHandler").Logger()

	return projectHandler{
		responder: NewResponder(logger),
		logger:    logger,
		projects:  projects,
	}
}

// listProjects returns a window of projects, newest first
// @Summary List projects
// @Description Paginated project listing with an optional title/description search
// @Tags Projects
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size, clamped to 100"
// @Param offset query int false "Explicit offset"
// @Param search query string false "Search term"
// @Success 200 {object} PaginatedEnvelope
// @Failure 400 {object} errs.Body "Validation error"
// @Router /api/projects [get]
func (h projectHandler) listProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := ctxGetQuery(r.Context())

		page, err := h.projects.List(r.Context(), services.ProjectQuery{
			Page:   schema.Int(query, "page", 1),
			Limit:  schema.Int(query, "limit", pagination.DefaultLimit),
			Offset: schema.Int(query, "offset", -1),
			Search: schema.String(query, "search", ""),
		})
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WritePaginated(w, page.Items, pagination.NewMeta(page.Page, page.Limit, page.Total))
	}
}

// getProject retrieves a single project with its author
// @Summary Get a project
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]any "project"
// @Failure 404 {object} errs.Body "Project not found"
// @Router /api/projects/{id} [get]
func (h projectHandler) getProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		project, err := h.projects.Get(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Project retrieved successfully", map[string]any{
			"project": project,
		})
	}
}

// createProject creates a project owned by the caller
// @Summary Create a project
// @Tags Projects
// @Accept json
// @Produce json
// @Success 201 {object} map[string]any "project"
// @Failure 400 {object} errs.Body "Validation error"
// @Failure 401 {object} errs.Body "Missing or invalid token"
// @Router /api/projects [post]
func (h projectHandler) createProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.ProjectInput
		if err := bindBody(r, &in); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		project, err := h.projects.Create(r.Context(), ctxGetCaller(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusCreated, "Project created successfully", map[string]any{
			"project": project,
		})
	}
}

// updateProject applies a partial update to a project the caller owns
// @Summary Update a project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]any "project"
// @Failure 403 {object} errs.Body "Not the owner"
// @Failure 404 {object} errs.Body "Project not found"
// @Router /api/projects/{id} [put]
func (h projectHandler) updateProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		var changes models.ProjectChanges
		if err := bindBody(r, &changes); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		project, err := h.projects.Update(r.Context(), ctxGetCaller(r.Context()), id, changes)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Project updated successfully", map[string]any{
			"project": project,
		})
	}
}

// deleteProject removes a project the caller owns
// @Summary Delete a project
// @Tags Projects
// @Param id path string true "Project ID"
// @Success 200 {object} map[string]any
// @Failure 403 {object} errs.Body "Not the owner"
// @Failure 404 {object} errs.Body "Project not found"
// @Router /api/projects/{id} [delete]
func (h projectHandler) deleteProject() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		if err := h.projects.Delete(r.Context(), ctxGetCaller(r.Context()), id); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Project deleted successfully", nil)
	}
}

func (h projectHandler) listUserProjects() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuidParam(r, "userId")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		query := ctxGetQuery(r.Context())
		page, err := h.projects.ListByUser(r.Context(), userID,
			schema.Int(query, "limit", pagination.DefaultLimit),
			schema.Int(query, "offset", 0),
		)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WritePaginated(w, page.Items, pagination.NewMeta(page.Page, page.Limit, page.Total))
	}
}

// uploadImage stores the multipart "image" file as the project's cover.
func (h projectHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, services.DefaultMaxImageBytes+maxMultipartMemory)
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.responder.WriteError(w, r, errs.NewInvalidFieldError("image", "file is too large"))
				return
			}
			h.responder.WriteError(w, r, errs.NewRequestError("expected a multipart/form-data body").WithCause(err))
			return
		}
		defer func() {
			if err := r.MultipartForm.RemoveAll(); err != nil {
				h.logger.Warn().Err(err).Msg("failed to remove multipart temp files")
			}
		}()

		file, header, err := r.FormFile("image")
		if err != nil {
			h.responder.WriteError(w, r, errs.NewMissingRequiredFieldError("image"))
			return
		}
		defer file.Close()

		project, err := h.projects.AttachImage(r.Context(), ctxGetCaller(r.Context()), id, services.Image{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		})
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusOK, "Project image uploaded successfully", map[string]any{
			"project": project,
		})
	}
}
