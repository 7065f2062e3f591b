package api

import (
	"net/http"

	"github.com/devconnect-app/backend/models"
	"github.com/devconnect-app/backend/pagination"
	"github.com/devconnect-app/backend/schema"
	"github.com/devconnect-app/backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  CommentService
}

func newCommentHandler(comments CommentService) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		comments:  comments,
	}
}

type commentInput struct {
	Content string `json:"content"`
}

// listProjectComments returns the top-level comments of a project. Signed-in
// callers also learn which comments they like.
func (h commentHandler) listProjectComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectId")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		query := ctxGetQuery(r.Context())
		page, err := h.comments.ListForProject(r.Context(), projectID, services.CommentQuery{
			Page:  schema.Int(query, "page", 1),
			Limit: schema.Int(query, "limit", pagination.DefaultLimit),
			Sort:  models.ParseCommentSort(schema.String(query, "sort", "")),
		}, ctxGetCaller(r.Context()))
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WritePaginated(w, page.Items, pagination.NewMeta(page.Page, page.Limit, page.Total))
	}
}

func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectID, err := uuidParam(r, "projectId")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		var in commentInput
		if err := bindBody(r, &in); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		comment, err := h.comments.Create(r.Context(), ctxGetCaller(r.Context()), projectID, in.Content)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusCreated, "Comment created successfully", map[string]any{
			"comment": comment,
		})
	}
}

func (h commentHandler) listReplies() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := uuidParam(r, "commentId")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		query := ctxGetQuery(r.Context())
		page, err := h.comments.ListReplies(r.Context(), commentID,
			schema.Int(query, "page", 1),
			schema.Int(query, "limit", services.DefaultReplyLimit),
			ctxGetCaller(r.Context()),
		)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WritePaginated(w, page.Items, pagination.NewMeta(page.Page, page.Limit, page.Total))
	}
}

func (h commentHandler) createReply() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := uuidParam(r, "commentId")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		var in commentInput
		if err := bindBody(r, &in); err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		reply, err := h.comments.CreateReply(r.Context(), ctxGetCaller(r.Context()), commentID, in.Content)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		h.responder.WriteSuccess(w, http.StatusCreated, "Reply created successfully", map[string]any{
			"comment": reply,
		})
	}
}

// toggleLike flips the caller's like on a comment and returns the new state.
func (h commentHandler) toggleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commentID, err := uuidParam(r, "commentId")
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		state, err := h.comments.ToggleLike(r.Context(), ctxGetCaller(r.Context()), commentID)
		if err != nil {
			h.responder.WriteError(w, r, err)
			return
		}

		message := "Like removed"
		if state.IsLiked {
			message = "Like added"
		}
		h.responder.WriteSuccess(w, http.StatusOK, message, state)
	}
}
