package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cliptube/internal/httputil"
	"cliptube/internal/model"
	"cliptube/internal/service"
	"cliptube/internal/transport/http/middleware"
)

type ReactionHandler struct {
	reactionService *service.ReactionService
}

func NewReactionHandler(reactionService *service.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactionService: reactionService}
}

// ToggleVideo handles POST /reactions/video
// Flips the authenticated user's like/dislike state on a video.
func (h *ReactionHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.VideoReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.VideoID == 0 || req.Action == "" {
		httputil.WriteBadRequest(w, "Video ID and action are required")
		return
	}

	state, err := h.reactionService.ToggleVideo(r.Context(), userID, req.VideoID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidAction):
			httputil.WriteBadRequest(w, "Action must be like or dislike")
		case errors.Is(err, model.ErrVideoNotFound), errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "Video or user not found")
		default:
			log.Printf("[ERROR] Toggle video reaction handler: user=%d video=%d err=%v", userID, req.VideoID, err)
			httputil.WriteInternalError(w, "Failed to toggle reaction")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ToggleResponse{Success: true, State: state})
}

// ToggleComment handles POST /reactions/comment
// Flips the authenticated user's like/dislike state on a comment.
func (h *ReactionHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CommentReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.CommentID == 0 || req.Action == "" {
		httputil.WriteBadRequest(w, "Comment ID and action are required")
		return
	}

	state, err := h.reactionService.ToggleComment(r.Context(), userID, req.CommentID, req.Action)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidAction):
			httputil.WriteBadRequest(w, "Action must be like or dislike")
		case errors.Is(err, model.ErrCommentNotFound), errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "Comment or user not found")
		default:
			log.Printf("[ERROR] Toggle comment reaction handler: user=%d comment=%d err=%v", userID, req.CommentID, err)
			httputil.WriteInternalError(w, "Failed to toggle reaction")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.ToggleResponse{Success: true, State: state})
}

// GetMine handles GET /me/reactions?kind=videos|comments
// Returns the caller's liked and disliked id lists, newest first.
func (h *ReactionHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	kind := model.TargetVideo
	switch r.URL.Query().Get("kind") {
	case "", "videos":
	case "comments":
		kind = model.TargetComment
	default:
		httputil.WriteBadRequest(w, "kind must be videos or comments")
		return
	}

	reactions, err := h.reactionService.GetUserReactions(r.Context(), userID, kind)
	if err != nil {
		log.Printf("[ERROR] Get reactions handler: user=%d kind=%s err=%v", userID, kind, err)
		httputil.WriteInternalError(w, "Failed to get reactions")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, reactions)
}
