package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"cliptube/internal/httputil"
	"cliptube/internal/model"
	"cliptube/internal/service"
	"cliptube/internal/transport/http/middleware"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// Create handles POST /comments
// Posts a top-level comment or a reply under an existing comment.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrContentRequired):
			httputil.WriteBadRequest(w, "Comment content is required")
		case errors.Is(err, model.ErrContentTooLong):
			httputil.WriteBadRequest(w, "Comment content is too long")
		case errors.Is(err, model.ErrVideoIDRequired):
			httputil.WriteBadRequest(w, "Video ID is required")
		case errors.Is(err, model.ErrVideoNotFound):
			httputil.WriteNotFound(w, "Video not found")
		case errors.Is(err, model.ErrParentNotFound):
			httputil.WriteNotFound(w, "Parent comment not found")
		case errors.Is(err, model.ErrParentWrongVideo):
			httputil.WriteBadRequest(w, "Parent comment belongs to a different video")
		default:
			log.Printf("[ERROR] Create comment handler: user=%d video=%d err=%v", userID, req.VideoID, err)
			httputil.WriteInternalError(w, "Failed to create comment")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// ListByVideo handles GET /comments?videoId=
// Returns the video's comment tree, replies nested under their parents.
func (h *CommentHandler) ListByVideo(w http.ResponseWriter, r *http.Request) {
	videoID, err := strconv.ParseInt(r.URL.Query().Get("videoId"), 10, 64)
	if err != nil || videoID <= 0 {
		httputil.WriteBadRequest(w, "videoId query parameter is required")
		return
	}

	tree, err := h.commentService.ListByVideo(r.Context(), videoID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrVideoNotFound):
			httputil.WriteNotFound(w, "Video not found")
		default:
			log.Printf("[ERROR] List comments handler: video=%d err=%v", videoID, err)
			httputil.WriteInternalError(w, "Failed to list comments")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": tree})
}
