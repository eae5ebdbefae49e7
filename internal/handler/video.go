package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cliptube/internal/httputil"
	"cliptube/internal/model"
	"cliptube/internal/service"
	"cliptube/internal/transport/http/middleware"
)

type VideoHandler struct {
	videoService *service.VideoService
}

func NewVideoHandler(videoService *service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// Create handles POST /videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	video, err := h.videoService.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title is too long")
		case errors.Is(err, model.ErrDescriptionTooLong):
			httputil.WriteBadRequest(w, "Description is too long")
		case errors.Is(err, model.ErrVideoURLRequired):
			httputil.WriteBadRequest(w, "Video URL is required")
		default:
			log.Printf("[ERROR] Create video handler: user=%d err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to create video")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, video)
}

// GetByID handles GET /videos/{videoID}
// The response carries denormalized counts plus liked and disliked user id lists.
func (h *VideoHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	videoID, err := strconv.ParseInt(chi.URLParam(r, "videoID"), 10, 64)
	if err != nil || videoID <= 0 {
		httputil.WriteBadRequest(w, "Invalid video ID")
		return
	}

	video, err := h.videoService.GetByID(r.Context(), videoID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrVideoNotFound):
			httputil.WriteNotFound(w, "Video not found")
		default:
			log.Printf("[ERROR] Get video handler: video=%d err=%v", videoID, err)
			httputil.WriteInternalError(w, "Failed to get video")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, video)
}

// List handles GET /videos?cursor=&limit=
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 0 {
			httputil.WriteBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	resp, err := h.videoService.List(r.Context(), cursor, limit)
	if err != nil {
		log.Printf("[ERROR] List videos handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to list videos")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}
