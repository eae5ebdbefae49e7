package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"cliptube/internal/httputil"
	"cliptube/internal/model"
	"cliptube/internal/service"
	"cliptube/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// PresignVideoUpload handles POST /media/videos/presign
// Issues a short-lived URL that lets the client PUT the video bytes
// straight to the bucket without streaming through this server.
func (h *MediaHandler) PresignVideoUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.PresignVideoUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if req.ContentType == "" {
		httputil.WriteBadRequest(w, "Content type is required")
		return
	}
	if req.FileSize > model.MaxVideoSizeBytes {
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Video exceeds 500MB limit")
		return
	}

	resp, err := h.mediaService.PresignVideoUpload(r.Context(), req.ContentType)
	if err != nil {
		if errors.Is(err, model.ErrInvalidVideoType) {
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidVideoType, "Unsupported video type. Allowed: mp4, webm")
			return
		}
		log.Printf("[ERROR] Presign video upload handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to presign upload")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// UploadThumbnail handles POST /media/thumbnails (multipart "thumbnail" field).
// The image is normalized server-side to a 640x360 JPEG before storage.
func (h *MediaHandler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxThumbnailSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Thumbnail exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		httputil.WriteBadRequest(w, "Thumbnail file is required")
		return
	}
	defer file.Close()

	upload, err := h.mediaService.UploadThumbnail(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Thumbnail exceeds 5MB limit")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, webp")
		default:
			log.Printf("[ERROR] Upload thumbnail handler: err=%v", err)
			httputil.WriteInternalError(w, "Failed to upload thumbnail")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, upload)
}
