package model

import "errors"

const (
	MaxVideoSizeBytes     = 500 * 1024 * 1024 // 500MB per upload
	MaxThumbnailSizeBytes = 5 * 1024 * 1024

	ThumbnailWidth  = 640
	ThumbnailHeight = 360 // 16:9
	ThumbnailFolder = "thumbnails"
	ThumbnailExt    = ".jpg"

	VideoFolder       = "videos"
	MediaCacheControl = "public, max-age=31536000" // 1 year
)

// Supported content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeWebP = "image/webp"
	ContentTypeMP4  = "video/mp4"
	ContentTypeWebM = "video/webm"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeWebP: {},
}

var allowedVideoTypes = map[string]string{
	ContentTypeMP4:  ".mp4",
	ContentTypeWebM: ".webm",
}

// IsAllowedImageType reports whether the content type can be decoded into a thumbnail.
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// VideoExtForContentType returns the object-key extension for a video content
// type, or "" if the type is not accepted.
func VideoExtForContentType(contentType string) string {
	return allowedVideoTypes[contentType]
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
	CodeInvalidVideoType = "INVALID_VIDEO_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrInvalidVideoType = errors.New("invalid video type")
)

// UploadResult represents the uploaded object location.
// URL is the public-facing URL; Key is the object key inside the bucket.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignVideoUploadRequest requests a presigned URL for uploading a video
// file directly to the CDN bucket. The client PUTs the bytes to UploadURL and
// then registers the video via POST /videos with PublicURL.
type PresignVideoUploadRequest struct {
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"` // Optional but recommended for validation
}

// PresignVideoUploadResponse returns upload details for direct-to-bucket uploads.
type PresignVideoUploadResponse struct {
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
	Key       string `json:"key"`
}
