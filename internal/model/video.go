package model

import (
	"errors"
	"time"
)

// Video represents an uploaded video with its metadata. The actual bytes live
// on the media CDN; this record only carries the public URLs.
type Video struct {
	ID           int64     `db:"id" json:"id"`
	UserID       int64     `db:"user_id" json:"user_id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	VideoURL     string    `db:"video_url" json:"video_url"`
	ThumbnailURL string    `db:"thumbnail_url" json:"thumbnail_url"`
	LikeCount    int       `db:"like_count" json:"like_count"`
	DislikeCount int       `db:"dislike_count" json:"dislike_count"`
	CommentCount int       `db:"comment_count" json:"comment_count"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Projections from video_reactions, populated on single-video reads.
	Likes    []int64      `json:"likes"`
	Dislikes []int64      `json:"dislikes"`
	Author   *UserSummary `json:"author,omitempty"`
}

// CreateVideoRequest registers a video whose file and thumbnail were already
// uploaded to the CDN via the presign flow.
type CreateVideoRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// VideoListResponse is the paginated video feed response.
type VideoListResponse struct {
	Videos     []Video `json:"videos"`
	NextCursor *string `json:"next_cursor,omitempty"`
	HasMore    bool    `json:"has_more"`
}

// Video constraints
const (
	MaxVideoTitleLength       = 100
	MaxVideoDescriptionLength = 5000
)

// Video errors
var (
	ErrVideoNotFound      = errors.New("video not found")
	ErrTitleRequired      = errors.New("video title is required")
	ErrTitleTooLong       = errors.New("video title too long")
	ErrDescriptionTooLong = errors.New("video description too long")
	ErrVideoURLRequired   = errors.New("video url is required")
)
