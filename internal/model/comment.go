package model

import (
	"errors"
	"time"
)

// Comment represents a single comment row. Replies are linked by parent
// pointer; the display tree is assembled on read (see CommentNode).
type Comment struct {
	ID              int64        `db:"id" json:"id"`
	VideoID         int64        `db:"video_id" json:"video_id"`
	UserID          int64        `db:"user_id" json:"-"`
	ParentCommentID *int64       `db:"parent_comment_id" json:"parent_comment_id,omitempty"`
	Content         string       `db:"content" json:"content"`
	LikeCount       int          `db:"like_count" json:"like_count"`
	DislikeCount    int          `db:"dislike_count" json:"dislike_count"`
	CreatedAt       time.Time    `db:"created_at" json:"created_at"`
	Author          *UserSummary `json:"author,omitempty"` // Joined field
}

// CommentNode is a comment with its replies resolved for display.
// Replies nest at most MaxReplyDepth levels below a root; a node at the depth
// cap carries deeper children only as ReplyIDs, never as expanded nodes.
type CommentNode struct {
	Comment
	Replies  []CommentNode `json:"replies"`
	ReplyIDs []int64       `json:"reply_ids,omitempty"`
}

// MaxReplyDepth is the number of nesting levels resolved below a root
// comment on read. Roots are depth 0; replies-of-replies (depth 2) are the
// deepest expanded nodes.
const MaxReplyDepth = 2

// CreateCommentRequest is the request body for creating a comment.
type CreateCommentRequest struct {
	VideoID  int64  `json:"video_id"`
	Content  string `json:"content"`
	ParentID *int64 `json:"parent_id,omitempty"`
}

// Comment constraints
const (
	MaxCommentLength = 2200
)

// Comment errors
var (
	ErrCommentNotFound  = errors.New("comment not found")
	ErrParentNotFound   = errors.New("parent comment not found")
	ErrParentWrongVideo = errors.New("parent comment belongs to a different video")
	ErrContentRequired  = errors.New("comment content is required")
	ErrContentTooLong   = errors.New("comment content too long")
	ErrVideoIDRequired  = errors.New("video id is required")
)
