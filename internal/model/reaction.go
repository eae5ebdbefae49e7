package model

import (
	"errors"
	"time"
)

// Reaction is the kind of reaction a user can hold on a target.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// Valid reports whether the reaction is one of the two accepted actions.
func (r Reaction) Valid() bool {
	return r == ReactionLike || r == ReactionDislike
}

// TargetKind identifies what a reaction points at.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
)

// ReactionState is the state of a (user, target) pair after a toggle.
// Exactly one holds at any time; the reaction tables' composite primary key
// makes like+dislike-simultaneously unrepresentable.
type ReactionState string

const (
	StateNone     ReactionState = "none"
	StateLiked    ReactionState = "liked"
	StateDisliked ReactionState = "disliked"
)

// VideoReactionRequest is the body for POST /reactions/video.
type VideoReactionRequest struct {
	VideoID int64    `json:"video_id"`
	Action  Reaction `json:"action"`
}

// CommentReactionRequest is the body for POST /reactions/comment.
type CommentReactionRequest struct {
	CommentID int64    `json:"comment_id"`
	Action    Reaction `json:"action"`
}

// ToggleResponse reports the state the toggle left the pair in, so clients
// can render without refetching the whole record.
type ToggleResponse struct {
	Success bool          `json:"success"`
	State   ReactionState `json:"state"`
}

// UserReactions is the caller's own liked/disliked id lists, newest first.
type UserReactions struct {
	Liked    []int64 `json:"liked"`
	Disliked []int64 `json:"disliked"`
}

// ReactionRow is a persisted reaction record.
type ReactionRow struct {
	TargetID  int64     `db:"target_id"`
	UserID    int64     `db:"user_id"`
	Reaction  Reaction  `db:"reaction"`
	CreatedAt time.Time `db:"created_at"`
}

// Reaction errors
var (
	ErrInvalidAction     = errors.New("action must be like or dislike")
	ErrInvalidTargetKind = errors.New("unknown reaction target kind")
)
