package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"cliptube/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, id string, replacedBy *string) error
	RevokeAllForUser(ctx context.Context, userID int64) error
}

type VideoRepository interface {
	Create(ctx context.Context, userID int64, req model.CreateVideoRequest) (*model.Video, error)
	// GetByID returns the video with its likes/dislikes membership arrays
	// projected from video_reactions.
	GetByID(ctx context.Context, videoID int64) (*model.Video, error)
	List(ctx context.Context, cursor *string, limit int) ([]model.Video, *string, error)
	Exists(ctx context.Context, videoID int64) (bool, error)
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, videoID int64, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, videoID, userID int64, content string, parentID *int64) (*model.Comment, error)
	GetByID(ctx context.Context, commentID int64) (*model.Comment, error)
	// GetByVideoID returns every comment on the video with authors joined,
	// ordered oldest first. Tree assembly happens in the service layer.
	GetByVideoID(ctx context.Context, videoID int64) ([]model.Comment, error)
	Exists(ctx context.Context, commentID int64) (bool, error)
}

// ReactionRepository mutates and reads the reaction tables. Toggle runs the
// whole state transition inside one transaction; the returned state is the
// pair's state after the call.
type ReactionRepository interface {
	ToggleVideoReaction(ctx context.Context, videoID, userID int64, action model.Reaction) (model.ReactionState, error)
	ToggleCommentReaction(ctx context.Context, commentID, userID int64, action model.Reaction) (model.ReactionState, error)
	// GetUserReactionRows projects the user-side view from the entity-side
	// reaction rows, newest toggles first. Used to rebuild the mirror cache.
	GetUserReactionRows(ctx context.Context, userID int64, kind model.TargetKind) ([]model.ReactionRow, error)
}
