package service

import (
	"context"
	"fmt"
	"log"

	"cliptube/internal/cache"
	"cliptube/internal/model"
	"cliptube/internal/queue"
	"cliptube/internal/repository"
)

// ReactionService flips a user's reaction to a video or comment between
// none, liked and disliked. The entity-side reaction row is the source of
// truth; after each commit an event is published so workers keep the
// user-side mirror index in step.
type ReactionService struct {
	reactionRepo repository.ReactionRepository
	videoRepo    repository.VideoRepository
	commentRepo  repository.CommentRepository
	userRepo     repository.UserRepository
	mirror       cache.ReactionMirror
	publisher    queue.Publisher
}

func NewReactionService(
	reactionRepo repository.ReactionRepository,
	videoRepo repository.VideoRepository,
	commentRepo repository.CommentRepository,
	userRepo repository.UserRepository,
	mirror cache.ReactionMirror,
	publisher queue.Publisher,
) *ReactionService {
	return &ReactionService{
		reactionRepo: reactionRepo,
		videoRepo:    videoRepo,
		commentRepo:  commentRepo,
		userRepo:     userRepo,
		mirror:       mirror,
		publisher:    publisher,
	}
}

// ToggleVideo applies a like/dislike action to a video for the given user.
// Toggling the held action removes it; toggling the opposite action replaces
// it. Repeating a toggle is never an error.
func (s *ReactionService) ToggleVideo(ctx context.Context, userID, videoID int64, action model.Reaction) (model.ReactionState, error) {
	if !action.Valid() {
		return model.StateNone, model.ErrInvalidAction
	}

	if err := s.checkActor(ctx, userID); err != nil {
		return model.StateNone, err
	}

	exists, err := s.videoRepo.Exists(ctx, videoID)
	if err != nil {
		return model.StateNone, fmt.Errorf("check video exists: %w", err)
	}
	if !exists {
		return model.StateNone, model.ErrVideoNotFound
	}

	state, err := s.reactionRepo.ToggleVideoReaction(ctx, videoID, userID, action)
	if err != nil {
		return model.StateNone, fmt.Errorf("toggle video reaction: %w", err)
	}

	log.Printf("[ReactionService] User %d %s video %d -> %s", userID, action, videoID, state)
	s.publishToggle(ctx, userID, model.TargetVideo, videoID, state)

	return state, nil
}

// ToggleComment applies a like/dislike action to a comment for the given user.
func (s *ReactionService) ToggleComment(ctx context.Context, userID, commentID int64, action model.Reaction) (model.ReactionState, error) {
	if !action.Valid() {
		return model.StateNone, model.ErrInvalidAction
	}

	if err := s.checkActor(ctx, userID); err != nil {
		return model.StateNone, err
	}

	exists, err := s.commentRepo.Exists(ctx, commentID)
	if err != nil {
		return model.StateNone, fmt.Errorf("check comment exists: %w", err)
	}
	if !exists {
		return model.StateNone, model.ErrCommentNotFound
	}

	state, err := s.reactionRepo.ToggleCommentReaction(ctx, commentID, userID, action)
	if err != nil {
		return model.StateNone, fmt.Errorf("toggle comment reaction: %w", err)
	}

	log.Printf("[ReactionService] User %d %s comment %d -> %s", userID, action, commentID, state)
	s.publishToggle(ctx, userID, model.TargetComment, commentID, state)

	return state, nil
}

// GetUserReactions returns the caller's liked/disliked id lists for one
// target kind, newest first. Served from the mirror; rebuilt from the
// reaction tables when the mirror is cold.
func (s *ReactionService) GetUserReactions(ctx context.Context, userID int64, kind model.TargetKind) (*model.UserReactions, error) {
	if kind != model.TargetVideo && kind != model.TargetComment {
		return nil, model.ErrInvalidTargetKind
	}

	reactions, found, err := s.mirror.Get(ctx, userID, kind)
	if err != nil {
		log.Printf("[ReactionService] Mirror read failed, falling back to DB: user=%d err=%v", userID, err)
	} else if found {
		return reactions, nil
	}

	rows, err := s.reactionRepo.GetUserReactionRows(ctx, userID, kind)
	if err != nil {
		return nil, fmt.Errorf("get user reactions: %w", err)
	}

	// Warm the mirror best-effort so the next read skips the table scan.
	if err := s.mirror.Warm(ctx, userID, kind, rows); err != nil {
		log.Printf("[ReactionService] Mirror warm failed: user=%d kind=%s err=%v", userID, kind, err)
	}

	reactions = &model.UserReactions{Liked: []int64{}, Disliked: []int64{}}
	for _, row := range rows {
		if row.Reaction == model.ReactionLike {
			reactions.Liked = append(reactions.Liked, row.TargetID)
		} else {
			reactions.Disliked = append(reactions.Disliked, row.TargetID)
		}
	}
	return reactions, nil
}

// checkActor verifies the acting user record exists.
func (s *ReactionService) checkActor(ctx context.Context, userID int64) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("check user exists: %w", err)
	}
	if !exists {
		return model.ErrUserNotFound
	}
	return nil
}

// publishToggle emits the post-commit mirror event, best-effort.
func (s *ReactionService) publishToggle(ctx context.Context, userID int64, kind model.TargetKind, targetID int64, state model.ReactionState) {
	if s.publisher == nil {
		return
	}
	event := queue.NewReactionToggledEvent(userID, kind, targetID, state)
	if _, err := s.publisher.Publish(ctx, queue.StreamReactions, event); err != nil {
		log.Printf("[ReactionService] Failed to publish reaction event: %v", err)
	}
}
