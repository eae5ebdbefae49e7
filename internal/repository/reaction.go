package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"cliptube/internal/model"
)

type reactionRepository struct {
	db *sqlx.DB
}

func NewReactionRepository(db *sqlx.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

// reactionTarget describes the table layout for one target kind. The video
// and comment reaction tables are symmetric, so the toggle logic is written
// once against this descriptor.
type reactionTarget struct {
	table       string // reaction table
	idColumn    string // FK column in the reaction table
	entityTable string // table carrying the counter columns
}

var reactionTargets = map[model.TargetKind]reactionTarget{
	model.TargetVideo: {
		table:       "video_reactions",
		idColumn:    "video_id",
		entityTable: "videos",
	},
	model.TargetComment: {
		table:       "comment_reactions",
		idColumn:    "comment_id",
		entityTable: "comments",
	},
}

func (r *reactionRepository) ToggleVideoReaction(ctx context.Context, videoID, userID int64, action model.Reaction) (model.ReactionState, error) {
	return r.toggle(ctx, model.TargetVideo, videoID, userID, action)
}

func (r *reactionRepository) ToggleCommentReaction(ctx context.Context, commentID, userID int64, action model.Reaction) (model.ReactionState, error) {
	return r.toggle(ctx, model.TargetComment, commentID, userID, action)
}

// toggle flips the (user, target) reaction state in one transaction.
// The row lock taken by SELECT ... FOR UPDATE serializes concurrent toggles
// on the same pair; the composite primary key keeps like+dislike mutually
// exclusive no matter what.
//
// Transitions:
//
//	none     --like--> liked        insert row
//	liked    --like--> none         delete row ("unlike")
//	disliked --like--> liked        flip row in place
//
// and symmetrically for dislike.
func (r *reactionRepository) toggle(ctx context.Context, kind model.TargetKind, targetID, userID int64, action model.Reaction) (model.ReactionState, error) {
	target, ok := reactionTargets[kind]
	if !ok {
		return model.StateNone, model.ErrInvalidTargetKind
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.StateNone, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current model.Reaction
	query := fmt.Sprintf(`SELECT reaction FROM %s WHERE %s = $1 AND user_id = $2 FOR UPDATE`,
		target.table, target.idColumn)
	err = tx.GetContext(ctx, &current, query, targetID, userID)
	hasRow := true
	if err == sql.ErrNoRows {
		hasRow = false
	} else if err != nil {
		return model.StateNone, fmt.Errorf("get current reaction: %w", err)
	}

	var state model.ReactionState
	switch {
	case hasRow && current == action:
		// Repeating the same action removes the reaction.
		del := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND user_id = $2`,
			target.table, target.idColumn)
		if _, err := tx.ExecContext(ctx, del, targetID, userID); err != nil {
			return model.StateNone, fmt.Errorf("delete reaction: %w", err)
		}
		if err := r.adjustCount(ctx, tx, target, targetID, action, -1); err != nil {
			return model.StateNone, err
		}
		state = model.StateNone

	case hasRow:
		// Opposite reaction held: flip it. One UPDATE replaces the
		// remove-from-one-set / add-to-the-other pair atomically.
		upd := fmt.Sprintf(`UPDATE %s SET reaction = $1, created_at = NOW() WHERE %s = $2 AND user_id = $3`,
			target.table, target.idColumn)
		if _, err := tx.ExecContext(ctx, upd, action, targetID, userID); err != nil {
			return model.StateNone, fmt.Errorf("flip reaction: %w", err)
		}
		if err := r.adjustCount(ctx, tx, target, targetID, current, -1); err != nil {
			return model.StateNone, err
		}
		if err := r.adjustCount(ctx, tx, target, targetID, action, 1); err != nil {
			return model.StateNone, err
		}
		state = stateFor(action)

	default:
		ins := fmt.Sprintf(`INSERT INTO %s (%s, user_id, reaction) VALUES ($1, $2, $3)`,
			target.table, target.idColumn)
		if _, err := tx.ExecContext(ctx, ins, targetID, userID, action); err != nil {
			return model.StateNone, fmt.Errorf("insert reaction: %w", err)
		}
		if err := r.adjustCount(ctx, tx, target, targetID, action, 1); err != nil {
			return model.StateNone, err
		}
		state = stateFor(action)
	}

	if err := tx.Commit(); err != nil {
		return model.StateNone, fmt.Errorf("commit transaction: %w", err)
	}
	return state, nil
}

// adjustCount keeps the denormalized like_count/dislike_count columns in sync
// inside the toggle transaction.
func (r *reactionRepository) adjustCount(ctx context.Context, tx *sqlx.Tx, target reactionTarget, targetID int64, reaction model.Reaction, delta int) error {
	column := "like_count"
	if reaction == model.ReactionDislike {
		column = "dislike_count"
	}
	query := fmt.Sprintf(`UPDATE %s SET %s = %s + $1 WHERE id = $2`,
		target.entityTable, column, column)
	if _, err := tx.ExecContext(ctx, query, delta, targetID); err != nil {
		return fmt.Errorf("adjust %s: %w", column, err)
	}
	return nil
}

func stateFor(action model.Reaction) model.ReactionState {
	if action == model.ReactionDislike {
		return model.StateDisliked
	}
	return model.StateLiked
}

// GetUserReactionRows returns the raw reaction rows for one user and kind,
// newest first, with timestamps intact for cache warming.
func (r *reactionRepository) GetUserReactionRows(ctx context.Context, userID int64, kind model.TargetKind) ([]model.ReactionRow, error) {
	target, ok := reactionTargets[kind]
	if !ok {
		return nil, model.ErrInvalidTargetKind
	}

	query := fmt.Sprintf(`
		SELECT %s AS target_id, user_id, reaction, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, %s DESC
	`, target.idColumn, target.table, target.idColumn)

	var rows []model.ReactionRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("get user reactions: %w", err)
	}
	return rows, nil
}
