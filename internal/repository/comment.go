package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"cliptube/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. Runs inside the caller's transaction so the
// insert and the video's comment_count update commit together.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, videoID, userID int64, content string, parentID *int64) (*model.Comment, error) {
	query := `
		INSERT INTO comments (video_id, user_id, content, parent_comment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, video_id, user_id, content, parent_comment_id, like_count, dislike_count, created_at
	`
	var comment model.Comment
	err := tx.GetContext(ctx, &comment, query, videoID, userID, content, parentID)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return &comment, nil
}

// GetByID retrieves a single comment.
func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	query := `
		SELECT id, video_id, user_id, content, parent_comment_id, like_count, dislike_count, created_at
		FROM comments
		WHERE id = $1
	`
	var comment model.Comment
	err := r.db.GetContext(ctx, &comment, query, commentID)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &comment, nil
}

// GetByVideoID returns every comment on the video with authors joined,
// oldest first. The flat parent-pointer rows are the arena the service
// assembles the display tree from.
func (r *commentRepository) GetByVideoID(ctx context.Context, videoID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.video_id, c.user_id, c.content, c.parent_comment_id,
		       c.like_count, c.dislike_count, c.created_at,
		       u.id AS "author.id", u.email AS "author.email", u.display_name AS "author.display_name"
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.video_id = $1
		ORDER BY c.created_at ASC, c.id ASC
	`

	type commentRow struct {
		ID              int64     `db:"id"`
		VideoID         int64     `db:"video_id"`
		UserID          int64     `db:"user_id"`
		Content         string    `db:"content"`
		ParentCommentID *int64    `db:"parent_comment_id"`
		LikeCount       int       `db:"like_count"`
		DislikeCount    int       `db:"dislike_count"`
		CreatedAt       time.Time `db:"created_at"`
		AuthorID        int64     `db:"author.id"`
		AuthorEmail     string    `db:"author.email"`
		AuthorDisplay   *string   `db:"author.display_name"`
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, query, videoID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = model.Comment{
			ID:              row.ID,
			VideoID:         row.VideoID,
			UserID:          row.UserID,
			Content:         row.Content,
			ParentCommentID: row.ParentCommentID,
			LikeCount:       row.LikeCount,
			DislikeCount:    row.DislikeCount,
			CreatedAt:       row.CreatedAt,
			Author: &model.UserSummary{
				ID:          row.AuthorID,
				Email:       row.AuthorEmail,
				DisplayName: row.AuthorDisplay,
			},
		}
	}

	return comments, nil
}

// Exists checks if a comment exists.
func (r *commentRepository) Exists(ctx context.Context, commentID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM comments WHERE id = $1)`, commentID)
	if err != nil {
		return false, fmt.Errorf("check comment exists: %w", err)
	}
	return exists, nil
}
