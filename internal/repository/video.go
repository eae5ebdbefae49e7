package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"cliptube/internal/model"
)

type videoRepository struct {
	db *sqlx.DB
}

func NewVideoRepository(db *sqlx.DB) VideoRepository {
	return &videoRepository{db: db}
}

// Create inserts a new video record. The file itself was already uploaded to
// the CDN; only metadata and URLs are stored here.
func (r *videoRepository) Create(ctx context.Context, userID int64, req model.CreateVideoRequest) (*model.Video, error) {
	query := `
		INSERT INTO videos (user_id, title, description, video_url, thumbnail_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, description, video_url, thumbnail_url,
		          like_count, dislike_count, comment_count, created_at, updated_at
	`
	var video model.Video
	err := r.db.GetContext(ctx, &video, query,
		userID, req.Title, req.Description, req.VideoURL, req.ThumbnailURL)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}

	video.Likes = []int64{}
	video.Dislikes = []int64{}
	return &video, nil
}

// GetByID retrieves a single video with its reaction membership arrays.
// likes/dislikes are projected from video_reactions so the record always
// reflects the entity-side source of truth.
func (r *videoRepository) GetByID(ctx context.Context, videoID int64) (*model.Video, error) {
	query := `
		SELECT v.id, v.user_id, v.title, v.description, v.video_url, v.thumbnail_url,
		       v.like_count, v.dislike_count, v.comment_count, v.created_at, v.updated_at,
		       u.id AS "author.id", u.email AS "author.email", u.display_name AS "author.display_name"
		FROM videos v
		JOIN users u ON u.id = v.user_id
		WHERE v.id = $1
	`
	type videoRow struct {
		model.Video
		AuthorID      int64   `db:"author.id"`
		AuthorEmail   string  `db:"author.email"`
		AuthorDisplay *string `db:"author.display_name"`
	}
	var row videoRow
	err := r.db.GetContext(ctx, &row, query, videoID)
	if err == sql.ErrNoRows {
		return nil, model.ErrVideoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get video: %w", err)
	}

	video := row.Video
	video.Author = &model.UserSummary{
		ID:          row.AuthorID,
		Email:       row.AuthorEmail,
		DisplayName: row.AuthorDisplay,
	}

	likes, dislikes, err := r.getReactionMembers(ctx, videoID)
	if err != nil {
		return nil, err
	}
	video.Likes = likes
	video.Dislikes = dislikes

	return &video, nil
}

// getReactionMembers loads the user-id membership arrays for one video.
func (r *videoRepository) getReactionMembers(ctx context.Context, videoID int64) (likes, dislikes []int64, err error) {
	query := `
		SELECT
			COALESCE(ARRAY_AGG(user_id ORDER BY created_at) FILTER (WHERE reaction = 'like'), '{}') AS likes,
			COALESCE(ARRAY_AGG(user_id ORDER BY created_at) FILTER (WHERE reaction = 'dislike'), '{}') AS dislikes
		FROM video_reactions
		WHERE video_id = $1
	`
	var likeArr, dislikeArr pq.Int64Array
	err = r.db.QueryRowxContext(ctx, query, videoID).Scan(&likeArr, &dislikeArr)
	if err != nil {
		return nil, nil, fmt.Errorf("get video reactions: %w", err)
	}
	return []int64(likeArr), []int64(dislikeArr), nil
}

// List returns recent videos, newest first, cursor-paginated.
func (r *videoRepository) List(ctx context.Context, cursor *string, limit int) ([]model.Video, *string, error) {
	var query string
	var args []interface{}

	if cursor == nil {
		query = `
			SELECT v.id, v.user_id, v.title, v.description, v.video_url, v.thumbnail_url,
			       v.like_count, v.dislike_count, v.comment_count, v.created_at, v.updated_at
			FROM videos v
			ORDER BY v.created_at DESC, v.id DESC
			LIMIT $1
		`
		args = []interface{}{limit + 1}
	} else {
		ts, id, err := parseVideoCursor(*cursor)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid cursor: %w", err)
		}
		query = `
			SELECT v.id, v.user_id, v.title, v.description, v.video_url, v.thumbnail_url,
			       v.like_count, v.dislike_count, v.comment_count, v.created_at, v.updated_at
			FROM videos v
			WHERE (v.created_at, v.id) < ($1, $2)
			ORDER BY v.created_at DESC, v.id DESC
			LIMIT $3
		`
		args = []interface{}{ts, id, limit + 1}
	}

	var videos []model.Video
	if err := r.db.SelectContext(ctx, &videos, query, args...); err != nil {
		return nil, nil, fmt.Errorf("list videos: %w", err)
	}

	var nextCursor *string
	if len(videos) > limit {
		videos = videos[:limit]
		last := videos[len(videos)-1]
		c := formatVideoCursor(last.CreatedAt, last.ID)
		nextCursor = &c
	}

	return videos, nextCursor, nil
}

// Exists checks if a video exists.
func (r *videoRepository) Exists(ctx context.Context, videoID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM videos WHERE id = $1)`, videoID)
	if err != nil {
		return false, fmt.Errorf("check video exists: %w", err)
	}
	return exists, nil
}

// IncrementCommentCount atomically updates the comment_count on a video.
func (r *videoRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, videoID int64, delta int) error {
	query := `UPDATE videos SET comment_count = comment_count + $1, updated_at = NOW() WHERE id = $2`
	result, err := tx.ExecContext(ctx, query, delta, videoID)
	if err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrVideoNotFound
	}
	return nil
}

// Helper: parse video cursor "id:timestamp"
func parseVideoCursor(cursor string) (time.Time, int64, error) {
	parts := strings.Split(cursor, ":")
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid cursor format")
	}
	var id, ts int64
	if _, err := fmt.Sscanf(parts[0], "%d", &id); err != nil {
		return time.Time{}, 0, err
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &ts); err != nil {
		return time.Time{}, 0, err
	}
	return time.Unix(ts, 0), id, nil
}

// Helper: format video cursor "id:timestamp"
func formatVideoCursor(t time.Time, id int64) string {
	return fmt.Sprintf("%d:%d", id, t.Unix())
}
