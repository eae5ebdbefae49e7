package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"

	"cliptube/internal/model"
	"cliptube/internal/repository"
)

// CommentService persists comments and reconstructs the display tree on read.
type CommentService struct {
	commentRepo repository.CommentRepository
	videoRepo   repository.VideoRepository
	userRepo    repository.UserRepository
	db          *sqlx.DB
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	videoRepo repository.VideoRepository,
	userRepo repository.UserRepository,
	db *sqlx.DB,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		videoRepo:   videoRepo,
		userRepo:    userRepo,
		db:          db,
	}
}

// Create adds a comment to a video, optionally as a reply to an existing
// comment. Insert and comment_count update commit in one transaction.
func (s *CommentService) Create(ctx context.Context, userID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, model.ErrContentRequired
	}
	if len(content) > model.MaxCommentLength {
		return nil, model.ErrContentTooLong
	}
	if req.VideoID == 0 {
		return nil, model.ErrVideoIDRequired
	}

	exists, err := s.videoRepo.Exists(ctx, req.VideoID)
	if err != nil {
		return nil, fmt.Errorf("check video exists: %w", err)
	}
	if !exists {
		return nil, model.ErrVideoNotFound
	}

	// Replies must point at a comment on the same video. Nesting is kept as
	// given; the depth cap applies on read, not on write.
	if req.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			if err == model.ErrCommentNotFound {
				return nil, model.ErrParentNotFound
			}
			return nil, err
		}
		if parent.VideoID != req.VideoID {
			return nil, model.ErrParentWrongVideo
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	comment, err := s.commentRepo.Create(ctx, tx, req.VideoID, userID, content, req.ParentID)
	if err != nil {
		return nil, err
	}

	if err := s.videoRepo.IncrementCommentCount(ctx, tx, req.VideoID, 1); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	// Attach author identity for the response.
	author, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		comment.Author = &model.UserSummary{
			ID:          author.ID,
			Email:       author.Email,
			DisplayName: author.DisplayName,
		}
	}

	log.Printf("[CommentService] User %d commented on video %d (parent=%v)", userID, req.VideoID, req.ParentID)
	return comment, nil
}

// ListByVideo returns the video's top-level comments with replies resolved
// to the bounded display depth, insertion order at every level.
func (s *CommentService) ListByVideo(ctx context.Context, videoID int64) ([]model.CommentNode, error) {
	exists, err := s.videoRepo.Exists(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("check video exists: %w", err)
	}
	if !exists {
		return nil, model.ErrVideoNotFound
	}

	comments, err := s.commentRepo.GetByVideoID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	return BuildCommentTree(comments, model.MaxReplyDepth), nil
}

// BuildCommentTree materializes the display tree from flat parent-pointer
// rows. Rows must arrive in insertion order; children inherit that order.
//
// Expansion is depth-bounded rather than recursive-to-exhaustion: each root
// is expanded level by level until maxDepth, so termination and payload size
// do not depend on how deep a reply chain actually goes. Nodes at the cap
// carry their children only as ReplyIDs.
func BuildCommentTree(comments []model.Comment, maxDepth int) []model.CommentNode {
	childrenOf := make(map[int64][]model.Comment)
	var roots []model.Comment
	for _, c := range comments {
		if c.ParentCommentID == nil {
			roots = append(roots, c)
		} else {
			childrenOf[*c.ParentCommentID] = append(childrenOf[*c.ParentCommentID], c)
		}
	}

	nodes := make([]model.CommentNode, len(roots))
	for i, root := range roots {
		nodes[i] = expandNode(root, childrenOf, 0, maxDepth)
	}
	return nodes
}

// expandNode builds one node, expanding children while depth < maxDepth.
func expandNode(c model.Comment, childrenOf map[int64][]model.Comment, depth, maxDepth int) model.CommentNode {
	node := model.CommentNode{
		Comment: c,
		Replies: []model.CommentNode{},
	}

	children := childrenOf[c.ID]
	if depth >= maxDepth {
		// Depth cap reached: deeper replies stay references.
		for _, child := range children {
			node.ReplyIDs = append(node.ReplyIDs, child.ID)
		}
		return node
	}

	for _, child := range children {
		node.Replies = append(node.Replies, expandNode(child, childrenOf, depth+1, maxDepth))
	}
	return node
}
