package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"cliptube/internal/model"
	"cliptube/internal/repository"
)

// VideoService handles video metadata. Actual file bytes never pass through
// this service; uploads go straight to the CDN via the presign flow.
type VideoService struct {
	videoRepo repository.VideoRepository
}

func NewVideoService(videoRepo repository.VideoRepository) *VideoService {
	return &VideoService{videoRepo: videoRepo}
}

// Create registers an uploaded video.
func (s *VideoService) Create(ctx context.Context, userID int64, req model.CreateVideoRequest) (*model.Video, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, model.ErrTitleRequired
	}
	if len(req.Title) > model.MaxVideoTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if len(req.Description) > model.MaxVideoDescriptionLength {
		return nil, model.ErrDescriptionTooLong
	}
	if strings.TrimSpace(req.VideoURL) == "" {
		return nil, model.ErrVideoURLRequired
	}

	video, err := s.videoRepo.Create(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}

	log.Printf("[VideoService] User %d registered video %d (%q)", userID, video.ID, video.Title)
	return video, nil
}

// GetByID returns a single video with its reaction membership arrays.
func (s *VideoService) GetByID(ctx context.Context, videoID int64) (*model.Video, error) {
	return s.videoRepo.GetByID(ctx, videoID)
}

// List returns recent videos for the feed, newest first.
func (s *VideoService) List(ctx context.Context, cursor *string, limit int) (*model.VideoListResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	videos, nextCursor, err := s.videoRepo.List(ctx, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	return &model.VideoListResponse{
		Videos:     videos,
		NextCursor: nextCursor,
		HasMore:    nextCursor != nil,
	}, nil
}
