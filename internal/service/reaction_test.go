package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"cliptube/internal/model"
	"cliptube/internal/queue"
)

// =============================================================================
// MOCKS
// =============================================================================

type mockVideoRepository struct {
	createFn  func(ctx context.Context, userID int64, req model.CreateVideoRequest) (*model.Video, error)
	getByIDFn func(ctx context.Context, videoID int64) (*model.Video, error)
	existsFn  func(ctx context.Context, videoID int64) (bool, error)
}

func (m *mockVideoRepository) Create(ctx context.Context, userID int64, req model.CreateVideoRequest) (*model.Video, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockVideoRepository) GetByID(ctx context.Context, videoID int64) (*model.Video, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, videoID)
	}
	return nil, model.ErrVideoNotFound
}

func (m *mockVideoRepository) List(ctx context.Context, cursor *string, limit int) ([]model.Video, *string, error) {
	return nil, nil, nil
}

func (m *mockVideoRepository) Exists(ctx context.Context, videoID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, videoID)
	}
	return true, nil
}

func (m *mockVideoRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, videoID int64, delta int) error {
	return nil
}

type mockCommentRepository struct {
	getByIDFn      func(ctx context.Context, commentID int64) (*model.Comment, error)
	getByVideoIDFn func(ctx context.Context, videoID int64) ([]model.Comment, error)
	existsFn       func(ctx context.Context, commentID int64) (bool, error)
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, videoID, userID int64, content string, parentID *int64) (*model.Comment, error) {
	return nil, errors.New("not implemented")
}

func (m *mockCommentRepository) GetByID(ctx context.Context, commentID int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, commentID)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) GetByVideoID(ctx context.Context, videoID int64) ([]model.Comment, error) {
	if m.getByVideoIDFn != nil {
		return m.getByVideoIDFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockCommentRepository) Exists(ctx context.Context, commentID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, commentID)
	}
	return true, nil
}

// mockReactionRepository runs the real toggle state machine against an
// in-memory map, so sequences of toggles behave like the SQL implementation.
type mockReactionRepository struct {
	videoReactions   map[[2]int64]model.Reaction // [targetID, userID] -> reaction
	commentReactions map[[2]int64]model.Reaction
}

func newMockReactionRepository() *mockReactionRepository {
	return &mockReactionRepository{
		videoReactions:   make(map[[2]int64]model.Reaction),
		commentReactions: make(map[[2]int64]model.Reaction),
	}
}

func toggleInMap(m map[[2]int64]model.Reaction, targetID, userID int64, action model.Reaction) model.ReactionState {
	key := [2]int64{targetID, userID}
	current, ok := m[key]
	switch {
	case ok && current == action:
		delete(m, key)
		return model.StateNone
	default:
		m[key] = action
		if action == model.ReactionDislike {
			return model.StateDisliked
		}
		return model.StateLiked
	}
}

func (m *mockReactionRepository) ToggleVideoReaction(ctx context.Context, videoID, userID int64, action model.Reaction) (model.ReactionState, error) {
	return toggleInMap(m.videoReactions, videoID, userID, action), nil
}

func (m *mockReactionRepository) ToggleCommentReaction(ctx context.Context, commentID, userID int64, action model.Reaction) (model.ReactionState, error) {
	return toggleInMap(m.commentReactions, commentID, userID, action), nil
}

func (m *mockReactionRepository) GetUserReactionRows(ctx context.Context, userID int64, kind model.TargetKind) ([]model.ReactionRow, error) {
	source := m.videoReactions
	if kind == model.TargetComment {
		source = m.commentReactions
	}
	var rows []model.ReactionRow
	for key, reaction := range source {
		if key[1] != userID {
			continue
		}
		rows = append(rows, model.ReactionRow{
			TargetID:  key[0],
			UserID:    userID,
			Reaction:  reaction,
			CreatedAt: time.Now(),
		})
	}
	return rows, nil
}

// mockMirror records Apply/Warm calls and serves Get from a canned response.
type mockMirror struct {
	getReactions *model.UserReactions
	getFound     bool
	getErr       error

	applyCalls int
	warmCalls  int
	warmedRows []model.ReactionRow
}

func (m *mockMirror) Apply(ctx context.Context, userID int64, kind model.TargetKind, targetID int64, state model.ReactionState, timestamp int64) error {
	m.applyCalls++
	return nil
}

func (m *mockMirror) Get(ctx context.Context, userID int64, kind model.TargetKind) (*model.UserReactions, bool, error) {
	return m.getReactions, m.getFound, m.getErr
}

func (m *mockMirror) Warm(ctx context.Context, userID int64, kind model.TargetKind, rows []model.ReactionRow) error {
	m.warmCalls++
	m.warmedRows = rows
	return nil
}

// mockPublisher captures published events.
type mockPublisher struct {
	events []queue.ReactionEvent
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.ReactionEvent) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.events = append(m.events, event)
	return "1-0", nil
}

func newReactionServiceForTest(reactionRepo *mockReactionRepository, mirror *mockMirror, publisher *mockPublisher) *ReactionService {
	return NewReactionService(
		reactionRepo,
		&mockVideoRepository{},
		&mockCommentRepository{},
		&mockUserRepository{},
		mirror,
		publisher,
	)
}

// =============================================================================
// TOGGLE TESTS
// =============================================================================

func TestReactionService_ToggleVideo_LifeCycle(t *testing.T) {
	repo := newMockReactionRepository()
	publisher := &mockPublisher{}
	svc := newReactionServiceForTest(repo, &mockMirror{}, publisher)
	ctx := context.Background()

	// First like sets the reaction
	state, err := svc.ToggleVideo(ctx, 1, 42, model.ReactionLike)
	if err != nil {
		t.Fatalf("first like: %v", err)
	}
	if state != model.StateLiked {
		t.Errorf("state after like = %s, want %s", state, model.StateLiked)
	}

	// Switching to dislike replaces it, never both at once
	state, err = svc.ToggleVideo(ctx, 1, 42, model.ReactionDislike)
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if state != model.StateDisliked {
		t.Errorf("state after dislike = %s, want %s", state, model.StateDisliked)
	}

	// Repeating dislike removes it
	state, err = svc.ToggleVideo(ctx, 1, 42, model.ReactionDislike)
	if err != nil {
		t.Fatalf("repeat dislike: %v", err)
	}
	if state != model.StateNone {
		t.Errorf("state after repeat dislike = %s, want %s", state, model.StateNone)
	}

	// Every successful toggle publishes a mirror event
	if len(publisher.events) != 3 {
		t.Fatalf("published %d events, want 3", len(publisher.events))
	}
	wantStates := []model.ReactionState{model.StateLiked, model.StateDisliked, model.StateNone}
	for i, event := range publisher.events {
		if event.Type != queue.EventReactionToggled {
			t.Errorf("event %d: type = %s, want %s", i, event.Type, queue.EventReactionToggled)
		}
		if event.UserID != 1 || event.TargetID != 42 || event.TargetKind != model.TargetVideo {
			t.Errorf("event %d: got user=%d target=%d kind=%s", i, event.UserID, event.TargetID, event.TargetKind)
		}
		if event.State != wantStates[i] {
			t.Errorf("event %d: state = %s, want %s", i, event.State, wantStates[i])
		}
	}
}

func TestReactionService_ToggleVideo_DoubleLikeIsIdempotentPair(t *testing.T) {
	repo := newMockReactionRepository()
	svc := newReactionServiceForTest(repo, &mockMirror{}, &mockPublisher{})
	ctx := context.Background()

	// like, unlike, like, unlike: never an error, state alternates
	for i := 0; i < 4; i++ {
		state, err := svc.ToggleVideo(ctx, 7, 99, model.ReactionLike)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		want := model.StateLiked
		if i%2 == 1 {
			want = model.StateNone
		}
		if state != want {
			t.Errorf("toggle %d: state = %s, want %s", i, state, want)
		}
	}

	if len(repo.videoReactions) != 0 {
		t.Errorf("expected no reaction rows after even number of toggles, got %d", len(repo.videoReactions))
	}
}

func TestReactionService_ToggleVideo_InvalidAction(t *testing.T) {
	svc := newReactionServiceForTest(newMockReactionRepository(), &mockMirror{}, &mockPublisher{})

	_, err := svc.ToggleVideo(context.Background(), 1, 42, "love")
	if !errors.Is(err, model.ErrInvalidAction) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidAction)
	}
}

func TestReactionService_ToggleVideo_VideoNotFound(t *testing.T) {
	publisher := &mockPublisher{}
	svc := NewReactionService(
		newMockReactionRepository(),
		&mockVideoRepository{existsFn: func(ctx context.Context, videoID int64) (bool, error) {
			return false, nil
		}},
		&mockCommentRepository{},
		&mockUserRepository{},
		&mockMirror{},
		publisher,
	)

	_, err := svc.ToggleVideo(context.Background(), 1, 42, model.ReactionLike)
	if !errors.Is(err, model.ErrVideoNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrVideoNotFound)
	}
	if len(publisher.events) != 0 {
		t.Error("no event should be published when the toggle fails")
	}
}

func TestReactionService_ToggleVideo_UserNotFound(t *testing.T) {
	svc := NewReactionService(
		newMockReactionRepository(),
		&mockVideoRepository{},
		&mockCommentRepository{},
		&mockUserRepository{existsFn: func(ctx context.Context, id int64) (bool, error) {
			return false, nil
		}},
		&mockMirror{},
		&mockPublisher{},
	)

	_, err := svc.ToggleVideo(context.Background(), 1, 42, model.ReactionLike)
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
}

func TestReactionService_ToggleComment(t *testing.T) {
	repo := newMockReactionRepository()
	svc := newReactionServiceForTest(repo, &mockMirror{}, &mockPublisher{})
	ctx := context.Background()

	state, err := svc.ToggleComment(ctx, 1, 17, model.ReactionLike)
	if err != nil {
		t.Fatalf("toggle comment: %v", err)
	}
	if state != model.StateLiked {
		t.Errorf("state = %s, want %s", state, model.StateLiked)
	}

	// Two users reacting to the same comment are independent pairs
	state, err = svc.ToggleComment(ctx, 2, 17, model.ReactionDislike)
	if err != nil {
		t.Fatalf("second user toggle: %v", err)
	}
	if state != model.StateDisliked {
		t.Errorf("state = %s, want %s", state, model.StateDisliked)
	}
	if len(repo.commentReactions) != 2 {
		t.Errorf("expected 2 reaction rows, got %d", len(repo.commentReactions))
	}
}

func TestReactionService_ToggleVideo_PublishFailureIsNotFatal(t *testing.T) {
	svc := newReactionServiceForTest(newMockReactionRepository(), &mockMirror{}, &mockPublisher{err: errors.New("redis down")})

	// Mirror maintenance is best-effort; the committed toggle still succeeds.
	state, err := svc.ToggleVideo(context.Background(), 1, 42, model.ReactionLike)
	if err != nil {
		t.Fatalf("toggle should succeed despite publish failure: %v", err)
	}
	if state != model.StateLiked {
		t.Errorf("state = %s, want %s", state, model.StateLiked)
	}
}

// =============================================================================
// USER REACTION READ TESTS
// =============================================================================

func TestReactionService_GetUserReactions_MirrorHit(t *testing.T) {
	mirror := &mockMirror{
		getReactions: &model.UserReactions{Liked: []int64{3, 1}, Disliked: []int64{2}},
		getFound:     true,
	}
	repo := newMockReactionRepository()
	svc := newReactionServiceForTest(repo, mirror, &mockPublisher{})

	reactions, err := svc.GetUserReactions(context.Background(), 1, model.TargetVideo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reactions.Liked) != 2 || len(reactions.Disliked) != 1 {
		t.Errorf("got liked=%v disliked=%v", reactions.Liked, reactions.Disliked)
	}
	if mirror.warmCalls != 0 {
		t.Error("mirror hit should not trigger a warm")
	}
}

func TestReactionService_GetUserReactions_MirrorMissWarmsFromDB(t *testing.T) {
	mirror := &mockMirror{getFound: false}
	repo := newMockReactionRepository()
	repo.videoReactions[[2]int64{10, 1}] = model.ReactionLike
	repo.videoReactions[[2]int64{20, 1}] = model.ReactionDislike
	repo.videoReactions[[2]int64{30, 2}] = model.ReactionLike // another user

	svc := newReactionServiceForTest(repo, mirror, &mockPublisher{})

	reactions, err := svc.GetUserReactions(context.Background(), 1, model.TargetVideo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(reactions.Liked) != 1 || reactions.Liked[0] != 10 {
		t.Errorf("liked = %v, want [10]", reactions.Liked)
	}
	if len(reactions.Disliked) != 1 || reactions.Disliked[0] != 20 {
		t.Errorf("disliked = %v, want [20]", reactions.Disliked)
	}

	if mirror.warmCalls != 1 {
		t.Errorf("warm called %d times, want 1", mirror.warmCalls)
	}
	if len(mirror.warmedRows) != 2 {
		t.Errorf("warmed %d rows, want 2 (other users' rows excluded)", len(mirror.warmedRows))
	}
}

func TestReactionService_GetUserReactions_InvalidKind(t *testing.T) {
	svc := newReactionServiceForTest(newMockReactionRepository(), &mockMirror{}, &mockPublisher{})

	_, err := svc.GetUserReactions(context.Background(), 1, "playlist")
	if !errors.Is(err, model.ErrInvalidTargetKind) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidTargetKind)
	}
}
