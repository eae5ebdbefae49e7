package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"cliptube/internal/model"
)

const (
	// MirrorKeyPrefix is the key prefix for user reaction mirrors
	MirrorKeyPrefix = "mirror:user:"

	// MirrorTTL is the TTL for mirror keys (7 days). An expired mirror is
	// rebuilt from the reaction tables on the next read.
	MirrorTTL = 7 * 24 * time.Hour
)

// ReactionMirror is the user-side secondary index of the reaction tables:
// per user, sorted sets of liked/disliked target ids scored by toggle time.
// The SQL reaction row stays the source of truth; the mirror exists so "my
// liked videos" never scans all entities. Writers apply events best-effort
// and readers rebuild from SQL on a miss, so a lost update self-heals.
type ReactionMirror interface {
	// Apply records the outcome of a toggle. StateNone removes the target
	// from both sets; liked/disliked moves it to the matching set.
	Apply(ctx context.Context, userID int64, kind model.TargetKind, targetID int64, state model.ReactionState, timestamp int64) error

	// Get returns the mirrored id lists, newest first. found=false means the
	// mirror is cold (new user or TTL expiry) and must be warmed from SQL.
	Get(ctx context.Context, userID int64, kind model.TargetKind) (reactions *model.UserReactions, found bool, err error)

	// Warm bulk-loads the mirror from reaction rows.
	Warm(ctx context.Context, userID int64, kind model.TargetKind, rows []model.ReactionRow) error
}

// RedisReactionMirror implements ReactionMirror using Redis sorted sets.
type RedisReactionMirror struct {
	client *redis.Client
}

// NewReactionMirror creates a ReactionMirror backed by Redis.
func NewReactionMirror(client *redis.Client) ReactionMirror {
	return &RedisReactionMirror{client: client}
}

// mirrorKeys returns the (liked, disliked) keys for a user and target kind.
func mirrorKeys(userID int64, kind model.TargetKind) (string, string) {
	base := fmt.Sprintf("%s%d:", MirrorKeyPrefix, userID)
	switch kind {
	case model.TargetComment:
		return base + "liked_comments", base + "disliked_comments"
	default:
		return base + "liked_videos", base + "disliked_videos"
	}
}

func (m *RedisReactionMirror) Apply(ctx context.Context, userID int64, kind model.TargetKind, targetID int64, state model.ReactionState, timestamp int64) error {
	likedKey, dislikedKey := mirrorKeys(userID, kind)
	member := strconv.FormatInt(targetID, 10)

	pipe := m.client.Pipeline()
	switch state {
	case model.StateLiked:
		pipe.ZAdd(ctx, likedKey, redis.Z{Score: float64(timestamp), Member: member})
		pipe.ZRem(ctx, dislikedKey, member)
	case model.StateDisliked:
		pipe.ZAdd(ctx, dislikedKey, redis.Z{Score: float64(timestamp), Member: member})
		pipe.ZRem(ctx, likedKey, member)
	default:
		pipe.ZRem(ctx, likedKey, member)
		pipe.ZRem(ctx, dislikedKey, member)
	}
	pipe.Expire(ctx, likedKey, MirrorTTL)
	pipe.Expire(ctx, dislikedKey, MirrorTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("apply mirror update: %w", err)
	}
	return nil
}

func (m *RedisReactionMirror) Get(ctx context.Context, userID int64, kind model.TargetKind) (*model.UserReactions, bool, error) {
	likedKey, dislikedKey := mirrorKeys(userID, kind)

	exists, err := m.client.Exists(ctx, likedKey, dislikedKey).Result()
	if err != nil {
		return nil, false, fmt.Errorf("check mirror exists: %w", err)
	}
	if exists == 0 {
		return nil, false, nil
	}

	liked, err := m.readSet(ctx, likedKey)
	if err != nil {
		return nil, false, err
	}
	disliked, err := m.readSet(ctx, dislikedKey)
	if err != nil {
		return nil, false, err
	}

	return &model.UserReactions{Liked: liked, Disliked: disliked}, true, nil
}

// readSet returns a sorted set's members newest-score first.
func (m *RedisReactionMirror) readSet(ctx context.Context, key string) ([]int64, error) {
	members, err := m.client.ZRevRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read mirror set %s: %w", key, err)
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue // skip corrupt member rather than failing the read
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *RedisReactionMirror) Warm(ctx context.Context, userID int64, kind model.TargetKind, rows []model.ReactionRow) error {
	likedKey, dislikedKey := mirrorKeys(userID, kind)

	pipe := m.client.Pipeline()
	// Start from a clean slate so stale members from lost events disappear.
	pipe.Del(ctx, likedKey, dislikedKey)
	for _, row := range rows {
		z := redis.Z{
			Score:  float64(row.CreatedAt.Unix()),
			Member: strconv.FormatInt(row.TargetID, 10),
		}
		if row.Reaction == model.ReactionLike {
			pipe.ZAdd(ctx, likedKey, z)
		} else {
			pipe.ZAdd(ctx, dislikedKey, z)
		}
	}
	// An empty liked set still needs a key so Get treats the mirror as warm;
	// a zero-score sentinel would pollute reads, so rely on the disliked key
	// or re-warm next time. Warming an empty mirror is cheap either way.
	pipe.Expire(ctx, likedKey, MirrorTTL)
	pipe.Expire(ctx, dislikedKey, MirrorTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm mirror: %w", err)
	}
	return nil
}
