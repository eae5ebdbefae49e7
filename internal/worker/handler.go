package worker

import (
	"context"
	"fmt"
	"log"

	"cliptube/internal/cache"
	"cliptube/internal/queue"
)

// Handler applies reaction events to the user-side mirror.
type Handler struct {
	mirror cache.ReactionMirror
}

// NewHandler creates a new event handler.
func NewHandler(mirror cache.ReactionMirror) *Handler {
	return &Handler{mirror: mirror}
}

// HandleEvent routes an event to the appropriate handler based on type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.ReactionEvent) error {
	switch event.Type {
	case queue.EventReactionToggled:
		return h.handleReactionToggled(ctx, event)
	default:
		log.Printf("[Worker] Unknown event type: %s", event.Type)
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handleReactionToggled moves the target between the user's liked/disliked
// mirror sets to match the post-toggle state. The SQL row committed before
// the event was published, so this is pure index maintenance: a failure here
// leaves a stale mirror that the read path rebuilds on its next miss.
func (h *Handler) handleReactionToggled(ctx context.Context, event queue.ReactionEvent) error {
	err := h.mirror.Apply(ctx, event.UserID, event.TargetKind, event.TargetID, event.State, event.Timestamp)
	if err != nil {
		return fmt.Errorf("apply reaction to mirror: %w", err)
	}

	log.Printf("[Worker] Mirror updated: user=%d %s=%d state=%s",
		event.UserID, event.TargetKind, event.TargetID, event.State)
	return nil
}
