package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"cliptube/internal/model"
)

// Event types for the reaction stream
const (
	EventReactionToggled = "reaction_toggled"
)

// Stream names
const (
	StreamReactions = "stream:reactions"
)

// Consumer group name for mirror workers
const (
	ConsumerGroupMirror = "mirror_workers"
)

// ReactionEvent is published after a toggle commits. Workers apply it to the
// user-side reaction mirror; the SQL row has already been written, so losing
// an event only delays the mirror until the next rebuild.
type ReactionEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // Unix timestamp of the toggle

	UserID     int64               `json:"user_id"`
	TargetKind model.TargetKind    `json:"target_kind"`
	TargetID   int64               `json:"target_id"`
	State      model.ReactionState `json:"state"` // state after the toggle
}

// NewReactionToggledEvent creates an event carrying a toggle's outcome.
func NewReactionToggledEvent(userID int64, kind model.TargetKind, targetID int64, state model.ReactionState) ReactionEvent {
	return ReactionEvent{
		Type:       EventReactionToggled,
		Timestamp:  time.Now().Unix(),
		UserID:     userID,
		TargetKind: kind,
		TargetID:   targetID,
		State:      state,
	}
}

// ToMap converts the event to a map for Redis XADD.
// Redis Streams store field-value pairs, so the payload is JSON in a "data" field.
func (e ReactionEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// EventFromData parses the JSON payload stored in a stream entry's "data" field.
func EventFromData(data string) (ReactionEvent, error) {
	var event ReactionEvent
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return ReactionEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
