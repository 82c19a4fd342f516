package models

import (
	"time"
)

type EventType string

const (
	EventClassification    EventType = "classification"
	EventQuizAnswer        EventType = "quiz_answer"
	EventQuizComplete      EventType = "quiz_complete"
	EventChallengeProgress EventType = "challenge_progress"

	// EventPointsAward is an internal, points-only event used to route
	// achievement and challenge rewards back through the aggregator.
	EventPointsAward EventType = "points_award"
)

// ProgressEvent is the normalized form of every producer action.
// Ephemeral: it lives for one processing pass and is never persisted.
type ProgressEvent struct {
	UserID     string    `json:"user_id"`
	Type       EventType `json:"event_type"`
	OccurredAt time.Time `json:"occurred_at"`

	// IsCorrect is nil for ungraded events (e.g., challenge progress, reward awards).
	IsCorrect *bool `json:"is_correct,omitempty"`

	Category     string  `json:"category,omitempty"`      // classification events
	PointsValue  int64   `json:"points_value,omitempty"`  // quiz answers: question point value
	ChallengeKey string  `json:"challenge_key,omitempty"` // challenge progress events
	Delta        float64 `json:"delta,omitempty"`         // challenge progress amount
}

// Graded reports whether the event carries a correctness outcome.
func (e *ProgressEvent) Graded() bool {
	return e.IsCorrect != nil
}
