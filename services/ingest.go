package services

import (
	"strings"
	"time"

	"eco-gamification-system/models"
)

// ClockSkewTolerance bounds how far in the future an event timestamp may sit
// before it is rejected as invalid.
const ClockSkewTolerance = 5 * time.Minute

// EventIngest normalizes the three producer payloads into ProgressEvents.
// Pure validation — no side effects.
type EventIngest struct {
	clock *Clock
}

func NewEventIngest(clock *Clock) *EventIngest {
	return &EventIngest{clock: clock}
}

func (i *EventIngest) validate(userID string, occurredAt time.Time) error {
	if strings.TrimSpace(userID) == "" {
		return &InvalidEventError{Reason: "user id is required"}
	}
	if occurredAt.IsZero() {
		return &InvalidEventError{Reason: "timestamp is required"}
	}
	if occurredAt.After(i.clock.Now().Add(ClockSkewTolerance)) {
		return &InvalidEventError{Reason: "timestamp is in the future beyond clock-skew tolerance"}
	}
	return nil
}

// Classification normalizes a completed waste-image classification.
func (i *EventIngest) Classification(userID string, isCorrect bool, category string, occurredAt time.Time) (*models.ProgressEvent, error) {
	if err := i.validate(userID, occurredAt); err != nil {
		return nil, err
	}
	if strings.TrimSpace(category) == "" {
		return nil, &InvalidEventError{Reason: "classification category is required"}
	}
	correct := isCorrect
	return &models.ProgressEvent{
		UserID:     userID,
		Type:       models.EventClassification,
		OccurredAt: occurredAt,
		IsCorrect:  &correct,
		Category:   strings.ToLower(strings.TrimSpace(category)),
	}, nil
}

// QuizAnswer normalizes a submitted quiz answer carrying the question's point value.
func (i *EventIngest) QuizAnswer(userID string, isCorrect bool, pointsValue int64, occurredAt time.Time) (*models.ProgressEvent, error) {
	if err := i.validate(userID, occurredAt); err != nil {
		return nil, err
	}
	if pointsValue < 0 {
		return nil, &InvalidEventError{Reason: "quiz points value must not be negative"}
	}
	correct := isCorrect
	return &models.ProgressEvent{
		UserID:      userID,
		Type:        models.EventQuizAnswer,
		OccurredAt:  occurredAt,
		IsCorrect:   &correct,
		PointsValue: pointsValue,
	}, nil
}

// QuizComplete normalizes a finished quiz session (ungraded, bonus-only).
func (i *EventIngest) QuizComplete(userID string, occurredAt time.Time) (*models.ProgressEvent, error) {
	if err := i.validate(userID, occurredAt); err != nil {
		return nil, err
	}
	return &models.ProgressEvent{
		UserID:     userID,
		Type:       models.EventQuizComplete,
		OccurredAt: occurredAt,
	}, nil
}

// ChallengeProgress normalizes an explicit challenge-progress submission.
func (i *EventIngest) ChallengeProgress(userID, challengeKey string, delta float64, occurredAt time.Time) (*models.ProgressEvent, error) {
	if err := i.validate(userID, occurredAt); err != nil {
		return nil, err
	}
	if strings.TrimSpace(challengeKey) == "" {
		return nil, &InvalidEventError{Reason: "challenge key is required"}
	}
	if delta <= 0 {
		return nil, &InvalidEventError{Reason: "challenge progress delta must be positive"}
	}
	return &models.ProgressEvent{
		UserID:       userID,
		Type:         models.EventChallengeProgress,
		OccurredAt:   occurredAt,
		ChallengeKey: challengeKey,
		Delta:        delta,
	}, nil
}
