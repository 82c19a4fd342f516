package services

import (
	"errors"
	"testing"
	"time"
)

func TestEventIngest_Validation(t *testing.T) {
	now := at(2024, time.June, 10, 12)
	ingest := NewEventIngest(testClock(now))

	t.Run("valid classification normalizes", func(t *testing.T) {
		ev, err := ingest.Classification("user-1", true, " Plastic ", now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ev.Category != "plastic" {
			t.Errorf("category not normalized: %q", ev.Category)
		}
		if ev.IsCorrect == nil || !*ev.IsCorrect {
			t.Error("correctness flag lost")
		}
	})

	t.Run("missing user id rejected", func(t *testing.T) {
		_, err := ingest.Classification("  ", true, "plastic", now)
		var invalid *InvalidEventError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidEventError, got %v", err)
		}
	})

	t.Run("zero timestamp rejected", func(t *testing.T) {
		_, err := ingest.QuizAnswer("user-1", true, 5, time.Time{})
		var invalid *InvalidEventError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidEventError, got %v", err)
		}
	})

	t.Run("future beyond skew tolerance rejected", func(t *testing.T) {
		_, err := ingest.Classification("user-1", true, "plastic", now.Add(6*time.Minute))
		var invalid *InvalidEventError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidEventError, got %v", err)
		}
	})

	t.Run("future within skew tolerance accepted", func(t *testing.T) {
		if _, err := ingest.Classification("user-1", true, "plastic", now.Add(4*time.Minute)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("non-positive challenge delta rejected", func(t *testing.T) {
		_, err := ingest.ChallengeProgress("user-1", "weekly-drive", 0, now)
		var invalid *InvalidEventError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidEventError, got %v", err)
		}
	})
}
