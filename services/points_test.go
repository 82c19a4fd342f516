package services

import (
	"testing"

	"eco-gamification-system/models"
)

func boolPtr(b bool) *bool { return &b }

func TestPointsCalculator(t *testing.T) {
	calc := NewPointsCalculator(DefaultPointsConfig)

	cases := []struct {
		name       string
		event      models.ProgressEvent
		profile    models.GamificationProfile
		challenge  float64
		wantPoints int64
	}{
		{
			name:       "correct classification at base rate",
			event:      models.ProgressEvent{Type: models.EventClassification, IsCorrect: boolPtr(true)},
			profile:    models.GamificationProfile{AccuracyRate: 0.5},
			challenge:  1,
			wantPoints: 10,
		},
		{
			name:       "incorrect classification earns nothing",
			event:      models.ProgressEvent{Type: models.EventClassification, IsCorrect: boolPtr(false)},
			profile:    models.GamificationProfile{AccuracyRate: 0.95},
			challenge:  2,
			wantPoints: 0,
		},
		{
			name:       "accuracy bonus multiplies",
			event:      models.ProgressEvent{Type: models.EventClassification, IsCorrect: boolPtr(true)},
			profile:    models.GamificationProfile{AccuracyRate: 0.9},
			challenge:  1,
			wantPoints: 15, // 10 * 1.5
		},
		{
			name:       "challenge bonus stacks with accuracy bonus",
			event:      models.ProgressEvent{Type: models.EventClassification, IsCorrect: boolPtr(true)},
			profile:    models.GamificationProfile{AccuracyRate: 0.9},
			challenge:  1.25,
			wantPoints: 18, // floor(10 * 1.5 * 1.25)
		},
		{
			name:       "quiz answer uses the question's point value",
			event:      models.ProgressEvent{Type: models.EventQuizAnswer, IsCorrect: boolPtr(true), PointsValue: 7},
			profile:    models.GamificationProfile{},
			challenge:  1,
			wantPoints: 7,
		},
		{
			name:       "quiz completion pays the flat bonus",
			event:      models.ProgressEvent{Type: models.EventQuizComplete},
			profile:    models.GamificationProfile{},
			challenge:  1,
			wantPoints: 25,
		},
		{
			name:       "fractional result rounds down",
			event:      models.ProgressEvent{Type: models.EventQuizAnswer, IsCorrect: boolPtr(true), PointsValue: 3},
			profile:    models.GamificationProfile{AccuracyRate: 0.9},
			challenge:  1,
			wantPoints: 4, // floor(3 * 1.5)
		},
		{
			name:       "ungraded challenge progress earns nothing here",
			event:      models.ProgressEvent{Type: models.EventChallengeProgress, Delta: 5},
			profile:    models.GamificationProfile{},
			challenge:  2,
			wantPoints: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := calc.Calculate(&tc.event, &tc.profile, tc.challenge)
			if got != tc.wantPoints {
				t.Errorf("got %d points, want %d", got, tc.wantPoints)
			}
		})
	}
}

func TestPointsCalculator_NeverNegative(t *testing.T) {
	calc := NewPointsCalculator(DefaultPointsConfig)

	ev := models.ProgressEvent{Type: models.EventQuizAnswer, IsCorrect: boolPtr(true), PointsValue: 0}
	if got := calc.Calculate(&ev, &models.GamificationProfile{}, 1); got < 0 {
		t.Errorf("points must never be negative, got %d", got)
	}
}

func TestLevelCurve(t *testing.T) {
	if PointsForLevel(1) != 0 {
		t.Errorf("level 1 threshold must be 0, got %d", PointsForLevel(1))
	}
	if PointsForLevel(2) != 100 {
		t.Errorf("level 2 threshold: got %d, want 100", PointsForLevel(2))
	}

	// Strictly increasing
	for l := 1; l < 50; l++ {
		if PointsForLevel(l+1) <= PointsForLevel(l) {
			t.Fatalf("threshold not increasing at level %d", l)
		}
	}

	// LevelForPoints inverts the threshold function
	cases := []struct {
		points int64
		want   int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{281, 2},
		{282, 3}, // floor(100 * 2^1.5) = 282
	}
	for _, tc := range cases {
		if got := LevelForPoints(tc.points); got != tc.want {
			t.Errorf("LevelForPoints(%d) = %d, want %d", tc.points, got, tc.want)
		}
	}
}

func TestLevelProgress_Bounds(t *testing.T) {
	for _, points := range []int64{0, 50, 99, 100, 250, 1000, 50000} {
		level := LevelForPoints(points)
		p := levelProgress(points, level)
		if p < 0 || p >= 1 {
			t.Errorf("levelProgress(%d, %d) = %f, want [0,1)", points, level, p)
		}
	}
}
