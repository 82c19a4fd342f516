package services

import (
	"testing"
	"time"
)

func TestComputeStreak(t *testing.T) {
	jun10 := date(2024, time.June, 10)

	cases := []struct {
		name          string
		lastActivity  *time.Time
		streakDays    int
		longestStreak int
		eventDate     time.Time
		wantStreak    int
		wantLongest   int
		wantAdvanced  bool
		wantLast      time.Time
	}{
		{
			name:       "first event ever",
			eventDate:  jun10,
			wantStreak: 1, wantLongest: 1, wantAdvanced: true, wantLast: jun10,
		},
		{
			name:         "same day is idempotent",
			lastActivity: &jun10, streakDays: 3, longestStreak: 5,
			eventDate:  jun10,
			wantStreak: 3, wantLongest: 5, wantAdvanced: true, wantLast: jun10,
		},
		{
			name:         "next day extends",
			lastActivity: &jun10, streakDays: 3, longestStreak: 5,
			eventDate:  date(2024, time.June, 11),
			wantStreak: 4, wantLongest: 5, wantAdvanced: true, wantLast: date(2024, time.June, 11),
		},
		{
			name:         "extension can set a new longest",
			lastActivity: &jun10, streakDays: 5, longestStreak: 5,
			eventDate:  date(2024, time.June, 11),
			wantStreak: 6, wantLongest: 6, wantAdvanced: true, wantLast: date(2024, time.June, 11),
		},
		{
			name:         "gap resets to one",
			lastActivity: &jun10, streakDays: 5, longestStreak: 5,
			eventDate:  date(2024, time.June, 13),
			wantStreak: 1, wantLongest: 5, wantAdvanced: true, wantLast: date(2024, time.June, 13),
		},
		{
			name:         "late event leaves streak untouched",
			lastActivity: &jun10, streakDays: 5, longestStreak: 7,
			eventDate:  date(2024, time.June, 8),
			wantStreak: 5, wantLongest: 7, wantAdvanced: false, wantLast: jun10,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeStreak(tc.lastActivity, tc.streakDays, tc.longestStreak, tc.eventDate)
			if got.StreakDays != tc.wantStreak {
				t.Errorf("streak days: got %d, want %d", got.StreakDays, tc.wantStreak)
			}
			if got.LongestStreak != tc.wantLongest {
				t.Errorf("longest streak: got %d, want %d", got.LongestStreak, tc.wantLongest)
			}
			if got.Advanced != tc.wantAdvanced {
				t.Errorf("advanced: got %t, want %t", got.Advanced, tc.wantAdvanced)
			}
			if !got.LastActivity.Equal(tc.wantLast) {
				t.Errorf("last activity: got %s, want %s", got.LastActivity, tc.wantLast)
			}
		})
	}
}

func TestComputeStreak_TwoSameDayEventsNeverInflate(t *testing.T) {
	jun10 := date(2024, time.June, 10)

	first := ComputeStreak(&jun10, 3, 3, jun10)
	second := ComputeStreak(&first.LastActivity, first.StreakDays, first.LongestStreak, jun10)

	if second.StreakDays != 3 {
		t.Errorf("expected streak to stay 3 after two same-day events, got %d", second.StreakDays)
	}
}

func TestComputeStreak_LongestNeverBelowCurrent(t *testing.T) {
	var last *time.Time
	var streak, longest int

	base := date(2024, time.June, 1)
	for i := 0; i < 10; i++ {
		day := base.AddDate(0, 0, i)
		upd := ComputeStreak(last, streak, longest, day)
		if upd.LongestStreak < upd.StreakDays {
			t.Fatalf("day %d: longest %d < current %d", i, upd.LongestStreak, upd.StreakDays)
		}
		streak, longest = upd.StreakDays, upd.LongestStreak
		d := upd.LastActivity
		last = &d
	}
}
