package services

import (
	"time"
)

// StreakUpdate carries the streak fields an event produces for the aggregator.
type StreakUpdate struct {
	StreakDays    int
	LongestStreak int
	LastActivity  time.Time
	// Advanced is false for out-of-order (late) events: streak fields and the
	// activity date stay untouched while points and counters still apply.
	Advanced bool
}

// ComputeStreak derives the new daily streak from the profile's current streak
// state and the event's calendar date (already normalized to the platform zone).
//
//   - same day as last activity: no change — multiple same-day events never inflate the streak
//   - exactly one day later: streak extends
//   - gap of more than one day: streak resets to 1
//   - event date before last activity: late event, streak state is left alone
func ComputeStreak(lastActivity *time.Time, streakDays, longestStreak int, eventDate time.Time) StreakUpdate {
	upd := StreakUpdate{
		StreakDays:    streakDays,
		LongestStreak: longestStreak,
		Advanced:      true,
	}

	if lastActivity == nil {
		// First qualifying event ever
		upd.StreakDays = 1
		upd.LastActivity = eventDate
	} else {
		last := *lastActivity
		switch {
		case eventDate.Equal(last):
			upd.LastActivity = last
		case eventDate.Before(last):
			// Late event — must not corrupt streak state
			upd.LastActivity = last
			upd.Advanced = false
		case !eventDate.After(last.AddDate(0, 0, 1)):
			upd.StreakDays = streakDays + 1
			upd.LastActivity = eventDate
		default:
			upd.StreakDays = 1
			upd.LastActivity = eventDate
		}
	}

	if upd.StreakDays > upd.LongestStreak {
		upd.LongestStreak = upd.StreakDays
	}
	return upd
}
