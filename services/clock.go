package services

import (
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock supplies now() plus the platform timezone for all date-boundary math.
// Tests inject a clockwork fake.
type Clock struct {
	clockwork.Clock
	Location *time.Location
}

// NewClock builds a real clock pinned to the platform timezone (IANA name).
func NewClock(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load platform timezone %q: %w", timezone, err)
	}
	return &Clock{Clock: clockwork.NewRealClock(), Location: loc}, nil
}

// Today returns the current calendar date (midnight) in the platform timezone.
func (c *Clock) Today() time.Time {
	return DateIn(c.Now(), c.Location)
}

// DateIn truncates t to its calendar date in loc.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// isoWeek returns "YYYY-Www" for the given time.
func isoWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// monthAnchor returns "YYYY-MM" for the given time.
func monthAnchor(t time.Time) string {
	return t.Format("2006-01")
}
