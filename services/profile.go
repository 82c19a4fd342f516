package services

import (
	"errors"
	"math"
	"time"

	"eco-gamification-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BasePointsPerLevel anchors the level curve
const BasePointsPerLevel = 100

// maxLevel is a hard iteration cap, not a gameplay limit
const maxLevel = 1000

// PointsForLevel returns the cumulative points threshold for a level.
// threshold(1) = 0 so a fresh profile starts at level 1;
// threshold(L) = floor(100 * (L-1)^1.5) — strictly increasing.
func PointsForLevel(level int) int64 {
	if level <= 1 {
		return 0
	}
	return int64(math.Floor(float64(BasePointsPerLevel) * math.Pow(float64(level-1), 1.5)))
}

// LevelForPoints returns the largest level whose threshold the points satisfy.
func LevelForPoints(points int64) int {
	level := 1
	for level < maxLevel && points >= PointsForLevel(level+1) {
		level++
	}
	return level
}

// levelProgress returns the fraction in [0,1) toward the next level.
func levelProgress(points int64, level int) float64 {
	cur := PointsForLevel(level)
	next := PointsForLevel(level + 1)
	span := next - cur
	if span <= 0 {
		return 0
	}
	progress := float64(points-cur) / float64(span)
	if progress < 0 {
		progress = 0
	}
	if progress >= 1 {
		progress = math.Nextafter(1, 0)
	}
	return progress
}

const (
	applyMaxAttempts = 3
	applyBackoff     = 25 * time.Millisecond
)

// ProfileAggregator owns GamificationProfile rows. Every mutation funnels
// through Apply, which commits atomically under an optimistic version check.
// Callers that need the full event pipeline to be serialized per user (the
// engine) additionally hold the per-user lock around Apply.
type ProfileAggregator struct {
	DB    *gorm.DB
	clock *Clock
}

func NewProfileAggregator(db *gorm.DB, clock *Clock) *ProfileAggregator {
	return &ProfileAggregator{DB: db, clock: clock}
}

// EnsureProfile ensures a profile row exists for the user (idempotent).
func (s *ProfileAggregator) EnsureProfile(userID string) (*models.GamificationProfile, error) {
	var prof models.GamificationProfile
	err := s.DB.Where("user_id = ?", userID).First(&prof).Error
	if err == nil {
		return &prof, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("load profile", err)
	}
	prof = models.GamificationProfile{
		ID:     uuid.NewString(),
		UserID: userID,
		Level:  1,
	}
	if err := s.DB.Create(&prof).Error; err != nil {
		// Lost a create race — someone else inserted the row first
		var existing models.GamificationProfile
		if lookupErr := s.DB.Where("user_id = ?", userID).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, storageErr("create profile", err)
	}
	return &prof, nil
}

// Apply folds one event into the user's profile: counters, accuracy, points,
// streak, level. The whole mutation commits in a single transaction; on a
// version conflict it retries a bounded number of times with backoff.
func (s *ProfileAggregator) Apply(ev *models.ProgressEvent, points int64, streak *StreakUpdate) (*models.GamificationProfile, error) {
	if points < 0 {
		points = 0
	}

	var lastErr error
	for attempt := 1; attempt <= applyMaxAttempts; attempt++ {
		prof, err := s.applyOnce(ev, points, streak)
		if err == nil {
			return prof, nil
		}
		var conflict *ConcurrencyConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = &ConcurrencyConflictError{UserID: ev.UserID, Attempts: attempt}
		time.Sleep(time.Duration(attempt) * applyBackoff)
	}
	return nil, lastErr
}

func (s *ProfileAggregator) applyOnce(ev *models.ProgressEvent, points int64, streak *StreakUpdate) (*models.GamificationProfile, error) {
	var updated *models.GamificationProfile

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var prof models.GamificationProfile
		if err := tx.Where("user_id = ?", ev.UserID).First(&prof).Error; err != nil {
			return storageErr("load profile", err)
		}
		oldVersion := prof.Version

		// Counters, with weekly/monthly window resets on boundary crossings.
		// Anchors only move forward (lexicographic compare works on the
		// zero-padded "YYYY-Www" / "YYYY-MM" forms): a late event from a
		// prior window counts toward lifetime totals only and must not
		// rewind the anchor or wipe the current window's counter.
		if ev.Type == models.EventClassification {
			eventDate := DateIn(ev.OccurredAt, s.clock.Location)
			switch wk := isoWeek(eventDate); {
			case wk > prof.WeekAnchor:
				prof.WeekAnchor = wk
				prof.WeeklyClassifications = 1
			case wk == prof.WeekAnchor:
				prof.WeeklyClassifications++
			}
			switch mo := monthAnchor(eventDate); {
			case mo > prof.MonthAnchor:
				prof.MonthAnchor = mo
				prof.MonthlyClassifications = 1
			case mo == prof.MonthAnchor:
				prof.MonthlyClassifications++
			}
			prof.ClassificationsCount++
		}
		if ev.Type == models.EventQuizAnswer {
			prof.QuizAnswersCount++
		}

		// Accuracy: count-weighted running average over graded events
		if ev.Graded() {
			correctness := 0.0
			if *ev.IsCorrect {
				correctness = 1.0
			}
			n := float64(prof.AccuracySamples)
			prof.AccuracyRate = (prof.AccuracyRate*n + correctness) / (n + 1)
			prof.AccuracySamples++
		}

		prof.TotalPoints += points

		// Streak fields advance only forward; late events leave them alone
		if streak != nil && streak.Advanced {
			prof.StreakDays = streak.StreakDays
			prof.LongestStreak = streak.LongestStreak
			last := streak.LastActivity
			prof.LastActivityDate = &last
		}

		// Level is a pure function of total points and never decreases
		if newLevel := LevelForPoints(prof.TotalPoints); newLevel > prof.Level {
			prof.Level = newLevel
			now := s.clock.Now()
			prof.LastLevelUpAt = &now
		}
		prof.LevelProgress = levelProgress(prof.TotalPoints, prof.Level)

		prof.Version = oldVersion + 1
		res := tx.Model(&models.GamificationProfile{}).
			Where("id = ? AND version = ?", prof.ID, oldVersion).
			Select("*").Omit("id", "created_at").
			Updates(&prof)
		if res.Error != nil {
			return storageErr("save profile", res.Error)
		}
		if res.RowsAffected == 0 {
			return &ConcurrencyConflictError{UserID: ev.UserID, Attempts: 1}
		}

		// Per-category stats ride in the same transaction
		if ev.Type == models.EventClassification && ev.Category != "" {
			if err := bumpCategoryStat(tx, ev.UserID, ev.Category, points); err != nil {
				return err
			}
		}

		updated = &models.GamificationProfile{}
		*updated = prof
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func bumpCategoryStat(tx *gorm.DB, userID, category string, points int64) error {
	var stat models.CategoryStat
	err := tx.Where("user_id = ? AND category = ?", userID, category).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.CategoryStat{
			ID:       uuid.NewString(),
			UserID:   userID,
			Category: category,
		}
		if err := tx.Create(&stat).Error; err != nil {
			return storageErr("create category stat", err)
		}
	} else if err != nil {
		return storageErr("load category stat", err)
	}

	stat.Classifications++
	stat.Points += points
	if err := tx.Save(&stat).Error; err != nil {
		return storageErr("save category stat", err)
	}
	return nil
}

// DistinctCategories counts how many waste categories the user has classified in.
func (s *ProfileAggregator) DistinctCategories(userID string) (int64, error) {
	var count int64
	err := s.DB.Model(&models.CategoryStat{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, storageErr("count categories", err)
	}
	return count, nil
}
