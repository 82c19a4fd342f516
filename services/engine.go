package services

import (
	"context"
	"time"

	"eco-gamification-system/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Engine is the single entry point the HTTP layer talks to. It wires the
// pipeline: ingest → (streak, points) → profile apply → achievement
// evaluation → challenge update → leaderboard invalidation. One event is one
// logical transaction; everything for a user runs under that user's lock.
type Engine struct {
	Clock        *Clock
	Ingest       *EventIngest
	Points       *PointsCalculator
	Profiles     *ProfileAggregator
	Achievements *AchievementEvaluator
	Challenges   *ChallengeTracker
	Leaderboard  *LeaderboardView

	locks *userLocks
}

func NewEngine(db *gorm.DB, clock *Clock, cache *redis.Client, cfg PointsConfig, staleness time.Duration) *Engine {
	agg := NewProfileAggregator(db, clock)
	return &Engine{
		Clock:        clock,
		Ingest:       NewEventIngest(clock),
		Points:       NewPointsCalculator(cfg),
		Profiles:     agg,
		Achievements: NewAchievementEvaluator(db, agg, cfg),
		Challenges:   NewChallengeTracker(db, agg, clock),
		Leaderboard:  NewLeaderboardView(db, cache, staleness),
		locks:        newUserLocks(),
	}
}

// RecordClassification processes a completed waste-image classification and
// returns the updated profile plus any achievements it unlocked.
func (e *Engine) RecordClassification(ctx context.Context, userID string, isCorrect bool, category string, occurredAt time.Time) (*models.GamificationProfile, []models.AchievementDefinition, error) {
	ev, err := e.Ingest.Classification(userID, isCorrect, category, occurredAt)
	if err != nil {
		return nil, nil, err
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	profile, err := e.Profiles.EnsureProfile(userID)
	if err != nil {
		return nil, nil, err
	}

	streak := e.streakFor(profile, ev)
	mult, err := e.Challenges.ActiveMultiplier(userID, ev.Category, ev.OccurredAt)
	if err != nil {
		return nil, nil, err
	}
	points := e.Points.Calculate(ev, profile, mult)

	profile, err = e.Profiles.Apply(ev, points, &streak)
	if err != nil {
		return nil, nil, err
	}

	unlocked, profile, err := e.Achievements.Evaluate(userID, profile)
	if err != nil {
		return nil, nil, err
	}

	// Organic classification progress toward joined, matching challenges
	completedAny, err := e.Challenges.AdvanceMatching(userID, ev.Category, ev.OccurredAt)
	if err != nil {
		return nil, nil, err
	}
	if completedAny {
		// Completion rewards were applied in the store; re-read before
		// evaluating so score/level achievements see them
		if profile, err = e.Profiles.EnsureProfile(userID); err != nil {
			return nil, nil, err
		}
	}
	// A challenge completion awards points, which may cascade further
	moreUnlocked, profile, err := e.Achievements.Evaluate(userID, profile)
	if err != nil {
		return nil, nil, err
	}
	unlocked = append(unlocked, moreUnlocked...)

	e.Leaderboard.Invalidate(ctx)
	return profile, unlocked, nil
}

// RecordQuizAnswer processes one submitted quiz answer carrying the
// question's point value.
func (e *Engine) RecordQuizAnswer(ctx context.Context, userID string, isCorrect bool, pointsValue int64, occurredAt time.Time) (*models.GamificationProfile, error) {
	ev, err := e.Ingest.QuizAnswer(userID, isCorrect, pointsValue, occurredAt)
	if err != nil {
		return nil, err
	}
	return e.recordSimple(ctx, ev)
}

// RecordQuizComplete processes a finished quiz session (flat completion bonus).
func (e *Engine) RecordQuizComplete(ctx context.Context, userID string, occurredAt time.Time) (*models.GamificationProfile, error) {
	ev, err := e.Ingest.QuizComplete(userID, occurredAt)
	if err != nil {
		return nil, err
	}
	return e.recordSimple(ctx, ev)
}

// recordSimple runs the pipeline for events without category-scoped
// challenge progression.
func (e *Engine) recordSimple(ctx context.Context, ev *models.ProgressEvent) (*models.GamificationProfile, error) {
	unlock := e.locks.Lock(ev.UserID)
	defer unlock()

	profile, err := e.Profiles.EnsureProfile(ev.UserID)
	if err != nil {
		return nil, err
	}

	streak := e.streakFor(profile, ev)
	mult, err := e.Challenges.ActiveMultiplier(ev.UserID, "", ev.OccurredAt)
	if err != nil {
		return nil, err
	}
	points := e.Points.Calculate(ev, profile, mult)

	profile, err = e.Profiles.Apply(ev, points, &streak)
	if err != nil {
		return nil, err
	}

	_, profile, err = e.Achievements.Evaluate(ev.UserID, profile)
	if err != nil {
		return nil, err
	}

	e.Leaderboard.Invalidate(ctx)
	return profile, nil
}

// JoinChallenge opts the user into a challenge (idempotent).
func (e *Engine) JoinChallenge(userID, challengeKey string) (*models.UserChallengeParticipation, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	if _, err := e.Profiles.EnsureProfile(userID); err != nil {
		return nil, err
	}
	return e.Challenges.Join(userID, challengeKey)
}

// UpdateChallengeProgress applies an explicit progress submission.
func (e *Engine) UpdateChallengeProgress(ctx context.Context, userID, challengeKey string, delta float64, occurredAt time.Time) (*models.UserChallengeParticipation, error) {
	ev, err := e.Ingest.ChallengeProgress(userID, challengeKey, delta, occurredAt)
	if err != nil {
		return nil, err
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	profile, err := e.Profiles.EnsureProfile(userID)
	if err != nil {
		return nil, err
	}

	part, err := e.Challenges.UpdateProgress(userID, ev.ChallengeKey, ev.Delta, ev.OccurredAt)
	if err != nil {
		return nil, err
	}

	if part.IsCompleted {
		// Completion points may unlock achievements
		if profile, err = e.Profiles.EnsureProfile(userID); err != nil {
			return nil, err
		}
		if _, _, err = e.Achievements.Evaluate(userID, profile); err != nil {
			return nil, err
		}
		e.Leaderboard.Invalidate(ctx)
	}
	return part, nil
}

// GetLeaderboard returns one ranked page for the scope.
func (e *Engine) GetLeaderboard(ctx context.Context, scope models.LeaderboardScope, limit, offset int) ([]models.LeaderboardEntry, error) {
	return e.Leaderboard.Rank(ctx, scope, limit, offset)
}

// GetProfile returns the user's profile, creating it on first read.
func (e *Engine) GetProfile(userID string) (*models.GamificationProfile, error) {
	return e.Profiles.EnsureProfile(userID)
}

// ListAchievements returns the catalog joined with the user's unlock state.
func (e *Engine) ListAchievements(userID string) ([]AchievementStatus, error) {
	return e.Achievements.ListWithProgress(userID)
}

// ListChallenges returns currently open challenge definitions.
func (e *Engine) ListChallenges() ([]models.ChallengeDefinition, error) {
	return e.Challenges.ListActive()
}

// streakFor normalizes dates to the platform timezone and computes the
// event's streak update against the profile's current streak state.
func (e *Engine) streakFor(profile *models.GamificationProfile, ev *models.ProgressEvent) StreakUpdate {
	eventDate := DateIn(ev.OccurredAt, e.Clock.Location)
	var last *time.Time
	if profile.LastActivityDate != nil {
		d := DateIn(*profile.LastActivityDate, e.Clock.Location)
		last = &d
	}
	return ComputeStreak(last, profile.StreakDays, profile.LongestStreak, eventDate)
}
