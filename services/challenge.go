package services

import (
	"errors"
	"log"
	"math"
	"time"

	"eco-gamification-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeTracker owns per-user challenge participations bound to a time
// window. Challenge completion is resolved here, independently of the general
// profile; the reward is then routed through the aggregator.
type ChallengeTracker struct {
	DB    *gorm.DB
	agg   *ProfileAggregator
	clock *Clock
}

func NewChallengeTracker(db *gorm.DB, agg *ProfileAggregator, clock *Clock) *ChallengeTracker {
	return &ChallengeTracker{DB: db, agg: agg, clock: clock}
}

func (s *ChallengeTracker) definition(key string) (*models.ChallengeDefinition, error) {
	var def models.ChallengeDefinition
	if err := s.DB.Where("key = ?", key).First(&def).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidEventError{Reason: "unknown challenge: " + key}
		}
		return nil, storageErr("load challenge", err)
	}
	return &def, nil
}

// Join opts a user into a challenge. Idempotent: re-joining an already-joined,
// non-completed challenge is a no-op success. Joining outside the window is a
// ChallengeClosedError.
func (s *ChallengeTracker) Join(userID, challengeKey string) (*models.UserChallengeParticipation, error) {
	def, err := s.definition(challengeKey)
	if err != nil {
		return nil, err
	}
	if !def.Contains(s.clock.Now()) {
		return nil, &ChallengeClosedError{ChallengeKey: def.Key, ClosesAt: def.EndDate}
	}

	var part models.UserChallengeParticipation
	err = s.DB.Where("user_id = ? AND challenge_key = ?", userID, def.Key).First(&part).Error
	if err == nil {
		return &part, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("load participation", err)
	}

	part = models.UserChallengeParticipation{
		ID:           uuid.NewString(),
		UserID:       userID,
		ChallengeKey: def.Key,
	}
	if err := s.DB.Create(&part).Error; err != nil {
		// Lost a create race to a concurrent join — treat as the idempotent path
		var existing models.UserChallengeParticipation
		if lookupErr := s.DB.Where("user_id = ? AND challenge_key = ?", userID, def.Key).First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, storageErr("create participation", err)
	}
	return &part, nil
}

// UpdateProgress adds delta to the participation's progress. Rejected with
// ChallengeClosedError when the occurrence time falls outside the window and
// the participation is not already completed; progress stays unchanged.
// On reaching the target the participation completes exactly once and
// points_reward * bonus_multiplier is routed through the aggregator.
// Caller holds the user's lock.
func (s *ChallengeTracker) UpdateProgress(userID, challengeKey string, delta float64, occurredAt time.Time) (*models.UserChallengeParticipation, error) {
	def, err := s.definition(challengeKey)
	if err != nil {
		return nil, err
	}

	var part models.UserChallengeParticipation
	if err := s.DB.Where("user_id = ? AND challenge_key = ?", userID, def.Key).First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &InvalidEventError{Reason: "user has not joined challenge " + def.Key}
		}
		return nil, storageErr("load participation", err)
	}

	if part.IsCompleted {
		// Completed participations are frozen; further progress is a no-op
		return &part, nil
	}
	if !def.Contains(occurredAt) {
		return nil, &ChallengeClosedError{ChallengeKey: def.Key, ClosesAt: def.EndDate}
	}

	completedNow := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		part.Progress += delta
		if part.Progress >= def.TargetValue {
			now := s.clock.Now()
			part.IsCompleted = true
			part.CompletedAt = &now
			part.PointsEarned = completionPoints(def)
			completedNow = true
		}
		// Guard against a concurrent completion slipping in
		res := tx.Model(&models.UserChallengeParticipation{}).
			Where("id = ? AND is_completed = ?", part.ID, false).
			Select("progress", "is_completed", "completed_at", "points_earned").
			Updates(&part)
		if res.Error != nil {
			return storageErr("save participation", res.Error)
		}
		if res.RowsAffected == 0 {
			return &ConcurrencyConflictError{UserID: userID, Attempts: 1}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		log.Printf("🎯 [CHALLENGES] %s completed %s (+%d points)", userID, def.Key, part.PointsEarned)
		rewardEv := &models.ProgressEvent{
			UserID:     userID,
			Type:       models.EventPointsAward,
			OccurredAt: occurredAt,
		}
		if _, err := s.agg.Apply(rewardEv, part.PointsEarned, nil); err != nil {
			return nil, err
		}
	}

	return &part, nil
}

func completionPoints(def *models.ChallengeDefinition) int64 {
	mult := def.BonusMultiplier
	if mult <= 0 {
		mult = 1
	}
	return int64(math.Floor(float64(def.PointsReward) * mult))
}

// ActiveMultiplier returns the best bonus multiplier among the user's active,
// un-completed participations whose challenge matches the event category at
// the given time. Returns 1 when none applies.
func (s *ChallengeTracker) ActiveMultiplier(userID, category string, at time.Time) (float64, error) {
	var parts []models.UserChallengeParticipation
	if err := s.DB.Where("user_id = ? AND is_completed = ?", userID, false).Find(&parts).Error; err != nil {
		return 1, storageErr("load participations", err)
	}
	if len(parts) == 0 {
		return 1, nil
	}

	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		keys = append(keys, p.ChallengeKey)
	}
	var defs []models.ChallengeDefinition
	if err := s.DB.Where("key IN ?", keys).Find(&defs).Error; err != nil {
		return 1, storageErr("load challenges", err)
	}

	best := 1.0
	for _, def := range defs {
		if !def.Contains(at) {
			continue
		}
		if def.Category != "" && def.Category != category {
			continue
		}
		if def.BonusMultiplier > best {
			best = def.BonusMultiplier
		}
	}
	return best, nil
}

// AdvanceMatching bumps the user's active participations whose challenge
// category matches a classification event by one unit. Closed windows are
// skipped silently — an organic event is not a caller mistake.
// Reports whether any participation completed, since completion rewards land
// in the store and the caller's in-memory profile is stale afterwards.
// Caller holds the user's lock.
func (s *ChallengeTracker) AdvanceMatching(userID, category string, occurredAt time.Time) (bool, error) {
	var parts []models.UserChallengeParticipation
	if err := s.DB.Where("user_id = ? AND is_completed = ?", userID, false).Find(&parts).Error; err != nil {
		return false, storageErr("load participations", err)
	}

	completed := false
	for _, p := range parts {
		def, err := s.definition(p.ChallengeKey)
		if err != nil {
			return completed, err
		}
		if !def.Contains(occurredAt) {
			continue
		}
		if def.Category != "" && def.Category != category {
			continue
		}
		part, err := s.UpdateProgress(userID, p.ChallengeKey, 1, occurredAt)
		if err != nil {
			return completed, err
		}
		if part.IsCompleted {
			completed = true
		}
	}
	return completed, nil
}

// ListActive returns challenge definitions whose window contains now.
func (s *ChallengeTracker) ListActive() ([]models.ChallengeDefinition, error) {
	now := s.clock.Now()
	var defs []models.ChallengeDefinition
	err := s.DB.Where("is_active = ? AND start_date <= ? AND end_date > ?", true, now, now).
		Order("end_date asc").
		Find(&defs).Error
	if err != nil {
		return nil, storageErr("list challenges", err)
	}
	return defs, nil
}

// Participation returns the user's row for one challenge, if any.
func (s *ChallengeTracker) Participation(userID, challengeKey string) (*models.UserChallengeParticipation, error) {
	var part models.UserChallengeParticipation
	if err := s.DB.Where("user_id = ? AND challenge_key = ?", userID, challengeKey).First(&part).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storageErr("load participation", err)
	}
	return &part, nil
}
