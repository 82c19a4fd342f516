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

// AchievementEvaluator holds the requirement logic over the achievement
// catalog. After every profile mutation it recomputes progress for each locked
// achievement from the current profile state — never incrementally from the
// event — so stored progress cannot drift.
type AchievementEvaluator struct {
	DB  *gorm.DB
	agg *ProfileAggregator
	cfg PointsConfig
}

func NewAchievementEvaluator(db *gorm.DB, agg *ProfileAggregator, cfg PointsConfig) *AchievementEvaluator {
	return &AchievementEvaluator{DB: db, agg: agg, cfg: cfg}
}

// Evaluate runs unlock detection to a fixed point: reward points from an
// unlock feed back through the aggregator and may unlock further achievements.
// The loop is bounded by the catalog size; exceeding the bound means the
// catalog rewards form a cycle and is logged as a configuration error.
//
// Returns the newly unlocked definitions and the post-cascade profile.
// Caller holds the user's lock.
func (s *AchievementEvaluator) Evaluate(userID string, profile *models.GamificationProfile) ([]models.AchievementDefinition, *models.GamificationProfile, error) {
	var defs []models.AchievementDefinition
	if err := s.DB.Order("key asc").Find(&defs).Error; err != nil {
		return nil, nil, storageErr("load achievement catalog", err)
	}
	if len(defs) == 0 {
		return nil, profile, nil
	}

	maxPasses := s.cfg.MaxCascadeDepth
	if maxPasses <= 0 {
		maxPasses = len(defs) + 1
	}

	var newlyUnlocked []models.AchievementDefinition
	current := profile

	for pass := 0; ; pass++ {
		if pass >= maxPasses {
			log.Printf("⚠️  [ACHIEVEMENTS] reward cascade for user %s did not settle after %d passes — check catalog for cyclic rewards", userID, maxPasses)
			break
		}

		unlocked, next, err := s.evaluateOnce(userID, defs, current)
		if err != nil {
			return nil, nil, err
		}
		current = next
		if len(unlocked) == 0 {
			break
		}
		newlyUnlocked = append(newlyUnlocked, unlocked...)
	}

	return newlyUnlocked, current, nil
}

// evaluateOnce performs a single pass over the catalog.
func (s *AchievementEvaluator) evaluateOnce(userID string, defs []models.AchievementDefinition, profile *models.GamificationProfile) ([]models.AchievementDefinition, *models.GamificationProfile, error) {
	distinctCategories, err := s.agg.DistinctCategories(userID)
	if err != nil {
		return nil, nil, err
	}

	var unlocked []models.AchievementDefinition
	current := profile

	for _, def := range defs {
		row, err := s.progressRow(userID, def.Key)
		if err != nil {
			return nil, nil, err
		}
		if row.IsCompleted {
			// Write-once: completed rows are never touched again
			continue
		}

		progress, evaluated := s.progressFor(&def, current, distinctCategories)
		if !evaluated {
			continue
		}

		row.Progress = progress
		if progress < 1 {
			if err := s.DB.Save(row).Error; err != nil {
				return nil, nil, storageErr("save achievement progress", err)
			}
			continue
		}

		// Unlock: mark completed atomically, guarded against double-completion
		now := s.agg.clock.Now()
		res := s.DB.Model(&models.UserAchievementProgress{}).
			Where("id = ? AND is_completed = ?", row.ID, false).
			Updates(map[string]interface{}{
				"progress":     1.0,
				"is_completed": true,
				"completed_at": now,
			})
		if res.Error != nil {
			return nil, nil, storageErr("unlock achievement", res.Error)
		}
		if res.RowsAffected == 0 {
			continue // already completed elsewhere
		}

		unlocked = append(unlocked, def)
		log.Printf("🏆 [ACHIEVEMENTS] unlocked %s for user %s", def.Key, userID)

		if def.PointsReward > 0 {
			// Route the reward back through the aggregator as a points-only event
			rewardEv := &models.ProgressEvent{
				UserID:     userID,
				Type:       models.EventPointsAward,
				OccurredAt: now,
			}
			next, err := s.agg.Apply(rewardEv, def.PointsReward, nil)
			if err != nil {
				return nil, nil, err
			}
			current = next
		}
	}

	return unlocked, current, nil
}

// progressRow loads the user's progress row for an achievement, creating it lazily.
func (s *AchievementEvaluator) progressRow(userID, achievementKey string) (*models.UserAchievementProgress, error) {
	var row models.UserAchievementProgress
	err := s.DB.Where("user_id = ? AND achievement_key = ?", userID, achievementKey).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr("load achievement progress", err)
	}
	row = models.UserAchievementProgress{
		ID:             uuid.NewString(),
		UserID:         userID,
		AchievementKey: achievementKey,
	}
	if err := s.DB.Create(&row).Error; err != nil {
		return nil, storageErr("create achievement progress", err)
	}
	return &row, nil
}

// progressFor recomputes an achievement's progress fraction from profile state.
// The second return is false when the requirement cannot be evaluated yet
// (precision achievements below the minimum sample size).
func (s *AchievementEvaluator) progressFor(def *models.AchievementDefinition, prof *models.GamificationProfile, distinctCategories int64) (float64, bool) {
	if def.RequirementValue <= 0 {
		return 0, false
	}

	var value float64
	switch def.RequirementType {
	case models.RequirementCount:
		switch def.Metric {
		case models.MetricQuizAnswers:
			value = float64(prof.QuizAnswersCount)
		default:
			value = float64(prof.ClassificationsCount)
		}
	case models.RequirementPercentage:
		// requirement_value is a whole-number percent; gate on sample size so a
		// single lucky classification cannot unlock a precision achievement
		if prof.AccuracySamples < s.cfg.MinAccuracySamples {
			return 0, false
		}
		return clampFraction(prof.AccuracyRate * 100 / def.RequirementValue), true // requirement as whole percent
	case models.RequirementStreak:
		value = float64(prof.StreakDays)
	case models.RequirementScore:
		value = float64(prof.TotalPoints)
	case models.RequirementLevel:
		value = float64(prof.Level)
	case models.RequirementDiversity:
		value = float64(distinctCategories)
	default:
		return 0, false
	}

	return clampFraction(value / def.RequirementValue), true
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// ListWithProgress joins the catalog with the user's unlock state for display.
type AchievementStatus struct {
	models.AchievementDefinition
	Progress    float64    `json:"progress"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (s *AchievementEvaluator) ListWithProgress(userID string) ([]AchievementStatus, error) {
	var defs []models.AchievementDefinition
	if err := s.DB.Order("key asc").Find(&defs).Error; err != nil {
		return nil, storageErr("load achievement catalog", err)
	}

	var rows []models.UserAchievementProgress
	if err := s.DB.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, storageErr("load achievement progress", err)
	}
	byKey := make(map[string]*models.UserAchievementProgress, len(rows))
	for i := range rows {
		byKey[rows[i].AchievementKey] = &rows[i]
	}

	statuses := make([]AchievementStatus, 0, len(defs))
	for _, def := range defs {
		st := AchievementStatus{AchievementDefinition: def}
		if row, ok := byKey[def.Key]; ok {
			st.Progress = row.Progress
			st.IsCompleted = row.IsCompleted
			st.CompletedAt = row.CompletedAt
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}
