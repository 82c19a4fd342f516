package services

import (
	"log"
	"time"

	"eco-gamification-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCatalog installs the built-in achievement catalog and a starter set of
// challenges. Used when no external catalog service is configured. Upserts by
// key, so repeated startups are harmless and admin edits are preserved where
// the seed doesn't override them.
func SeedCatalog(db *gorm.DB, clock *Clock) error {
	for _, def := range models.SeedAchievements {
		def.ID = uuid.NewString()
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "category", "points_reward", "requirement_type", "requirement_value", "metric"}),
		}).Create(&def).Error
		if err != nil {
			return storageErr("seed achievements", err)
		}
	}

	for _, def := range seedChallenges(clock) {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true, // never clobber a running challenge's window
		}).Create(&def).Error
		if err != nil {
			return storageErr("seed challenges", err)
		}
	}

	log.Printf("✅ Catalog seeded (%d achievements)", len(models.SeedAchievements))
	return nil
}

// seedChallenges generates the rolling starter challenges for the current
// week and month in the platform timezone.
func seedChallenges(clock *Clock) []models.ChallengeDefinition {
	today := clock.Today()
	weekStart := startOfISOWeek(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, clock.Location)

	weekly := models.ChallengeDefinition{
		ID:              uuid.NewString(),
		Name:            "Weekly Recycling Drive",
		Description:     "Classify 20 recyclable items this week",
		Type:            models.ChallengeWeekly,
		Category:        "recyclable",
		TargetValue:     20,
		PointsReward:    150,
		BonusMultiplier: 1.25,
		StartDate:       weekStart,
		EndDate:         weekStart.AddDate(0, 0, 7),
		IsActive:        true,
	}
	weekly.Key = slug.Make(weekly.Name + " " + isoWeek(weekStart))

	monthly := models.ChallengeDefinition{
		ID:              uuid.NewString(),
		Name:            "Monthly Sorting Marathon",
		Description:     "Classify 100 items of any category this month",
		Type:            models.ChallengeMonthly,
		TargetValue:     100,
		PointsReward:    500,
		BonusMultiplier: 1.5,
		StartDate:       monthStart,
		EndDate:         monthStart.AddDate(0, 1, 0),
		IsActive:        true,
	}
	monthly.Key = slug.Make(monthly.Name + " " + monthAnchor(monthStart))

	return []models.ChallengeDefinition{weekly, monthly}
}

func startOfISOWeek(date time.Time) time.Time {
	weekday := int(date.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return date.AddDate(0, 0, 1-weekday)
}
