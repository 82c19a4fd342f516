package services

import (
	"context"
	"testing"
	"time"

	"eco-gamification-system/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

func seedAchievement(t *testing.T, db *gorm.DB, def models.AchievementDefinition) {
	t.Helper()
	def.ID = uuid.NewString()
	if err := db.Create(&def).Error; err != nil {
		t.Fatalf("seed achievement %s: %v", def.Key, err)
	}
}

func achievementRow(t *testing.T, db *gorm.DB, userID, key string) *models.UserAchievementProgress {
	t.Helper()
	var row models.UserAchievementProgress
	if err := db.Where("user_id = ? AND achievement_key = ?", userID, key).First(&row).Error; err != nil {
		t.Fatalf("load progress row %s: %v", key, err)
	}
	return &row
}

func TestAchievements_UnlockAwardsReward(t *testing.T) {
	db := testDB(t)
	clock := testClock(at(2024, time.June, 10, 12))
	engine := testEngine(t, db, clock)
	ctx := context.Background()

	seedAchievement(t, db, models.AchievementDefinition{
		Key: "FIRST_SORT", Name: "First Sort",
		PointsReward:    25,
		RequirementType: models.RequirementCount, RequirementValue: 1,
		Metric: models.MetricClassifications,
	})

	prof, unlocked, err := engine.RecordClassification(ctx, "user-1", true, "plastic", clock.Now())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(unlocked) != 1 || unlocked[0].Key != "FIRST_SORT" {
		t.Fatalf("unlocked = %v, want [FIRST_SORT]", unlocked)
	}
	if prof.TotalPoints != 35 {
		t.Errorf("total points: got %d, want 35 (10 base + 25 reward)", prof.TotalPoints)
	}

	row := achievementRow(t, db, "user-1", "FIRST_SORT")
	if !row.IsCompleted || row.CompletedAt == nil {
		t.Errorf("row not marked completed: %+v", row)
	}
	if row.Progress != 1 {
		t.Errorf("progress: got %v, want 1", row.Progress)
	}
}

func TestAchievements_CompletedRowsAreFrozen(t *testing.T) {
	db := testDB(t)
	fake := clockwork.NewFakeClockAt(at(2024, time.June, 10, 12))
	clock := &Clock{Clock: fake, Location: time.UTC}
	engine := testEngine(t, db, clock)
	ctx := context.Background()

	seedAchievement(t, db, models.AchievementDefinition{
		Key: "FIRST_SORT", Name: "First Sort",
		RequirementType: models.RequirementCount, RequirementValue: 1,
		Metric: models.MetricClassifications,
	})

	if _, _, err := engine.RecordClassification(ctx, "user-1", true, "plastic", clock.Now()); err != nil {
		t.Fatalf("first event: %v", err)
	}
	first := achievementRow(t, db, "user-1", "FIRST_SORT")

	fake.Advance(2 * time.Hour)
	_, unlocked, err := engine.RecordClassification(ctx, "user-1", true, "plastic", clock.Now())
	if err != nil {
		t.Fatalf("second event: %v", err)
	}
	if len(unlocked) != 0 {
		t.Errorf("second event re-unlocked: %v", unlocked)
	}

	second := achievementRow(t, db, "user-1", "FIRST_SORT")
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("completed_at moved: %v -> %v", first.CompletedAt, second.CompletedAt)
	}
	if second.Progress != 1 || !second.IsCompleted {
		t.Errorf("completed row mutated: %+v", second)
	}
}

func TestAchievements_RewardPointsCascade(t *testing.T) {
	db := testDB(t)
	clock := testClock(at(2024, time.June, 10, 12))
	engine := testEngine(t, db, clock)
	ctx := context.Background()

	seedAchievement(t, db, models.AchievementDefinition{
		Key: "FIRST_SORT", Name: "First Sort",
		PointsReward:    25,
		RequirementType: models.RequirementCount, RequirementValue: 1,
		Metric: models.MetricClassifications,
	})
	// Reachable only through the reward above: one classification is 10 base points
	seedAchievement(t, db, models.AchievementDefinition{
		Key: "POINTS_30", Name: "Point Starter",
		RequirementType: models.RequirementScore, RequirementValue: 30,
	})

	prof, unlocked, err := engine.RecordClassification(ctx, "user-1", true, "glass", clock.Now())
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	keys := make(map[string]bool, len(unlocked))
	for _, def := range unlocked {
		keys[def.Key] = true
	}
	if !keys["FIRST_SORT"] || !keys["POINTS_30"] {
		t.Fatalf("cascade missed an unlock, got %v", keys)
	}
	if prof.TotalPoints != 35 {
		t.Errorf("total points: got %d, want 35", prof.TotalPoints)
	}
}

func TestAchievements_PercentageNeedsSampleSize(t *testing.T) {
	db := testDB(t)
	clock := testClock(at(2024, time.June, 10, 12))
	cfg := DefaultPointsConfig
	cfg.AccuracyBonusMultiplier = 1
	cfg.MinAccuracySamples = 3
	engine := NewEngine(db, clock, nil, cfg, time.Second)
	ctx := context.Background()

	seedAchievement(t, db, models.AchievementDefinition{
		Key: "SHARP_EYE", Name: "Sharp Eye",
		RequirementType: models.RequirementPercentage, RequirementValue: 90,
	})

	for i := 0; i < 2; i++ {
		if _, _, err := engine.RecordClassification(ctx, "user-1", true, "metal", clock.Now()); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}
	if row := achievementRow(t, db, "user-1", "SHARP_EYE"); row.IsCompleted {
		t.Fatal("unlocked at 100% accuracy below the minimum sample size")
	}

	// Third graded event crosses the sample threshold
	_, unlocked, err := engine.RecordClassification(ctx, "user-1", true, "metal", clock.Now())
	if err != nil {
		t.Fatalf("third event: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].Key != "SHARP_EYE" {
		t.Fatalf("unlocked = %v, want [SHARP_EYE]", unlocked)
	}
}

func TestAchievements_DiversityCountsDistinctCategories(t *testing.T) {
	db := testDB(t)
	clock := testClock(at(2024, time.June, 10, 12))
	engine := testEngine(t, db, clock)
	ctx := context.Background()

	seedAchievement(t, db, models.AchievementDefinition{
		Key: "CATEGORY_EXPLORER", Name: "Category Explorer",
		RequirementType: models.RequirementDiversity, RequirementValue: 2,
	})

	// Two events in one category: only one distinct category so far
	for i := 0; i < 2; i++ {
		if _, _, err := engine.RecordClassification(ctx, "user-1", true, "plastic", clock.Now()); err != nil {
			t.Fatalf("event %d: %v", i, err)
		}
	}
	if row := achievementRow(t, db, "user-1", "CATEGORY_EXPLORER"); row.IsCompleted {
		t.Fatal("unlocked with a single distinct category")
	}

	_, unlocked, err := engine.RecordClassification(ctx, "user-1", true, "glass", clock.Now())
	if err != nil {
		t.Fatalf("glass event: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0].Key != "CATEGORY_EXPLORER" {
		t.Fatalf("unlocked = %v, want [CATEGORY_EXPLORER]", unlocked)
	}
}

func TestAchievements_ListWithProgressReportsFractions(t *testing.T) {
	db := testDB(t)
	clock := testClock(at(2024, time.June, 10, 12))
	engine := testEngine(t, db, clock)
	ctx := context.Background()

	seedAchievement(t, db, models.AchievementDefinition{
		Key: "SORTER_4", Name: "Sorter",
		RequirementType: models.RequirementCount, RequirementValue: 4,
		Metric: models.MetricClassifications,
	})

	if _, _, err := engine.RecordClassification(ctx, "user-1", true, "paper", clock.Now()); err != nil {
		t.Fatalf("record: %v", err)
	}

	statuses, err := engine.ListAchievements("user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(statuses) != 1 {
		t.Fatalf("statuses: got %d, want 1", len(statuses))
	}
	if got := statuses[0].Progress; got != 0.25 {
		t.Errorf("progress: got %v, want 0.25", got)
	}
	if statuses[0].IsCompleted {
		t.Error("quarter progress reported as completed")
	}
}
