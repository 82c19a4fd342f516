package services

import (
	"path/filepath"
	"testing"
	"time"

	"eco-gamification-system/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a throwaway SQLite database with the engine schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.GamificationProfile{},
		&models.CategoryStat{},
		&models.AchievementDefinition{},
		&models.UserAchievementProgress{},
		&models.ChallengeDefinition{},
		&models.UserChallengeParticipation{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// testClock returns a fake clock pinned to a fixed instant in UTC.
func testClock(at time.Time) *Clock {
	return &Clock{Clock: clockwork.NewFakeClockAt(at), Location: time.UTC}
}

// testEngine wires an engine over the test database with no cache and no
// accuracy bonus, so base rates are observable directly.
func testEngine(t *testing.T, db *gorm.DB, clock *Clock) *Engine {
	t.Helper()
	cfg := DefaultPointsConfig
	cfg.AccuracyBonusMultiplier = 1
	return NewEngine(db, clock, nil, cfg, time.Second)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}
