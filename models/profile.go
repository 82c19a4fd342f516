package models

import (
	"time"

	"gorm.io/gorm"
)

// GamificationProfile is the canonical per-user progress record (denormalized for performance).
// It is mutated only through the profile aggregator; every other component reads it.
type GamificationProfile struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"` // links to profile service

	// Core progression
	TotalPoints   int64   `json:"total_points" gorm:"default:0"`
	Level         int     `json:"level" gorm:"default:1"`
	LevelProgress float64 `json:"level_progress" gorm:"default:0"` // fraction toward next level [0,1)

	// Activity counters
	ClassificationsCount   int64 `json:"classifications_count" gorm:"default:0"`
	WeeklyClassifications  int64 `json:"weekly_classifications" gorm:"default:0"`
	MonthlyClassifications int64 `json:"monthly_classifications" gorm:"default:0"`
	QuizAnswersCount       int64 `json:"quiz_answers_count" gorm:"default:0"`

	// Accuracy: count-weighted running average over graded events
	AccuracyRate    float64 `json:"accuracy_rate" gorm:"default:0"`
	AccuracySamples int64   `json:"accuracy_samples" gorm:"default:0"`

	// Streaks (calendar days in the platform timezone)
	StreakDays       int        `json:"streak_days" gorm:"default:0"`
	LongestStreak    int        `json:"longest_streak" gorm:"default:0"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`

	// Window anchors: counters reset when the current ISO week / month differs
	WeekAnchor  string `json:"-" gorm:"type:varchar(8)"`
	MonthAnchor string `json:"-" gorm:"type:varchar(7)"`

	// Milestones
	LastLevelUpAt *time.Time `json:"last_level_up_at,omitempty"`

	// Optimistic concurrency
	Version int64 `json:"-" gorm:"default:0"`

	Timestamps
}

// CategoryStat accumulates per-user activity within one waste category.
// Feeds diversity achievements and the category leaderboard scope.
type CategoryStat struct {
	ID              string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID          string `gorm:"not null;uniqueIndex:idx_user_category" json:"user_id"`
	Category        string `gorm:"not null;uniqueIndex:idx_user_category" json:"category"`
	Classifications int64  `json:"classifications" gorm:"default:0"`
	Points          int64  `json:"points" gorm:"default:0"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
