package models

import (
	"time"
)

type ChallengeType string

const (
	ChallengeDaily   ChallengeType = "daily"
	ChallengeWeekly  ChallengeType = "weekly"
	ChallengeMonthly ChallengeType = "monthly"
	ChallengeSpecial ChallengeType = "special"
)

// ChallengeDefinition is a time-boxed goal users opt into.
// The window is half-open: [StartDate, EndDate).
type ChallengeDefinition struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	Key         string        `gorm:"uniqueIndex;not null" json:"key"` // e.g., "weekly-plastic-drive"
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description"`
	Type        ChallengeType `gorm:"type:varchar(16);default:'weekly'" json:"type"`

	// Category scopes the challenge to one waste category; empty matches any event.
	Category string `gorm:"type:varchar(32)" json:"category,omitempty"`

	TargetValue     float64 `gorm:"not null" json:"target_value"`
	PointsReward    int64   `json:"points_reward" gorm:"default:0"`
	BonusMultiplier float64 `json:"bonus_multiplier" gorm:"default:1"`

	StartDate time.Time `gorm:"not null;index" json:"start_date"`
	EndDate   time.Time `gorm:"not null;index" json:"end_date"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Contains reports whether t falls inside the challenge window.
func (c *ChallengeDefinition) Contains(t time.Time) bool {
	return !t.Before(c.StartDate) && t.Before(c.EndDate)
}

// UserChallengeParticipation: one row per user × challenge, created on join.
// Completion is write-once; PointsEarned is set exactly once at completion.
type UserChallengeParticipation struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string `gorm:"not null;uniqueIndex:idx_user_challenge" json:"user_id"`
	ChallengeKey string `gorm:"not null;uniqueIndex:idx_user_challenge" json:"challenge_key"`

	Progress     float64    `json:"progress" gorm:"default:0"`
	IsCompleted  bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	PointsEarned int64      `json:"points_earned" gorm:"default:0"`

	Timestamps
}
