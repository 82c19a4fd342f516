package models

import (
	"time"
)

// RequirementType selects which profile metric an achievement is measured against.
type RequirementType string

const (
	RequirementCount      RequirementType = "count"
	RequirementPercentage RequirementType = "percentage"
	RequirementStreak     RequirementType = "streak"
	RequirementScore      RequirementType = "score"
	RequirementLevel      RequirementType = "level"
	RequirementDiversity  RequirementType = "diversity" // distinct waste categories classified
)

// CountMetric names the counter a count requirement reads.
type CountMetric string

const (
	MetricClassifications CountMetric = "classifications"
	MetricQuizAnswers     CountMetric = "quiz_answers"
)

type AchievementCategory string

const (
	CategoryMilestone   AchievementCategory = "milestone"
	CategoryDiversity   AchievementCategory = "diversity"
	CategoryPrecision   AchievementCategory = "precision"
	CategoryConsistency AchievementCategory = "consistency"
	CategoryTiming      AchievementCategory = "timing"
	CategoryCommunity   AchievementCategory = "community"
	CategorySpecial     AchievementCategory = "special"
)

// AchievementDefinition: static catalog entry (seeded or synced from the catalog service)
type AchievementDefinition struct {
	ID          string              `gorm:"primaryKey;type:uuid" json:"id"`
	Key         string              `gorm:"uniqueIndex;not null" json:"key"` // e.g., "FIRST_SORT", "CENTURY_SORTER"
	Name        string              `gorm:"not null" json:"name"`
	Description string              `json:"description"`
	IconURL     string              `gorm:"type:text" json:"icon_url"`
	Category    AchievementCategory `gorm:"type:varchar(16);default:'milestone'" json:"category"`

	PointsReward     int64           `json:"points_reward" gorm:"default:0"`
	RequirementType  RequirementType `gorm:"type:varchar(16);not null" json:"requirement_type"`
	RequirementValue float64         `gorm:"not null" json:"requirement_value"`
	Metric           CountMetric     `gorm:"type:varchar(24)" json:"metric,omitempty"` // count requirements only

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievementProgress: per user × achievement, created lazily on first relevant event.
// Once IsCompleted flips true the row is frozen — progress and completed_at never change again.
type UserAchievementProgress struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementKey string `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_key"`

	Progress    float64    `json:"progress" gorm:"default:0"` // fraction in [0,1]
	IsCompleted bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Timestamps
}

// SeedAchievements is the built-in catalog, used when no catalog service is configured.
var SeedAchievements = []AchievementDefinition{
	{
		Key: "FIRST_SORT", Name: "First Sort", Category: CategoryMilestone,
		Description:     "Classified your first waste item",
		PointsReward:    25,
		RequirementType: RequirementCount, RequirementValue: 1, Metric: MetricClassifications,
	},
	{
		Key: "SORTER_50", Name: "Waste Warrior", Category: CategoryMilestone,
		Description:     "Classified 50 waste items",
		PointsReward:    100,
		RequirementType: RequirementCount, RequirementValue: 50, Metric: MetricClassifications,
	},
	{
		Key: "CENTURY_SORTER", Name: "Century Sorter", Category: CategoryMilestone,
		Description:     "Classified 100 waste items",
		PointsReward:    250,
		RequirementType: RequirementCount, RequirementValue: 100, Metric: MetricClassifications,
	},
	{
		Key: "QUIZ_ROOKIE", Name: "Quiz Rookie", Category: CategoryMilestone,
		Description:     "Answered 10 quiz questions",
		PointsReward:    50,
		RequirementType: RequirementCount, RequirementValue: 10, Metric: MetricQuizAnswers,
	},
	{
		Key: "CATEGORY_EXPLORER", Name: "Category Explorer", Category: CategoryDiversity,
		Description:     "Classified waste across 5 different categories",
		PointsReward:    150,
		RequirementType: RequirementDiversity, RequirementValue: 5,
	},
	{
		Key: "SHARP_EYE", Name: "Sharp Eye", Category: CategoryPrecision,
		Description:     "Maintained 90% classification accuracy",
		PointsReward:    200,
		RequirementType: RequirementPercentage, RequirementValue: 90,
	},
	{
		Key: "STREAK_7", Name: "Week of Green", Category: CategoryConsistency,
		Description:     "Active 7 days in a row",
		PointsReward:    150,
		RequirementType: RequirementStreak, RequirementValue: 7,
	},
	{
		Key: "STREAK_30", Name: "Monthly Devotion", Category: CategoryConsistency,
		Description:     "Active 30 days in a row",
		PointsReward:    500,
		RequirementType: RequirementStreak, RequirementValue: 30,
	},
	{
		Key: "POINTS_1000", Name: "Point Collector", Category: CategorySpecial,
		Description:     "Earned 1,000 total points",
		PointsReward:    100,
		RequirementType: RequirementScore, RequirementValue: 1000,
	},
	{
		Key: "LEVEL_10", Name: "Rising Recycler", Category: CategorySpecial,
		Description:     "Reached level 10",
		PointsReward:    300,
		RequirementType: RequirementLevel, RequirementValue: 10,
	},
}
