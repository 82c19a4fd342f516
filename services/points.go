package services

import (
	"math"

	"eco-gamification-system/models"
	"eco-gamification-system/utils"
)

// PointsConfig defines base rates and bonus multipliers (tunable via env)
type PointsConfig struct {
	ClassificationPoints    int64   // base points per classification
	QuizCompleteBonus       int64   // flat bonus for finishing a quiz session
	AccuracyBonusThreshold  float64 // trailing accuracy required for the bonus
	AccuracyBonusMultiplier float64
	MinAccuracySamples      int64 // graded events before precision achievements apply
	MaxCascadeDepth         int   // safety bound for achievement reward cascades
}

var DefaultPointsConfig = PointsConfig{
	ClassificationPoints:    10,
	QuizCompleteBonus:       25,
	AccuracyBonusThreshold:  0.8,
	AccuracyBonusMultiplier: 1.5,
	MinAccuracySamples:      20,
	MaxCascadeDepth:         0, // 0 = bounded by catalog size
}

// PointsConfigFromEnv overlays env vars onto the defaults.
func PointsConfigFromEnv() PointsConfig {
	cfg := DefaultPointsConfig
	cfg.ClassificationPoints = utils.EnvInt64("POINTS_CLASSIFICATION", cfg.ClassificationPoints)
	cfg.QuizCompleteBonus = utils.EnvInt64("POINTS_QUIZ_COMPLETE_BONUS", cfg.QuizCompleteBonus)
	cfg.AccuracyBonusThreshold = utils.EnvFloat("ACCURACY_BONUS_THRESHOLD", cfg.AccuracyBonusThreshold)
	cfg.AccuracyBonusMultiplier = utils.EnvFloat("ACCURACY_BONUS_MULTIPLIER", cfg.AccuracyBonusMultiplier)
	cfg.MinAccuracySamples = utils.EnvInt64("MIN_ACCURACY_SAMPLES", cfg.MinAccuracySamples)
	return cfg
}

// PointsCalculator turns a normalized event into the points it awards.
// Pure arithmetic — no I/O.
type PointsCalculator struct {
	cfg PointsConfig
}

func NewPointsCalculator(cfg PointsConfig) *PointsCalculator {
	return &PointsCalculator{cfg: cfg}
}

// BasePoints returns the unmodified rate for an event type.
func (p *PointsCalculator) BasePoints(ev *models.ProgressEvent) int64 {
	switch ev.Type {
	case models.EventClassification:
		return p.cfg.ClassificationPoints
	case models.EventQuizAnswer:
		return ev.PointsValue
	case models.EventQuizComplete:
		return p.cfg.QuizCompleteBonus
	default:
		return 0
	}
}

// Calculate applies the bonus multipliers on top of the base rate and rounds
// down to the nearest integer. An incorrect graded event contributes zero
// points (counters and accuracy still apply downstream). Never negative.
//
// challengeMultiplier is the best bonus among the user's active, un-completed
// participations whose category matches the event; 1 when none applies.
func (p *PointsCalculator) Calculate(ev *models.ProgressEvent, profile *models.GamificationProfile, challengeMultiplier float64) int64 {
	if ev.Graded() && !*ev.IsCorrect {
		return 0
	}

	points := float64(p.BasePoints(ev))
	if points <= 0 {
		return 0
	}

	if ev.Graded() && *ev.IsCorrect && profile.AccuracyRate >= p.cfg.AccuracyBonusThreshold {
		points *= p.cfg.AccuracyBonusMultiplier
	}
	if challengeMultiplier > 1 {
		points *= challengeMultiplier
	}

	return int64(math.Floor(points))
}
