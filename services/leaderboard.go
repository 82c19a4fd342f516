package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"eco-gamification-system/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const leaderboardKeyPrefix = "leaderboard:"

// DefaultLeaderboardStaleness bounds how old a cached ranking page may be.
const DefaultLeaderboardStaleness = 30 * time.Second

// LeaderboardView derives ranked views over committed profile state. It never
// stores rankings as a source of truth: pages are recomputed from the store
// and optionally cached in redis within a bounded staleness window.
// With no cache configured every call computes directly.
type LeaderboardView struct {
	DB        *gorm.DB
	cache     *redis.Client
	staleness time.Duration
}

func NewLeaderboardView(db *gorm.DB, cache *redis.Client, staleness time.Duration) *LeaderboardView {
	if staleness <= 0 {
		staleness = DefaultLeaderboardStaleness
	}
	return &LeaderboardView{DB: db, cache: cache, staleness: staleness}
}

// Rank returns one ordered page for a scope. Ordering is fully deterministic:
// (points desc, user_id asc) — ties always break the same way across calls.
func (v *LeaderboardView) Rank(ctx context.Context, scope models.LeaderboardScope, limit, offset int) ([]models.LeaderboardEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	key := fmt.Sprintf("%s%s:%s:%d:%d", leaderboardKeyPrefix, scope.Kind, scope.Key, limit, offset)
	if v.cache != nil {
		if raw, err := v.cache.Get(ctx, key).Bytes(); err == nil {
			var entries []models.LeaderboardEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️  [LEADERBOARD] cache read failed, falling back to store: %v", err)
		}
	}

	entries, err := v.compute(scope, limit, offset)
	if err != nil {
		return nil, err
	}

	if v.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := v.cache.Set(ctx, key, raw, v.staleness).Err(); err != nil {
				log.Printf("⚠️  [LEADERBOARD] cache write failed: %v", err)
			}
		}
	}
	return entries, nil
}

func (v *LeaderboardView) compute(scope models.LeaderboardScope, limit, offset int) ([]models.LeaderboardEntry, error) {
	switch scope.Kind {
	case models.ScopeGlobal, "":
		return v.computeGlobal(limit, offset)
	case models.ScopeCategory:
		return v.computeCategory(scope.Key, limit, offset)
	case models.ScopeChallenge:
		return v.computeChallenge(scope.Key, limit, offset)
	default:
		return nil, &InvalidEventError{Reason: "unknown leaderboard scope: " + string(scope.Kind)}
	}
}

func (v *LeaderboardView) computeGlobal(limit, offset int) ([]models.LeaderboardEntry, error) {
	var profiles []models.GamificationProfile
	err := v.DB.
		Order("total_points DESC, user_id ASC").
		Limit(limit).Offset(offset).
		Find(&profiles).Error
	if err != nil {
		return nil, storageErr("rank profiles", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        offset + i + 1,
			UserID:      p.UserID,
			TotalPoints: p.TotalPoints,
			Level:       p.Level,
			StreakDays:  p.StreakDays,
		})
	}
	return entries, nil
}

func (v *LeaderboardView) computeCategory(category string, limit, offset int) ([]models.LeaderboardEntry, error) {
	var stats []models.CategoryStat
	err := v.DB.
		Where("category = ?", category).
		Order("points DESC, user_id ASC").
		Limit(limit).Offset(offset).
		Find(&stats).Error
	if err != nil {
		return nil, storageErr("rank category stats", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(stats))
	for i, st := range stats {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        offset + i + 1,
			UserID:      st.UserID,
			TotalPoints: st.Points,
		})
	}
	return entries, nil
}

func (v *LeaderboardView) computeChallenge(challengeKey string, limit, offset int) ([]models.LeaderboardEntry, error) {
	var parts []models.UserChallengeParticipation
	err := v.DB.
		Where("challenge_key = ?", challengeKey).
		Order("is_completed DESC, progress DESC, user_id ASC").
		Limit(limit).Offset(offset).
		Find(&parts).Error
	if err != nil {
		return nil, storageErr("rank participations", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(parts))
	for i, p := range parts {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        offset + i + 1,
			UserID:      p.UserID,
			TotalPoints: p.PointsEarned,
			Completed:   p.IsCompleted,
		})
	}
	return entries, nil
}

// Invalidate drops every cached leaderboard page. Called after point-bearing
// writes so no reader ever sees data older than the staleness bound promises.
func (v *LeaderboardView) Invalidate(ctx context.Context) {
	if v.cache == nil {
		return
	}
	keys, err := v.cache.Keys(ctx, leaderboardKeyPrefix+"*").Result()
	if err != nil {
		log.Printf("⚠️  [LEADERBOARD] cache invalidation scan failed: %v", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := v.cache.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️  [LEADERBOARD] cache invalidation failed: %v", err)
	}
}

// WarmGlobal precomputes the first page of the global ranking. Run by the
// maintenance scheduler so the hottest read stays warm.
func (v *LeaderboardView) WarmGlobal(ctx context.Context) error {
	_, err := v.Rank(ctx, models.LeaderboardScope{Kind: models.ScopeGlobal}, 20, 0)
	return err
}
