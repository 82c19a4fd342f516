// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"eco-gamification-system/models"

	"github.com/go-co-op/gocron/v2"
)

// StartMaintenanceScheduler runs the engine's periodic jobs: deactivating
// challenges whose window has passed, and keeping the hottest leaderboard
// page warm. Jobs run between users, never mid-event.
func (e *Engine) StartMaintenanceScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every minute: deactivate challenges past their end date
	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			now := e.Clock.Now()
			res := e.Profiles.DB.Model(&models.ChallengeDefinition{}).
				Where("is_active = ? AND end_date <= ?", true, now).
				Update("is_active", false)
			if res.Error != nil {
				log.Printf("[SCHEDULER] challenge sweep failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ [SCHEDULER] closed %d expired challenge(s)", res.RowsAffected)
			}
		}),
	)

	// Keep the first global leaderboard page precomputed
	_, _ = sched.NewJob(
		gocron.DurationJob(e.Leaderboard.staleness),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Leaderboard.WarmGlobal(ctx); err != nil {
				log.Printf("[SCHEDULER] leaderboard warm failed: %v", err)
			}
		}),
	)
}
