package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"eco-gamification-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultCatalogSyncInterval keeps the catalog refresh coarse — edits are rare.
const DefaultCatalogSyncInterval = 15 * time.Minute

// CatalogSyncClient polls the external catalog service for achievement and
// challenge definitions. Catalog edits are rare, so the interval is coarse.
type CatalogSyncClient struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	DB         *gorm.DB
}

func NewCatalogSyncClient(db *gorm.DB, baseURL, token string) *CatalogSyncClient {
	return &CatalogSyncClient{
		BaseURL: baseURL,
		Token:   token,
		DB:      db,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *CatalogSyncClient) fetch(ctx context.Context, path string, out interface{}) error {
	u, err := url.Parse(fmt.Sprintf("%s%s", c.BaseURL, path))
	if err != nil {
		return fmt.Errorf("failed to parse catalog URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("catalog service returned status %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// SyncOnce pulls both catalogs and upserts them by key.
func (c *CatalogSyncClient) SyncOnce(ctx context.Context) error {
	var achResp struct {
		Achievements []models.AchievementDefinition `json:"achievements"`
	}
	if err := c.fetch(ctx, "/api/v1/catalog/achievements", &achResp); err != nil {
		return err
	}

	for _, def := range achResp.Achievements {
		if def.Key == "" {
			def.Key = slug.Make(def.Name)
		}
		if def.ID == "" {
			def.ID = uuid.NewString()
		}
		err := c.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon_url", "category", "points_reward", "requirement_type", "requirement_value", "metric"}),
		}).Create(&def).Error
		if err != nil {
			return fmt.Errorf("upsert achievement %s: %w", def.Key, err)
		}
	}

	var chResp struct {
		Challenges []models.ChallengeDefinition `json:"challenges"`
	}
	if err := c.fetch(ctx, "/api/v1/catalog/challenges", &chResp); err != nil {
		return err
	}

	for _, def := range chResp.Challenges {
		if def.Key == "" {
			def.Key = slug.Make(def.Name)
		}
		if def.ID == "" {
			def.ID = uuid.NewString()
		}
		err := c.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "type", "category", "target_value", "points_reward", "bonus_multiplier", "start_date", "end_date", "is_active"}),
		}).Create(&def).Error
		if err != nil {
			return fmt.Errorf("upsert challenge %s: %w", def.Key, err)
		}
	}

	log.Printf("✅ [CATALOG_SYNC] synced %d achievements, %d challenges",
		len(achResp.Achievements), len(chResp.Challenges))
	return nil
}

// PollCatalog runs SyncOnce on a fixed interval until ctx is cancelled.
func PollCatalog(ctx context.Context, client *CatalogSyncClient, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := client.SyncOnce(ctx); err != nil {
		log.Printf("[CATALOG_SYNC] initial sync failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			log.Println("[CATALOG_SYNC] stopping")
			return
		case <-ticker.C:
			if err := client.SyncOnce(ctx); err != nil {
				log.Printf("[CATALOG_SYNC] sync failed: %v", err)
			}
		}
	}
}
