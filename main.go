package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"eco-gamification-system/handlers"
	"eco-gamification-system/middleware"
	"eco-gamification-system/models"
	"eco-gamification-system/services"
	"eco-gamification-system/utils"
	"eco-gamification-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := utils.MustEnv("DATABASE_URL")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.GamificationProfile{},
		&models.CategoryStat{},
		&models.AchievementDefinition{},
		&models.UserAchievementProgress{},
		&models.ChallengeDefinition{},
		&models.UserChallengeParticipation{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	clock, err := services.NewClock(utils.EnvStr("PLATFORM_TIMEZONE", "UTC"))
	if err != nil {
		log.Fatal("failed to initialize platform clock:", err)
	}

	// Leaderboard cache is optional — without REDIS_ADDR views compute directly
	var cache *redis.Client
	if addr := strings.TrimSpace(os.Getenv("REDIS_ADDR")); addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
	}

	staleness := utils.EnvDuration("LEADERBOARD_STALENESS", services.DefaultLeaderboardStaleness)
	engine := services.NewEngine(db, clock, cache, services.PointsConfigFromEnv(), staleness)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog: sync from the catalog service when configured, else seed built-ins
	if catalogURL := os.Getenv("CATALOG_SERVICE_URL"); catalogURL != "" {
		token := utils.MustEnv("ENGINE_SERVICE_TOKEN")
		catalogClient := workers.NewCatalogSyncClient(db, catalogURL, token)
		interval := utils.EnvDuration("CATALOG_SYNC_INTERVAL", workers.DefaultCatalogSyncInterval)
		go workers.PollCatalog(ctx, catalogClient, interval)
		log.Printf("✅ Catalog sync polling %s (every %s)", catalogURL, interval)
	} else {
		if err := services.SeedCatalog(db, clock); err != nil {
			log.Fatal("failed to seed catalog:", err)
		}
	}

	engine.StartMaintenanceScheduler()

	handlers.SetupGamificationRoutes(app, engine)
	handlers.SetupChallengeRoutes(app, engine)
	handlers.SetupLeaderboardRoutes(app, engine)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Maintenance scheduler running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
