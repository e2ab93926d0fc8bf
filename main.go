package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"snowvillage-system/handlers"
	"snowvillage-system/middleware"
	"snowvillage-system/models"
	"snowvillage-system/services"
	"snowvillage-system/utils"
	"snowvillage-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, X-User-ID, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.TaskProgress{},
		&models.MissionProgress{},
		&models.MilestoneNotice{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	catalog, err := loadCatalog()
	if err != nil {
		log.Fatal("failed to load catalog:", err)
	}

	userService := services.NewUserService(db)
	completionService := services.NewCompletionService(db, catalog, userService)
	rankingService := services.NewRankingService(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Profile sync from the external auth/profile service ---
	profileSyncURL := os.Getenv("PROFILE_SYNC_URL")
	if profileSyncURL != "" {
		serviceToken := os.Getenv("VILLAGE_SERVICE_TOKEN")
		syncWorker := workers.NewProfileSyncWorker(db, profileSyncURL, "/api/v1/public/profiles", serviceToken)
		syncWorker.Start(ctx)
	} else {
		log.Println("⚠️  PROFILE_SYNC_URL not set — leaderboard usernames will not be mirrored")
	}

	userService.StartDailyRollover()

	handlers.SetupProgressRoutes(app, userService, completionService)
	handlers.SetupRankingRoutes(app, rankingService)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Daily XP rollover scheduled")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}

// loadCatalog reads the mission/task catalog from the object store when
// CATALOG_SOURCE=s3, otherwise from local YAML files under CATALOG_DIR.
func loadCatalog() (*services.CatalogService, error) {
	if os.Getenv("CATALOG_SOURCE") == "s3" {
		if err := utils.InitObjectStore(); err != nil {
			return nil, err
		}
		missionsYML, err := utils.FetchObject(context.Background(), "catalog/missions.yml")
		if err != nil {
			return nil, err
		}
		tasksYML, err := utils.FetchObject(context.Background(), "catalog/tasks.yml")
		if err != nil {
			return nil, err
		}
		return services.LoadCatalog(missionsYML, tasksYML)
	}

	dir := os.Getenv("CATALOG_DIR")
	if dir == "" {
		dir = "./data"
	}
	return services.LoadCatalogFromFiles(dir+"/missions.yml", dir+"/tasks.yml")
}
