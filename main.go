package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"space-games-system/handlers"
	"space-games-system/middleware"
	"space-games-system/models"
	"space-games-system/services"
	"space-games-system/store"
	"space-games-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		logrus.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logrus.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.GameSession{},
		&models.ScoreEntry{},
		&models.SpaceMember{},
	); err != nil {
		logrus.Fatal("failed to migrate database: ", err)
	}

	sessionStore := store.NewGormSessionStore(db)
	scoreStore := store.NewGormScoreStore(db)
	pairs := services.NewDBPairingDirectory(db)

	scoreService := services.NewScoreService(scoreStore)
	sessionService := services.NewSessionService(sessionStore, pairs)
	moveService := services.NewMoveService(sessionStore, scoreService)

	// --- CONFIGURE pairing service details for the space membership mirror ---
	pairingServiceURL := os.Getenv("PAIRING_SERVICE_URL")
	if pairingServiceURL == "" {
		logrus.Fatal("PAIRING_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("GAME_SERVICE_TOKEN")
	if serviceToken == "" {
		logrus.Fatal("GAME_SERVICE_TOKEN environment variable not set")
	}
	// --- END CONFIG ---

	syncWorker := workers.NewSpaceSyncWorker(db, pairingServiceURL, "/api/v1/public/spaces", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncWorker.Start(ctx)

	expiryHours := 72
	if raw := os.Getenv("SESSION_EXPIRY_HOURS"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			expiryHours = parsed
		} else {
			logrus.Warnf("⚠️  Invalid SESSION_EXPIRY_HOURS %q, using default %d", raw, expiryHours)
		}
	}
	sessionService.StartExpirySweep(time.Duration(expiryHours) * time.Hour)

	// ✅ Setup routes — enforced Gateway auth + user context on every session route
	handlers.SetupGameSessionRoutes(app, sessionService, moveService)
	handlers.SetupScoreRoutes(app, scoreService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			logrus.Errorf("Server error: %v", err)
		}
	}()

	logrus.Infof("✅ Server running on http://localhost:%s", port)
	logrus.Info("✅ Space Sync Worker running")
	logrus.Infof("✅ Expiry sweep running (threshold %dh)", expiryHours)
	logrus.Infof("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	logrus.Info("Shutting down server...")
	_ = app.Shutdown()
}
