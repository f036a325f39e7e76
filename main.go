package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"challenge-service/handlers"
	"challenge-service/middleware"
	"challenge-service/services"
	"challenge-service/store"
	"challenge-service/utils"
	"challenge-service/workers"

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

	app := fiber.New(fiber.Config{
		BodyLimit: 32 * 1024 * 1024, // 32MB, proof photos only
	})

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Service-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	st := store.NewGorm(db)
	if err := st.Migrate(); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	moderationAPIURL := os.Getenv("MODERATION_API_URL")
	if moderationAPIURL == "" {
		log.Fatal("MODERATION_API_URL environment variable not set")
	}
	serviceToken := os.Getenv("CHALLENGE_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("CHALLENGE_SERVICE_TOKEN environment variable not set")
	}
	notifyServiceURL := os.Getenv("NOTIFY_SERVICE_URL")
	if notifyServiceURL == "" {
		log.Println("⚠️  NOTIFY_SERVICE_URL not set — user notifications disabled")
	}

	media := services.MediaStoreFunc(utils.DeleteMediaByURL)
	notifier := workers.NewNotifyClient(notifyServiceURL, serviceToken)
	classifier := services.NewVisionClient(moderationAPIURL, serviceToken)

	moderationService := services.NewModerationService(st, classifier, media, notifier)
	moderationWorker := workers.NewModerationWorker(moderationService, 256)

	participationService := services.NewParticipationService(st, services.NewDefaultContentPolicy(), moderationWorker)
	challengeService := services.NewChallengeService(st, notifier)
	postService := services.NewPostService(st, media)
	reaperService := services.NewReaperService(st)
	expiryService := services.NewExpiryService(st, media)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go moderationWorker.Run(ctx)

	sched, err := services.StartSweeps(ctx, reaperService, expiryService)
	if err != nil {
		log.Fatal("failed to start background sweeps:", err)
	}
	defer func() { _ = sched.Shutdown() }()

	handlers.SetupChallengeRoutes(app, challengeService)
	handlers.SetupParticipationRoutes(app, participationService)
	handlers.SetupPostRoutes(app, postService, moderationWorker)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Moderation worker running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
