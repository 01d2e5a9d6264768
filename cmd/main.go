package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"gymplan/database"
	"gymplan/internal/cache"
	"gymplan/internal/controllers"
	"gymplan/internal/identity"
	"gymplan/internal/notifications"
	"gymplan/internal/remote"
	"gymplan/internal/repository"
	"gymplan/internal/scheduler"
	"gymplan/internal/services"
	"gymplan/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	// Local cache
	database.ConnectDatabase()
	if err := database.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	workoutRepo := repository.NewWorkoutRepository(database.DB)

	// Identity
	provider := identity.NewSessionProvider()

	// Remote store client
	syncURL := os.Getenv("WORKOUT_SYNC_URL")
	if syncURL == "" {
		syncURL = "http://localhost:9090"
	}
	remoteClient := remote.NewHTTPClient(syncURL, remote.DefaultRetryPolicy())

	// Read-side view cache; the schedule keeps working without Redis
	viewCache, err := cache.NewScheduleCache()
	if err != nil {
		log.Printf("Warning: view cache unavailable, serving uncached reads: %v", err)
		viewCache = nil
	} else {
		defer viewCache.Close()
	}

	// Notification delivery: RabbitMQ when configured, process log otherwise
	var delivery notifications.Delivery
	rabbitMQURL := os.Getenv("RABBITMQ_URL")
	if rabbitMQURL != "" {
		amqpDelivery, err := notifications.NewAMQPDelivery(rabbitMQURL, "workout.notifications")
		if err != nil {
			log.Printf("Warning: AMQP delivery unavailable, falling back to log delivery: %v", err)
			delivery = notifications.NewLogDelivery()
		} else {
			defer amqpDelivery.Close()
			delivery = amqpDelivery
		}
	} else {
		delivery = notifications.NewLogDelivery()
	}

	reminders := scheduler.NewReminderScheduler(delivery, workoutRepo)

	store := services.NewScheduleStore(workoutRepo, remoteClient, provider, viewCache)
	if err := store.Start(); err != nil {
		log.Fatalf("Failed to start schedule store: %v", err)
	}
	defer store.Stop()

	scheduleService := services.NewScheduleService(store, reminders)

	// Sign in from a pre-issued token when one is configured; the sign-in
	// event triggers the initial remote refresh.
	if token := os.Getenv("SYNC_AUTH_TOKEN"); token != "" {
		userID, err := identity.UserIDFromToken(token)
		if err != nil {
			log.Printf("Warning: SYNC_AUTH_TOKEN rejected, staying offline: %v", err)
		} else {
			provider.SignIn(userID)
		}
	}

	// Timer state does not survive a restart; re-arm from the local cache.
	if err := reminders.RestoreAll(); err != nil {
		log.Printf("Warning: reminder restore failed: %v", err)
	}

	// Periodic jobs: hourly remote resync, nightly reminder re-arm.
	jobs := cron.New()
	if _, err := jobs.AddFunc("@every 1h", func() {
		scheduleService.Refresh(nil)
	}); err != nil {
		log.Fatalf("Failed to register resync job: %v", err)
	}
	if _, err := jobs.AddFunc("0 3 * * *", func() {
		if err := reminders.RestoreAll(); err != nil {
			log.Printf("Nightly reminder re-arm failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to register re-arm job: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		_, signedIn := provider.CurrentUserID()
		c.JSON(200, gin.H{
			"message":   "Gymplan API is running",
			"version":   "1.0.0",
			"status":    "healthy",
			"signed_in": signedIn,
			"cache":     viewCache != nil,
		})
	})

	workoutController := controllers.NewWorkoutController(scheduleService, viewCache)
	routes.RegisterWorkoutRoutes(router, workoutController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:           ":" + port,
		Handler:        router,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Printf("Gymplan API server starting on port %s", port)
	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
