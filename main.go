// File: eventra/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventra/config"
	"eventra/cron"
	"eventra/database"
	bookingRepoPkg "eventra/database/repository/booking"
	reviewRepoPkg "eventra/database/repository/review"
	scheduleRepoPkg "eventra/database/repository/schedule"
	"eventra/handlers"
	"eventra/middleware"
	"eventra/routes"
	"eventra/services/availability"
	"eventra/services/booking"
	"eventra/services/notification"
	"eventra/services/review"
	"eventra/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	scheduleRepo := scheduleRepoPkg.NewMongoScheduleRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	reviewRepo := reviewRepoPkg.NewMongoReviewRepo()

	for _, ensure := range []func() error{
		scheduleRepo.EnsureIndexes,
		bookingRepo.EnsureIndexes,
		reviewRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
		}
	}

	// services.
	locks := utils.NewKeyedMutex()

	availabilitySvc := &availability.DefaultAvailabilityService{
		Repo:  scheduleRepo,
		Locks: locks,
	}

	notificationSvc := &notification.LogNotificationService{Logger: logger}

	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer taskClient.Close()

	ledgerSvc := &booking.DefaultLedgerService{
		Repo:          bookingRepo,
		Availability:  availabilitySvc,
		Notifier:      notificationSvc,
		Tasks:         taskClient,
		Locks:         locks,
		ReminderDelay: time.Duration(config.AppConfig.ReviewReminderDelayHours) * time.Hour,
	}

	reviewSvc := &review.DefaultReviewService{
		Repo:     reviewRepo,
		Bookings: bookingRepo,
		Locks:    utils.NewKeyedMutex(),
		Cache:    utils.GetCacheClient(),
	}

	cron.InitReviewReminderWorker(bookingRepo, reviewRepo, notificationSvc)

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(availabilitySvc),
		Booking:      handlers.NewBookingHandler(ledgerSvc),
		Payment:      handlers.NewPaymentWebhookHandler(ledgerSvc),
		Review:       handlers.NewReviewHandler(reviewSvc),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
