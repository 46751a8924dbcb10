package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"barberflow/config"
	"barberflow/cron"
	"barberflow/database"
	bookingRepo "barberflow/database/repository/booking"
	ledgerRepo "barberflow/database/repository/ledger"
	sessionRepo "barberflow/database/repository/session"
	shopRepo "barberflow/database/repository/shop"
	staffRepo "barberflow/database/repository/staff"
	"barberflow/handlers"
	"barberflow/middleware"
	"barberflow/routes"
	"barberflow/services/booking"
	"barberflow/services/conversation"
	"barberflow/services/messenger"
	"barberflow/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()

	// Persistence and cache clients, constructed here and injected
	// everywhere; no component reaches for a global handle.
	mongoClient, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := database.Disconnect(mongoClient); err != nil {
			logger.Sugar().Errorf("main: mongo disconnect failed: %v", err)
		}
	}()
	db := mongoClient.Database(cfg.DatabaseName)

	cacheClient, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to Redis: %v", err)
	}
	defer cacheClient.Close()

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	defer queueClient.Close()

	// Repositories.
	sessions := sessionRepo.NewMongoSessionRepo(db, cacheClient)
	bookings := bookingRepo.NewMongoBookingRepo(db)
	shops := shopRepo.NewMongoShopRepo(db, cacheClient)
	staff := staffRepo.NewMongoStaffRepo(db)
	ledger := ledgerRepo.NewMongoLedgerRepo(db, cacheClient)

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelIndexes()
	for _, repo := range []interface {
		EnsureIndexes(ctx context.Context) error
	}{sessions, bookings, shops, staff, ledger} {
		if err := repo.EnsureIndexes(indexCtx); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
		}
	}

	// Services.
	sender := messenger.NewWhatsAppSender(cfg.WhatsAppAPIBaseURL, cfg.WhatsAppAccessToken)
	availability := &booking.AvailabilityResolver{Bookings: bookings}
	bookingService := &booking.DefaultBookingService{
		Repo:         bookings,
		Codes:        &booking.CodeAssigner{Bookings: bookings},
		Queue:        queueClient,
		ReminderLead: time.Duration(cfg.ReminderLeadMinutes) * time.Minute,
	}
	engine := &conversation.Engine{
		Sessions:     sessions,
		Shops:        shops,
		Bookings:     bookingService,
		Availability: availability,
		Sender:       sender,
	}
	dispatcher := &conversation.Dispatcher{
		Shops:  shops,
		Ledger: ledger,
		Engine: engine,
	}

	// Background worker: drains the webhook queue (at-most-once) and
	// delivers appointment reminders.
	worker := cron.StartWorker(cfg, dispatcher, sender, bookings)
	defer worker.Shutdown()

	utils.StartHealthMonitor(cacheClient, mongoClient)

	// HTTP surface.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := &routes.HandlerBundle{
		Webhook: handlers.NewWebhookHandler(cfg.WhatsAppVerifyToken, queueClient),
		Auth:    handlers.NewAuthHandler(staff),
		Shop:    handlers.NewShopHandler(shops),
		Booking: handlers.NewBookingHandler(bookingService, shops, availability),

		StaffAuth:        middleware.StaffAuthMiddleware(staff),
		WebhookSignature: middleware.SignatureMiddleware(cfg.WhatsAppAppSecret),
		RateLimitPublic:  middleware.RateLimitMiddleware(),
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
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
