package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cropconnect/config"
	"cropconnect/cron"
	"cropconnect/database"
	"cropconnect/database/repository"
	bidRepo "cropconnect/database/repository/bid"
	bookingRepo "cropconnect/database/repository/booking"
	listingRepo "cropconnect/database/repository/listing"
	notificationRepo "cropconnect/database/repository/notification"
	requirementRepo "cropconnect/database/repository/requirement"
	reviewRepo "cropconnect/database/repository/review"
	transactionRepo "cropconnect/database/repository/transaction"
	userRepoPkg "cropconnect/database/repository/user"
	"cropconnect/handlers"
	"cropconnect/middleware"
	"cropconnect/realtime"
	"cropconnect/routes"
	"cropconnect/services/bid"
	"cropconnect/services/booking"
	"cropconnect/services/intelligence"
	"cropconnect/services/listing"
	"cropconnect/services/mailer"
	"cropconnect/services/notification"
	"cropconnect/services/payment"
	"cropconnect/services/requirement"
	"cropconnect/services/review"
	"cropconnect/services/storage"
	"cropconnect/services/tasks"
	"cropconnect/services/user"
	"cropconnect/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := utils.InitializeLogger(cfg.Env, cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("main: mongo connection failed", zap.Error(err))
	}
	defer database.Disconnect(mongoClient) //nolint:errcheck

	cacheRedis, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisCacheDB)
	if err != nil {
		logger.Fatal("main: redis cache connection failed", zap.Error(err))
	}
	authRedis, err := utils.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisAuthDB)
	if err != nil {
		logger.Fatal("main: redis auth connection failed", zap.Error(err))
	}

	// repositories.
	repos, err := openRepositories(db)
	if err != nil {
		logger.Fatal("main: failed to prepare collections", zap.Error(err))
	}
	users, bookings, tractors, workers := repos.users, repos.bookings, repos.tractors, repos.workers
	tx := repository.NewMongoTxRunner(mongoClient)

	// background tasks.
	asynqClient := asynq.NewClient(cron.RedisOpt(cfg))
	defer asynqClient.Close()
	queue := tasks.NewQueue(asynqClient)

	// notification channels.
	hub := realtime.NewHub(logger)
	go hub.Run(rootCtx)

	channels := notification.Channels{Realtime: hub, Email: queue}
	if cfg.FirebaseCredentialsFile != "" {
		push, err := notification.NewFCMSender(rootCtx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Warn("main: push notifications disabled", zap.Error(err))
		} else {
			channels.Push = push
		}
	}
	dispatcher := notification.NewDispatcher(repos.notifications, users, channels, notification.DispatcherConfig{}, logger)

	worker := cron.NewWorker(cfg, &cron.Handlers{
		Mailer:   mailer.New(cfg, logger),
		Bookings: bookings,
		Notifier: dispatcher,
		Logger:   logger,
	})
	if err := worker.Start(); err != nil {
		logger.Fatal("main: task worker failed", zap.Error(err))
	}

	images, err := storage.New(cfg)
	if err != nil {
		logger.Fatal("main: failed to initialize cloudinary storage", zap.Error(err))
	}

	assistant := &intelligence.Assistant{
		Store:  intelligence.NewRedisContextStore(cacheRedis, utils.AIContextTTL, intelligence.MaxTurns),
		Logger: logger,
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := intelligence.NewGeminiClient(rootCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("main: chat assistant disabled", zap.Error(err))
		} else {
			defer gemini.Close()
			assistant.Model = gemini
		}
	}

	// services.
	gateway, err := payment.NewGateway(cfg, logger)
	if err != nil {
		logger.Fatal("main: payment gateway", zap.Error(err))
	}
	tokens := utils.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour)
	svc := handlers.Services{
		Users: &user.DefaultUserService{
			Repo: users, Tokens: tokens, Storage: images, Notifier: dispatcher, Logger: logger,
		},
		Requirements: &requirement.DefaultRequirementService{
			Requirements: repos.requirements, Bids: repos.bids, Bookings: bookings, Users: users,
			Tx: tx, Notifier: dispatcher, Reminders: queue, Logger: logger,
		},
		Bids: &bid.DefaultBidService{
			Bids: repos.bids, Requirements: repos.requirements, Bookings: bookings,
			Tx: tx, Notifier: dispatcher, Reminders: queue, Logger: logger,
		},
		Bookings: &booking.DefaultBookingService{
			Bookings: bookings, Requirements: repos.requirements, Catalogs: booking.NewCatalogs(tractors, workers),
			Tx: tx, Notifier: dispatcher, Reminders: queue, Logger: logger,
		},
		Payments: &payment.DefaultPaymentService{
			Bookings: bookings, Transactions: repos.transactions, Gateway: gateway,
			Currency: cfg.PaymentCurrency, Tx: tx, Notifier: dispatcher, Logger: logger,
		},
		Notifications: dispatcher,
		Listings: &listing.DefaultListingService{
			Tractors: tractors, Workers: workers, Users: users, Storage: images, Logger: logger,
		},
		Reviews: &review.DefaultReviewService{
			Reviews: repos.reviews, Bookings: bookings, Users: users, Tractors: tractors, Workers: workers,
			Notifier: dispatcher, Logger: logger,
		},
		Assistant: assistant,
	}

	health := utils.NewHealthMonitor([]*redis.Client{cacheRedis, authRedis}, mongoClient)
	health.Start(rootCtx, 30*time.Second)

	roles := &middleware.RoleResolver{Cache: authRedis, Users: users, Logger: logger}
	handlerBundle := handlers.NewHandlerBundle(svc,
		middleware.Auth(tokens, roles), middleware.OptionalAuth(tokens, roles),
		tokens, hub, health)

	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimit(cfg.MaxRequestsPerMin, logger))
	routes.RegisterRoutes(router, handlerBundle, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}
	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("gateway", gateway.Name()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	dispatcher.Close()
	logger.Info("main: server stopped gracefully")
}

// repositories holds the Mongo-backed stores; constructing them also ensures their indexes.
type repositories struct {
	users         userRepoPkg.UserRepository
	requirements  requirementRepo.RequirementRepository
	bids          bidRepo.BidRepository
	bookings      bookingRepo.BookingRepository
	transactions  transactionRepo.TransactionRepository
	notifications notificationRepo.NotificationRepository
	tractors      listingRepo.TractorRepository
	workers       listingRepo.WorkerRepository
	reviews       reviewRepo.ReviewRepository
}

func openRepositories(db *mongo.Database) (*repositories, error) {
	var (
		r   repositories
		err error
	)
	if r.users, err = userRepoPkg.NewMongoUserRepo(db); err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	if r.requirements, err = requirementRepo.NewMongoRequirementRepo(db); err != nil {
		return nil, fmt.Errorf("requirements: %w", err)
	}
	if r.bids, err = bidRepo.NewMongoBidRepo(db); err != nil {
		return nil, fmt.Errorf("bids: %w", err)
	}
	if r.bookings, err = bookingRepo.NewMongoBookingRepo(db); err != nil {
		return nil, fmt.Errorf("bookings: %w", err)
	}
	if r.transactions, err = transactionRepo.NewMongoTransactionRepo(db); err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	if r.notifications, err = notificationRepo.NewMongoNotificationRepo(db); err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	if r.tractors, err = listingRepo.NewMongoTractorRepo(db); err != nil {
		return nil, fmt.Errorf("tractor services: %w", err)
	}
	if r.workers, err = listingRepo.NewMongoWorkerRepo(db); err != nil {
		return nil, fmt.Errorf("worker services: %w", err)
	}
	if r.reviews, err = reviewRepo.NewMongoReviewRepo(db); err != nil {
		return nil, fmt.Errorf("reviews: %w", err)
	}
	return &r, nil
}
