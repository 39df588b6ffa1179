package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodcart_back_end/internal/cache"
	"foodcart_back_end/internal/config"
	"foodcart_back_end/internal/database"
	"foodcart_back_end/internal/events"
	"foodcart_back_end/internal/handlers"
	"foodcart_back_end/internal/history"
	"foodcart_back_end/internal/mailer"
	"foodcart_back_end/internal/payment"
	"foodcart_back_end/internal/queue"
	"foodcart_back_end/internal/repository"
	"foodcart_back_end/internal/routes"
	"foodcart_back_end/internal/search"
	"foodcart_back_end/internal/services"
	"foodcart_back_end/internal/storage"
	"foodcart_back_end/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting foodcart API server")
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB
	mongoStore, err := database.NewMongo(database.MongoConfig{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := mongoStore.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("failed to close MongoDB client")
		}
	}()
	db := mongoStore.Database()

	if migrated, err := mongoStore.MigrateLegacyOrderField(ctx); err != nil {
		logger.Warn().Err(err).Msg("legacy order migration failed")
	} else if migrated > 0 {
		logger.Info().Int64("orders", migrated).Msg("migrated legacy restaurant field on orders")
	}

	orderRepo := repository.NewOrderRepository(db, logger)
	restaurantRepo := repository.NewRestaurantRepository(db, logger)
	menuRepo := repository.NewMenuRepository(db, logger)
	userRepo := repository.NewUserRepository(db, logger)
	requestRepo := repository.NewOwnerRequestRepository(db, logger)

	// The unique index on restaurants.user cannot be built over duplicates.
	if removed, err := restaurantRepo.RemoveDuplicates(ctx); err != nil {
		logger.Warn().Err(err).Msg("duplicate restaurant cleanup failed")
	} else if removed > 0 {
		logger.Info().Int64("removed", removed).Msg("removed duplicate restaurants")
	}
	if err := mongoStore.CreateIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	// Redis
	redisClient, err := database.NewRedis(ctx, database.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisClient.Close()

	images := newImageStore(ctx, cfg.MinIO, logger)
	index := newSearchIndex(cfg.Elastic, logger)
	historyStore, closeHistory := newHistoryStore(ctx, cfg.Scylla, db, logger)
	defer closeHistory()

	broker, err := newBroker(cfg.RabbitMQ, logger)
	if err != nil {
		return err
	}
	defer broker.Close()

	var paymentBackend payment.Backend
	switch cfg.Payment.Backend {
	case "mock":
		logger.Warn().Msg("using mock payment backend")
		paymentBackend = payment.NewMock(logger)
	default:
		paymentBackend = payment.NewStripe(payment.StripeConfig{
			SecretKey:     cfg.Payment.SecretKey,
			WebhookSecret: cfg.Payment.WebhookSecret,
		}, logger)
	}

	var sender mailer.Sender
	if cfg.SMTP.Host != "" {
		sender = mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}, logger)
	} else {
		logger.Warn().Msg("SMTP_HOST not set, emails are only logged")
		sender = mailer.NewLogSender(logger)
	}
	mail := mailer.New(sender)

	// Order events
	liveFeed := events.NewLiveFeed(redisClient)
	publisher := events.NewPublisher(broker, logger)
	eventWorker := events.NewWorker(broker, historyStore, mail, liveFeed, logger)
	if err := eventWorker.Start(); err != nil {
		return fmt.Errorf("failed to start order event worker: %w", err)
	}
	defer eventWorker.Stop()

	// Services
	orderService := services.NewOrderService(services.OrderDeps{
		Orders:         orderRepo,
		Restaurants:    restaurantRepo,
		Menus:          menuRepo,
		Payments:       paymentBackend,
		Intents:        cache.NewIntentCache(redisClient, logger),
		Events:         publisher,
		History:        historyStore,
		Currency:       cfg.Payment.Currency,
		FrontendURL:    cfg.Server.FrontendURL,
		PaymentTimeout: services.DefaultPaymentTimeout,
	}, logger)
	restaurantService := services.NewRestaurantService(restaurantRepo, menuRepo, userRepo, images, index, logger)
	menuService := services.NewMenuService(menuRepo, restaurantRepo, userRepo, images, logger)
	userService := services.NewUserService(userRepo, requestRepo)
	ownerRequestService := services.NewOwnerRequestService(services.OwnerRequestDeps{
		Requests: requestRepo,
		Users:    userRepo,
		Mailer:   mail,
		Cooldown: cache.NewCooldown(redisClient, "otp-resend", services.OTPResendCooldown),
	}, logger)

	sweeper := worker.NewSweeper(orderService, cfg.Orders.PendingTTL, cfg.Orders.SweepInterval, logger)
	sweeper.Start()
	defer sweeper.Stop()

	// HTTP
	router := routes.New(routes.Handlers{
		Orders:        handlers.NewOrderHandler(orderService, logger),
		Webhook:       handlers.NewWebhookHandler(paymentBackend, orderService, logger),
		Restaurants:   handlers.NewRestaurantHandler(restaurantService, logger),
		Menus:         handlers.NewMenuHandler(menuService, logger),
		OwnerRequests: handlers.NewOwnerRequestHandler(ownerRequestService, logger),
		Users:         handlers.NewUserHandler(userService, logger),
		Live:          handlers.NewLiveHandler(liveFeed, restaurantService, []string{cfg.Server.FrontendURL}, logger),
		Health: handlers.NewHealthHandler(map[string]handlers.Check{
			"mongo": mongoStore.Ping,
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	}, routes.Config{
		JWTSecret:      []byte(cfg.Auth.JWTSecret),
		AllowedOrigins: []string{cfg.Server.FrontendURL},
		Redis:          redisClient,
	}, logger)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Server.Port).Str("payment_backend", paymentBackend.Name()).Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newImageStore uses MinIO when configured and falls back to inline data URLs.
func newImageStore(ctx context.Context, cfg config.MinIOConfig, logger zerolog.Logger) storage.ImageStore {
	if cfg.Endpoint == "" {
		logger.Warn().Msg("MINIO_ENDPOINT not set, images are stored inline")
		return storage.DataURLStore{}
	}

	client, err := database.NewMinIO(ctx, database.MinIOConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		Bucket:    cfg.Bucket,
		UseSSL:    cfg.UseSSL,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise MinIO, falling back to inline images")
		return storage.DataURLStore{}
	}
	return storage.NewMinIOStore(client, cfg.Bucket, cfg.Endpoint, cfg.UseSSL, logger)
}

// newSearchIndex returns nil when Elasticsearch is not configured; search
// then runs against MongoDB.
func newSearchIndex(cfg config.ElasticConfig, logger zerolog.Logger) search.RestaurantIndex {
	if cfg.URL == "" {
		return nil
	}

	client, err := database.NewElastic(database.ElasticConfig{
		URL:      cfg.URL,
		User:     cfg.User,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to initialise Elasticsearch, searching MongoDB only")
		return nil
	}
	return search.NewElasticIndex(client, cfg.Index, logger)
}

func newHistoryStore(ctx context.Context, cfg config.ScyllaConfig, db *mongo.Database, logger zerolog.Logger) (history.Store, func()) {
	mongoHistory := history.NewMongoStore(db)
	if len(cfg.Hosts) == 0 {
		return mongoHistory, func() {}
	}

	session, err := database.NewScylla(database.ScyllaConfig{
		Hosts:    cfg.Hosts,
		Keyspace: cfg.Keyspace,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to connect to ScyllaDB, keeping order history in MongoDB")
		return mongoHistory, func() {}
	}

	store := history.NewScyllaStore(session)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to create order history table, keeping order history in MongoDB")
		session.Close()
		return mongoHistory, func() {}
	}
	return store, session.Close
}

func newBroker(cfg config.RabbitMQConfig, logger zerolog.Logger) (queue.Broker, error) {
	if cfg.URL == "" {
		logger.Warn().Msg("RABBITMQ_URL not set, order events are dispatched in process")
		return queue.NewLocalBroker(time.Second, logger), nil
	}

	broker, err := queue.NewRabbitMQBroker(queue.Config{
		URL:           cfg.URL,
		MaxRetries:    queue.DefaultMaxRetries,
		RetryDelay:    time.Second,
		PrefetchCount: cfg.PrefetchCount,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return broker, nil
}
