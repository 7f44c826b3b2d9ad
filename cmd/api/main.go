package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmuriuki/agrimarket-backend/api/routes"
	"github.com/dmuriuki/agrimarket-backend/internal/articles"
	"github.com/dmuriuki/agrimarket-backend/internal/auth"
	"github.com/dmuriuki/agrimarket-backend/internal/inventory"
	"github.com/dmuriuki/agrimarket-backend/internal/media"
	"github.com/dmuriuki/agrimarket-backend/internal/messages"
	"github.com/dmuriuki/agrimarket-backend/internal/notifications"
	"github.com/dmuriuki/agrimarket-backend/internal/orders"
	"github.com/dmuriuki/agrimarket-backend/internal/products"
	"github.com/dmuriuki/agrimarket-backend/internal/reviews"
	"github.com/dmuriuki/agrimarket-backend/internal/users"
	"github.com/dmuriuki/agrimarket-backend/pkg/config"
	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	"github.com/dmuriuki/agrimarket-backend/pkg/logger"
	"github.com/dmuriuki/agrimarket-backend/pkg/metrics"
	"github.com/dmuriuki/agrimarket-backend/pkg/migrate"
	"github.com/dmuriuki/agrimarket-backend/pkg/outbox"
	"github.com/dmuriuki/agrimarket-backend/pkg/redis"
	"github.com/dmuriuki/agrimarket-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap gcs", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	marketMetrics := metrics.NewMarketplaceMetrics(registry)

	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	usersRepo := users.NewRepository(conn)
	productsRepo := products.NewRepository(conn)
	ordersRepo := orders.NewRepository(conn)
	notificationsRepo := notifications.NewRepository(conn)

	productService, err := products.NewService(productsRepo, dbClient, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	inventoryGuard, err := inventory.NewService(productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory guard", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:          ordersRepo,
		Products:      productsRepo,
		Guard:         inventoryGuard,
		Notifications: notificationsRepo,
		Tx:            dbClient,
		Outbox:        outboxService,
		Metrics:       marketMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo:          reviews.NewRepository(conn),
		Orders:        ordersRepo,
		Products:      productsRepo,
		Users:         usersRepo,
		Notifications: notificationsRepo,
		Tx:            dbClient,
		Outbox:        outboxService,
		Metrics:       marketMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	messageService, err := messages.NewService(messages.ServiceParams{
		Repo:          messages.NewRepository(conn),
		Users:         usersRepo,
		Notifications: notificationsRepo,
		Tx:            dbClient,
		Outbox:        outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create message service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Repo:   media.NewRepository(conn),
		Signer: gcsClient,
		Config: cfg.GCS,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create media service", err)
		os.Exit(1)
	}

	articleService, err := articles.NewService(articles.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create article service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  usersRepo,
		Denylist:  redisClient,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Outbox:         outboxService,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			GCS:             gcsClient,
			AuthService:     authService,
			RegisterService: registerService,
			Products:        productService,
			Orders:          orderService,
			Reviews:         reviewService,
			Notifications:   notificationService,
			Messages:        messageService,
			Media:           mediaService,
			Articles:        articleService,
			HTTPMetrics:     httpMetrics,
			Registry:        registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
