package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"benefits-points-service/internal/app"
	"benefits-points-service/internal/catalog"
	"benefits-points-service/internal/config"
	"benefits-points-service/internal/domain"
	"benefits-points-service/internal/infra/memory"
	pginfra "benefits-points-service/internal/infra/postgres"
	redisinfra "benefits-points-service/internal/infra/redis"
	"benefits-points-service/internal/middleware"
	transport "benefits-points-service/internal/transport/http"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the points server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.CatalogLoader = catalog.Default()
	if pool != nil {
		loader = pginfra.NewCatalogLoader(pool)
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var missionCatalog app.MissionCatalog
	if redisClient != nil {
		missionCatalog = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		missionCatalog = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var store app.UserStore
	switch {
	case pool != nil:
		store = pginfra.NewUserStore(pool)
	case redisClient != nil:
		store = redisinfra.NewUserStore(redisClient)
	default:
		store = memory.NewUserStore()
	}

	leaderboardSvc := app.NewLeaderboardService(store)
	notifier := app.NewLeaderboardNotifier(func(ctx context.Context) (domain.LeaderboardView, error) {
		return leaderboardSvc.Snapshot(ctx, 10)
	})

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		secret = os.Getenv("JWT_SECRET")
	}
	if secret == "" {
		log.Println("jwt secret not configured, using insecure development default")
		secret = "insecure-dev-secret"
	}
	tokenTTL := config.TTLDuration(cfg.Auth.TokenTTL, time.Hour)

	authSvc := app.NewAuthService(store, []byte(secret), tokenTTL)
	ledgerSvc := app.NewLedgerService(store, missionCatalog, notifier)
	chestSvc := app.NewChestService(store, missionCatalog, notifier)
	profileSvc := app.NewProfileService(store, ledgerSvc)

	handler := transport.NewHandler(authSvc, profileSvc, ledgerSvc, chestSvc, leaderboardSvc, missionCatalog)
	wsHandler := transport.NewWSHandler(notifier)

	middleware.RegisterMetrics()

	rps := cfg.RateLimit.RPS
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 20
	}
	limiter := middleware.NewRateLimiter(rate.Limit(rps), burst)
	stopCleanup := make(chan struct{})
	go limiter.CleanupLoop(3*time.Minute, stopCleanup)
	defer close(stopCleanup)

	router := mux.NewRouter()
	router.Use(middleware.Monitor)
	router.Use(limiter.Middleware)
	handler.Register(router)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	router.HandleFunc("/ws/leaderboard", wsHandler.ServeWS)
	router.Handle("/metrics", promhttp.Handler())

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      cors(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting points service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
