package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kinderstep-backend/config"
	"kinderstep-backend/internal/delivery/http/middleware"
	v1 "kinderstep-backend/internal/delivery/http/v1"
	"kinderstep-backend/internal/infrastructure/cache"
	pgrepo "kinderstep-backend/internal/repository/pg"
	"kinderstep-backend/internal/usecase"
	"kinderstep-backend/pkg/logger"
	"kinderstep-backend/pkg/storage"
	"kinderstep-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

const serviceName = "kinderstep-api"

var version = "dev"

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	// Initialize Logger
	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	// Initialize Database with pgx
	pgxPool, err := pgrepo.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pgxPool.Close()
	log.Info().Msg("Successfully connected to PostgreSQL via pgx")

	if cfg.AutoMigrate {
		if err := pgrepo.Migrate(context.Background(), pgxPool); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply schema")
		}
		log.Info().Msg("Database schema is up to date")
	}

	// Initialize Repositories
	userRepo := pgrepo.NewUserRepository(pgxPool)
	productRepo := pgrepo.NewProductRepository(pgxPool)
	orderRepo := pgrepo.NewOrderRepository(pgxPool)
	cartRepo := pgrepo.NewCartRepository(pgxPool)
	favoriteRepo := pgrepo.NewFavoriteRepository(pgxPool)
	reviewRepo := pgrepo.NewReviewRepository(pgxPool)
	idemRepo := pgrepo.NewIdempotencyRepository(pgxPool)
	txManager := pgrepo.NewTransactionManager(pgxPool)

	// Initialize Cache (In-Memory)
	memCache := cache.NewMemoryCache(cfg.CacheCatalogTTL, 2*cfg.CacheCatalogTTL)

	// --- Storage Module (S3 compatible) ---
	// Without a bucket the API still runs; image uploads answer 503.
	var objectStorage storage.ObjectStorage
	if cfg.S3Bucket != "" {
		s3Storage, err := storage.NewS3Storage(context.Background(), storage.S3Options{
			Endpoint:      cfg.S3Endpoint,
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			PublicURL:     cfg.S3PublicURL,
			UploadTimeout: cfg.UploadTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		objectStorage = s3Storage
	}

	// --- Modules Initialization ---
	authUC := usecase.NewAuthUsecase(userRepo, cfg.TokenExpiry, cfg.BcryptCost)
	userUC := usecase.NewUserUsecase(userRepo, authUC)
	catalogUC := usecase.NewCatalogUsecase(productRepo, memCache, objectStorage, cfg)
	reviewUC := usecase.NewReviewUsecase(reviewRepo, productRepo, orderRepo)
	favoriteUC := usecase.NewFavoriteUsecase(favoriteRepo, productRepo, idemRepo, txManager)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, idemRepo, txManager, cfg)
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, cartRepo, txManager, catalogUC)
	reportUC := usecase.NewReportUsecase(productRepo, orderRepo, catalogUC)
	sitemapUC := usecase.NewSitemapUsecase(productRepo, cfg.FrontendURL, memCache, cfg)

	// Set up Router
	mux := http.NewServeMux()
	v1.RegisterRoutes(mux, v1.Handlers{
		Auth:         v1.NewAuthHandler(authUC, cfg.Env == "production"),
		User:         v1.NewUserHandler(userUC),
		Catalog:      v1.NewCatalogHandler(catalogUC, reviewUC),
		AdminCatalog: v1.NewAdminCatalogHandler(catalogUC),
		Favorite:     v1.NewFavoriteHandler(favoriteUC),
		Cart:         v1.NewCartHandler(cartUC),
		Order:        v1.NewOrderHandler(orderUC),
		AdminOrder:   v1.NewAdminOrderHandler(orderUC),
		AdminReview:  v1.NewAdminReviewHandler(reviewUC),
		Report:       v1.NewReportHandler(reportUC, cfg.MaxUploadSizeMB),
		Upload:       v1.NewUploadHandler(objectStorage, cfg.MaxUploadSizeMB),
		Sitemap:      v1.NewSitemapHandler(sitemapUC),
	})

	// Health Check
	healthHandler := healthCheck(pgxPool)
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// Initialize Rate Limiter with lifecycle management
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		rate.Limit(cfg.RateLimitRPS),
		cfg.RateLimitBurst,
		time.Minute,   // cleanup period
		3*time.Minute, // client TTL
	)

	// Apply CORS (with config injection), Request Logger, Rate Limit, and Gzip
	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	logger.ServiceStart(serviceName, version, cfg.Port)

	// Wait for interrupt signal via channel
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.ServiceStop(serviceName)
}

func healthCheck(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "db": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "connected"})
	}
}
