package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Load .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/travel-agency-api/internal/config"     // Internal config loader
	"github.com/iliyamo/travel-agency-api/internal/currency"   // Exchange rate conversion
	"github.com/iliyamo/travel-agency-api/internal/database"   // MySQL connector
	"github.com/iliyamo/travel-agency-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/travel-agency-api/internal/middleware" // Cache and rate limit middleware
	"github.com/iliyamo/travel-agency-api/internal/pricing"    // Price resolver
	"github.com/iliyamo/travel-agency-api/internal/queue"      // RabbitMQ consumer
	"github.com/iliyamo/travel-agency-api/internal/repository" // Data access layer
	"github.com/iliyamo/travel-agency-api/internal/router"     // Route registration
)

func main() {
	// Load .env if present; real environments configure variables directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Repositories share the single *sql.DB pool.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	currencyRepo := repository.NewCurrencyRepo(db)
	paqueteRepo := repository.NewPaqueteRepo(db)
	salidaRepo := repository.NewSalidaRepo(db)
	reservaRepo := repository.NewReservaRepo(db)
	pasajeroRepo := repository.NewPasajeroRepo(db)
	comprobanteRepo := repository.NewComprobanteRepo(db)

	// The converter reads effective rates straight from the repository;
	// the resolver uses it to bring service prices into the departure
	// currency.
	converter := currency.NewConverter(currencyRepo)
	resolver := pricing.NewResolver(converter)

	authHandler := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	catalogHandler := handler.NewCatalogHandler(paqueteRepo, salidaRepo, resolver)
	currencyHandler := handler.NewCurrencyHandler(currencyRepo, converter)
	reservaHandler := handler.NewReservaHandler(reservaRepo, pasajeroRepo, paqueteRepo, salidaRepo, comprobanteRepo, resolver)
	comprobanteHandler := handler.NewComprobanteHandler(comprobanteRepo, reservaRepo, pasajeroRepo)

	e := echo.New() // Create Echo instance

	// Public catalog endpoints get the Redis response cache and the
	// token-bucket rate limiter; both degrade to pass-through when Redis
	// is unavailable.
	rdb := config.NewRedisClient()
	publicMW := []echo.MiddlewareFunc{
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	}

	router.RegisterRoutes(e) // Health check
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, catalogHandler, currencyHandler, publicMW...)
	router.RegisterStaff(e, reservaHandler, comprobanteHandler, catalogHandler, currencyHandler, cfg.JWTSecret)

	// Consume reservation lifecycle events in the background.  The
	// consumer reconnects with backoff on broker failures.
	go func() {
		if err := queue.StartReservaConsumer(); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
