package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/vpfs/backend/internal/delivery/http"
	"github.com/vpfs/backend/internal/domain"
	"github.com/vpfs/backend/internal/repository/postgres"
	"github.com/vpfs/backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Configuration
	cfg := loadConfig()

	mode, err := domain.ParseOperatingMode(cfg.Mode)
	if err != nil {
		log.Fatalf("Invalid MODE: %v", err)
	}

	authCodes, err := service.ParseAuthCodes(cfg.AuthCodes)
	if err != nil {
		log.Fatalf("Invalid AUTH_CODES: %v", err)
	}

	// Database connection (audit sink only; gameplay state is in memory)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: Could not connect to database: %v", err)
			pool = nil
		} else {
			defer pool.Close()
			log.Println("Connected to PostgreSQL")
		}
	}

	// Dependency Injection: Repositories
	var auditRepo domain.AuditRepository
	if pool != nil {
		auditRepo = postgres.NewPostgresRepository(pool)
	} else {
		log.Println("Running without audit persistence")
		auditRepo = postgres.NewMockRepository()
	}

	// Dependency Injection: Orchestration engine
	engine := service.NewEngine(service.Config{
		Mode:        mode,
		TargetFares: cfg.TargetFares,
		DistMin:     cfg.DistMin,
		DistMax:     cfg.DistMax,
		Merge:       domain.ParseMergeStrategy(cfg.MergeStrategy),
	}, auditRepo)
	auth := service.NewAuthenticator(mode, authCodes)
	driver := service.NewDriver(engine, cfg.TickInterval)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "VPFS v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, engine, auth, auditRepo)

	// Run HTTP server and periodic driver until interrupted
	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return driver.Run(gCtx)
	})
	g.Go(func() error {
		log.Printf("Server starting on :%s in %s mode", cfg.Port, mode)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Println("Shutting down server...")
		return app.ShutdownWithTimeout(5 * time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}

	// Drain background audit writes before exiting
	engine.WaitBackground()
	log.Println("Server exited gracefully")
}

type Config struct {
	Port          string
	Mode          string
	DatabaseURL   string
	AuthCodes     string
	MergeStrategy string
	TickInterval  time.Duration
	TargetFares   int
	DistMin       float64
	DistMax       float64
}

func loadConfig() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Mode:          getEnv("MODE", "LAB"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AuthCodes:     getEnv("AUTH_CODES", ""),
		MergeStrategy: getEnv("MERGE_STRATEGY", "average"),
		TickInterval:  getEnvDuration("TICK_INTERVAL_MS", 250*time.Millisecond),
		TargetFares:   getEnvInt("TARGET_FARES", domain.DefaultTargetFares),
		DistMin:       getEnvFloat("DIST_MIN", domain.DefaultDistMin),
		DistMax:       getEnvFloat("DIST_MAX", domain.DefaultDistMax),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid %s=%q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid %s=%q, using default %g", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if ms, err := strconv.Atoi(value); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
		log.Printf("Invalid %s=%q, using default %s", key, value, defaultValue)
	}
	return defaultValue
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
