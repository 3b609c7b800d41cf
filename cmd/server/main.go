package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/lighthouse/backend/internal/config"
	"github.com/lighthouse/backend/internal/core/ports"
	"github.com/lighthouse/backend/internal/core/services"
	"github.com/lighthouse/backend/internal/infrastructure/db"
	"github.com/lighthouse/backend/internal/infrastructure/logger"
	"github.com/lighthouse/backend/internal/infrastructure/metrics"
	"github.com/lighthouse/backend/internal/infrastructure/queue"
	transporthttp "github.com/lighthouse/backend/internal/transport/http"
	httpmw "github.com/lighthouse/backend/internal/transport/http/middleware"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "arl-server",
	Short: "ARL asset reconnaissance control plane",
	Long:  "Admits, tracks and queries asset reconnaissance tasks dispatched to scan workers.",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		database, err := db.NewPostgresConnection(cfg.Database, log)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close(database)

		if err := db.RunMigrations(database); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database migrations completed")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

func serve() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	database, err := db.NewPostgresConnection(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("database connection established")

	if err := db.RunMigrations(database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")

	recorder := metrics.New(prometheus.DefaultRegisterer)

	workQueue, err := newWorkQueue(cfg, log, recorder)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ErrorHandler:          globalErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))

	allowedOrigins := "http://localhost:3000"
	if len(cfg.Auth.AllowedOrigins) > 0 {
		allowedOrigins = strings.Join(cfg.Auth.AllowedOrigins, ",")
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, Token, X-Admin-Token, " + cfg.Features.RequestIDHeader,
		AllowMethods: "GET, POST, HEAD, PUT, DELETE",
	}))

	app.Use(httpmw.RequestID(cfg.Features.RequestIDHeader))

	var accessLog *logger.Logger
	if cfg.Features.EnableRequestLogging {
		accessLog = log
	}
	app.Use(httpmw.AccessLog(accessLog, recorder))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	transporthttp.SetupRoutes(app, transporthttp.RouterConfig{
		DB:      database,
		Logger:  log,
		Config:  cfg,
		Queue:   workQueue,
		Metrics: recorder,
	})

	addr := cfg.Server.Address()
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	log.Infof("server started on %s", addr)

	gracefulShutdown(app, database, workQueue, log)
	return nil
}

func newWorkQueue(cfg *config.Config, log *logger.Logger, recorder *metrics.Recorder) (ports.WorkQueue, error) {
	switch cfg.Queue.Driver {
	case "memory":
		log.Warn("using in-process memory queue; jobs never reach a worker")
		return queue.NewMemoryQueue(log), nil
	case "kafka", "":
		producer, err := queue.ConnectWithRetry(cfg.Queue, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to kafka: %w", err)
		}
		return queue.NewKafkaQueue(queue.KafkaQueueConfig{
			Producer:     producer,
			TaskTopic:    cfg.Queue.TaskTopic,
			ControlTopic: cfg.Queue.ControlTopic,
			Logger:       log,
			Metrics:      recorder,
			RequestID:    services.RequestID,
		}), nil
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Queue.Driver)
	}
}

func globalErrorHandler(log *logger.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code < fiber.StatusInternalServerError {
			log.Warnw("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", c.Locals("request_id"),
			)
		} else {
			log.Errorw("request error",
				"method", c.Method(),
				"path", c.Path(),
				"status", code,
				"error", err.Error(),
				"request_id", c.Locals("request_id"),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"code":    code,
			"message": err.Error(),
		})
	}
}

func gracefulShutdown(app *fiber.App, database *gorm.DB, workQueue ports.WorkQueue, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	if err := workQueue.Close(); err != nil {
		log.Errorf("failed to close work queue: %v", err)
	}

	if err := db.Close(database); err != nil {
		log.Errorf("failed to close database connection: %v", err)
	}

	log.Info("server exited gracefully")
}
