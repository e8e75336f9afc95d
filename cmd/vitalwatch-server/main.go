package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vitalwatch/vitalwatch/internal/config"
	"github.com/vitalwatch/vitalwatch/internal/domain/analysis"
	"github.com/vitalwatch/vitalwatch/internal/domain/conditions"
	"github.com/vitalwatch/vitalwatch/internal/domain/medications"
	"github.com/vitalwatch/vitalwatch/internal/domain/patients"
	"github.com/vitalwatch/vitalwatch/internal/domain/readings"
	"github.com/vitalwatch/vitalwatch/internal/domain/vitals"
	"github.com/vitalwatch/vitalwatch/internal/platform/auth"
	"github.com/vitalwatch/vitalwatch/internal/platform/db"
	"github.com/vitalwatch/vitalwatch/internal/platform/ingest"
	"github.com/vitalwatch/vitalwatch/internal/platform/middleware"
	"github.com/vitalwatch/vitalwatch/internal/platform/monitor"
	"github.com/vitalwatch/vitalwatch/internal/platform/reporting"
	"github.com/vitalwatch/vitalwatch/internal/platform/webhook"
	"github.com/vitalwatch/vitalwatch/internal/platform/websocket"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "vitalwatch-server",
		Short: "VitalWatch health monitoring server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(monitorCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the VitalWatch API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func monitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run the periodic health status monitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.Migrate(ctx, pool)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	})

	// migrate status
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool).Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

// newLogger builds the process logger from the loaded config: console output
// in development, JSON elsewhere, level from LOG_LEVEL.
func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		logger = logger.Level(level)
	}
	return logger
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger = newLogger(cfg)

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	if cfg.AutoMigrate {
		applied, err := db.Migrate(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		if applied > 0 {
			logger.Info().Int("applied", applied).Msg("migrations applied")
		}
	}

	// Redis carries status-change events from the monitor to the live feed.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable; live status feed degraded until it recovers")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth guards the API group only. /healthz, /metrics and the websocket
	// handshake stay public.
	var authMW echo.MiddlewareFunc
	if cfg.ResolvedAuthMode() == "development" {
		authMW = auth.DevAuthMiddleware()
		logger.Warn().Msg("dev auth mode active; all requests are auto-authenticated")
	} else {
		authMW = auth.JWTMiddleware([]byte(cfg.JWTSecret))
	}
	apiV1 := e.Group("/api/v1", authMW, middleware.Audit(logger))

	// Classification engine shared by the API and the report generator.
	analyzer := vitals.NewAnalyzer(vitals.DefaultThresholds())

	// Patient registry
	patientsRepo := patients.NewRepoPG(pool)
	patientsSvc := patients.NewService(patientsRepo)
	patientsHandler := patients.NewHandler(patientsSvc)
	patientsHandler.RegisterRoutes(apiV1)

	// Vital readings
	readingsRepo := readings.NewRepoPG(pool)
	readingsSvc := readings.NewService(readingsRepo)
	readingsHandler := readings.NewHandler(readingsSvc)
	readingsHandler.RegisterRoutes(apiV1)

	// Medication courses
	medicationsRepo := medications.NewRepoPG(pool)
	medicationsSvc := medications.NewService(medicationsRepo)
	medicationsHandler := medications.NewHandler(medicationsSvc)
	medicationsHandler.RegisterRoutes(apiV1)

	// Medical conditions
	conditionsRepo := conditions.NewRepoPG(pool)
	conditionsSvc := conditions.NewService(conditionsRepo)
	conditionsHandler := conditions.NewHandler(conditionsSvc)
	conditionsHandler.RegisterRoutes(apiV1)

	// Status, statistics, trends and predictions
	analysisSvc := analysis.NewService(readingsRepo, analyzer)
	analysisHandler := analysis.NewHandler(analysisSvc)
	analysisHandler.RegisterRoutes(apiV1)

	// XLSX health report export and fleet measures
	reportGen := reporting.NewGenerator(readingsSvc, analysisSvc, analyzer)
	reportHandler := reporting.NewHandler(reportGen)
	reportHandler.RegisterRoutes(apiV1)
	measuresHandler := reporting.NewMeasuresHandler(pool)
	measuresHandler.RegisterRoutes(apiV1)

	// Live status feed: websocket hub fed by the monitor's Redis channel.
	hub := websocket.NewHub()
	wsHandler := websocket.NewWebSocketHandler(hub)
	wsHandler.RegisterRoutes(e.Group(""))

	serveCtx, serveCancel := context.WithCancel(context.Background())
	defer serveCancel()

	subscriber := websocket.NewSubscriber(rdb, hub, cfg.StatusChannel, logger)
	go subscriber.Start(serveCtx)

	// Device feed (optional, started when MQTT_ENABLED is set)
	if cfg.MQTTEnabled {
		ingestor := ingest.New(readingsSvc, ingest.Options{
			BrokerURL: cfg.MQTTBrokerURL,
			ClientID:  cfg.MQTTClientID,
			Topic:     cfg.MQTTTopic,
			QoS:       byte(cfg.MQTTQoS),
		}, logger)
		go func() {
			if err := ingestor.Start(serveCtx); err != nil {
				logger.Error().Err(err).Msg("mqtt ingest failed")
			}
		}()
	}

	// Health checks and metrics
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}

func runMonitor() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	logger = newLogger(cfg).With().Str("component", "monitor").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Redis publisher target
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable; status events will drop until it recovers")
	}

	// Webhook alerting (optional, endpoints from config)
	var alerts *webhook.Dispatcher
	if len(cfg.WebhookURLs) > 0 {
		alerts, err = webhook.NewDispatcher(cfg.WebhookURLs, cfg.WebhookSecret, cfg.WebhookTimeout, cfg.WebhookMaxRetries, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("invalid webhook configuration")
		}
	}

	analyzer := vitals.NewAnalyzer(vitals.DefaultThresholds())
	m := monitor.New(readings.NewRepoPG(pool), analyzer, rdb, cfg.StatusChannel, alerts, logger)
	m.Interval = cfg.MonitorInterval

	go serveMonitorHTTP(":"+cfg.MonitorMetricsPort, logger)

	m.Start(ctx)
	logger.Info().Msg("monitor stopped")
	return nil
}

// serveMonitorHTTP exposes /metrics and /healthz for the monitor process.
func serveMonitorHTTP(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	logger.Info().Str("addr", addr).Msg("monitor metrics listening")
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server failed")
	}
}
