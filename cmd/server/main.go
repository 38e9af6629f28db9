package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "hr-onboarding-backend/internal/api/grpc"
	httpapi "hr-onboarding-backend/internal/api/http"
	"hr-onboarding-backend/internal/app"
	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/repository/postgres"
	"hr-onboarding-backend/internal/telemetry"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	cmd := &cli.Command{
		Name:  "server",
		Usage: "HR onboarding API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/config.dev.yaml",
				Usage:   "Path to configuration file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Manage database migrations",
				Commands: []*cli.Command{
					{Name: "up", Usage: "Apply all pending migrations", Action: migrateAction(postgres.Migrate)},
					{Name: "down", Usage: "Roll back the last migration", Action: migrateAction(postgres.MigrateDown)},
					{Name: "status", Usage: "Show migration status", Action: migrateAction(postgres.MigrationStatus)},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runServer(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger.Info("Starting HR onboarding backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	router := httpapi.NewRouter(httpapi.Services{
		Auth:          a.Auth,
		User:          a.User,
		Onboarding:    a.Onboarding,
		Document:      a.Document,
		VisaOverview:  a.VisaOverview,
		Notification:  a.Notification,
		Invitation:    a.Invitation,
		HealthChecker: a.DB,
	}, a.Tokens, httpapi.RouterOptions{
		MockStorage:  a.MockStorage,
		MaxFileBytes: cfg.Storage.MaxFileSize * 1024 * 1024,
	})
	httpServer := httpapi.NewServer(cfg.GetServerAddress(), router)

	var healthServer *grpcapi.HealthServer
	if cfg.GRPC.Enabled {
		healthServer, err = grpcapi.NewHealthServer(cfg.GetGRPCAddress(), a.DB, 0)
		if err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if healthServer != nil {
		g.Go(func() error {
			return healthServer.Serve(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}
	logger.Info("Server stopped. Goodbye!")
	return nil
}

func migrateAction(run func(db *sql.DB) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		db, err := postgres.Open(ctx, cfg.Database, cfg.GetDatabaseConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()
		return run(db)
	}
}
