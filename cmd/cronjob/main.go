package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"hr-onboarding-backend/internal/app"
	"hr-onboarding-backend/internal/config"
	"hr-onboarding-backend/internal/jobs"
	"hr-onboarding-backend/internal/logger"
	"hr-onboarding-backend/internal/scheduler"
	"hr-onboarding-backend/internal/telemetry"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "cronjob",
		Usage: "Scheduled visa reminders, expiry warnings and invitation cleanup",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/config.dev.yaml",
				Usage:   "Path to configuration file",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
		},
		Action: runScheduler,
		Commands: []*cli.Command{
			{
				Name:      "run-once",
				Usage:     "Run a specific job once and exit",
				ArgsUsage: "<job>",
				Description: "Available jobs: " + strings.Join([]string{
					jobs.JobSendVisaReminders,
					jobs.JobWarnExpiringAuthorizations,
					jobs.JobPurgeRegistrationTokens,
				}, ", "),
				Action: runOnce,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, starts tracing and builds the job runner.
// The returned cleanup must run before exit.
func setup(ctx context.Context, cmd *cli.Command) (*jobs.JobRunner, func(), error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting HR onboarding cronjob runner...", "log_level", cfg.Log.Level)

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.Build(ctx, cfg)
	if err != nil {
		shutdownTracing(context.Background())
		return nil, nil, err
	}

	runner := jobs.NewJobRunner(&jobs.Services{
		VisaOverview: a.VisaOverview,
		User:         a.User,
		Invitation:   a.Invitation,
		Notifier:     a.Dispatcher,
	}, cfg)

	cleanup := func() {
		a.Close()
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error("Failed to flush traces", "error", err)
		}
	}
	return runner, cleanup, nil
}

func runScheduler(ctx context.Context, cmd *cli.Command) error {
	runner, cleanup, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cronScheduler, err := scheduler.NewScheduler(runner)
	if err != nil {
		return err
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
	return nil
}

func runOnce(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("job name is required")
	}

	runner, cleanup, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Running job once", "job", name)
	if err := runner.RunOnce(ctx, name); err != nil {
		return fmt.Errorf("%w (available: %s)", err, strings.Join(runner.Names(), ", "))
	}
	return nil
}
