package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	config "github.com/halknowsaguy/api/configs"
	"github.com/halknowsaguy/api/internal/api"
	"github.com/halknowsaguy/api/internal/api/handlers"
	"github.com/halknowsaguy/api/internal/api/middleware"
	"github.com/halknowsaguy/api/internal/migrations"
	"github.com/halknowsaguy/api/internal/repository"
	"github.com/halknowsaguy/api/internal/service"
	"github.com/halknowsaguy/api/pkg/logger"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "halknowsaguy",
		Short: "Hal Knows A Guy API",
		Long:  `Backend for the Hal Knows A Guy community feed: admin login, Twitter connection and post import.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				fmt.Fprintln(os.Stderr, "Warning: no .env file loaded:", err)
			}
		},
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending migrations before serving")

	return cmd
}

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Run all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(db *sql.DB) error {
					if err := migrations.Up(cmd.Context(), db); err != nil {
						return fmt.Errorf("apply migrations: %w", err)
					}
					slog.Info("migrations applied")
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show migration status",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDB(func(db *sql.DB) error {
					return migrations.Status(cmd.Context(), db)
				})
			},
		},
	)

	return cmd
}

func withDB(fn func(db *sql.DB) error) error {
	cfg := config.LoadConfig()
	logger.Init(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	return fn(db)
}

func openDB(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}
	return db, nil
}

func runServer(ctx context.Context, migrate bool) error {
	cfg := config.LoadConfig()
	logger.Init(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if len(cfg.SecretKey) != 32 {
		return fmt.Errorf("SECRET_KEY must be 32 bytes, got %d", len(cfg.SecretKey))
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if migrate {
		if err := migrations.Up(ctx, db); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	states, closeStates, err := newStateRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStates()

	validate := validator.New()

	socialAccountRepo := repository.NewSocialAccountRepository(db)
	feedItemRepo := repository.NewFeedItemRepository(db)

	authService := service.NewAuthService(*cfg)
	tokenService := service.NewTokenService(*cfg, socialAccountRepo, states)
	twitterService := service.NewTwitterService(*cfg, tokenService, socialAccountRepo)
	importService := service.NewImportService(feedItemRepo, validate)
	statusService := service.NewStatusService(socialAccountRepo, feedItemRepo)
	feedService := service.NewFeedService(feedItemRepo)

	app := api.NewApp(*cfg)
	api.RegisterRoutes(app, api.Routes{
		Auth:   handlers.NewAuthHandler(*cfg, authService, validate),
		Social: handlers.NewSocialHandler(tokenService, twitterService, importService, statusService, *cfg),
		Feed:   handlers.NewFeedHandler(feedService),
		Admin:  middleware.NewAuthMiddleware(*cfg, authService),
		DB:     db,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	slog.Info("server is running", "port", cfg.Port, "env", cfg.Environment)

	return gracefulShutdown(app, errCh)
}

// newStateRepository uses redis when REDIS_URI is set and falls back to an
// in-process ledger otherwise.
func newStateRepository(ctx context.Context, cfg *config.Config) (repository.StateRepository, func(), error) {
	if cfg.RedisURI == "" {
		slog.Warn("REDIS_URI not set, oauth states are tracked in memory")
		return repository.NewMemoryStateRepository(), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURI)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URI: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("redis is unreachable: %w", err)
	}

	return repository.NewRedisStateRepository(client, "oauth:twitter:state:"), func() {
		if err := client.Close(); err != nil {
			slog.Error("failed to close redis", "error", err)
		}
	}, nil
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v\n", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, errCh <-chan error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	slog.Info("server shutdown complete")
	return nil
}
