package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/yukikurage/devboard-api/internal/config"
	"github.com/yukikurage/devboard-api/internal/constants"
	"github.com/yukikurage/devboard-api/internal/database"
	apierrors "github.com/yukikurage/devboard-api/internal/errors"
	"github.com/yukikurage/devboard-api/internal/ratelimit"
	"github.com/yukikurage/devboard-api/internal/repository"
	"github.com/yukikurage/devboard-api/internal/server"
	"github.com/yukikurage/devboard-api/internal/services"
	"github.com/yukikurage/devboard-api/pkg/logger"
	"gorm.io/gorm"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "devboard",
		Short:        "DevBoard task tracking API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, db, log, err := bootstrap()
				if err != nil {
					return err
				}
				defer closeDB(db, log)
				log.Info().Msg("migrations complete")
				return nil
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert sample users, tasks and comments into empty tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				_, db, log, err := bootstrap()
				if err != nil {
					return err
				}
				defer closeDB(db, log)
				return database.SeedSampleData(db, log)
			},
		},
	)

	return cmd
}

// bootstrap loads configuration, sets up logging and opens a migrated database.
func bootstrap() (*config.Config, *gorm.DB, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	db, err := database.Connect(cfg.Database, log)
	if err != nil {
		return nil, nil, log, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.Migrate(db, log); err != nil {
		closeDB(db, log)
		return nil, nil, log, fmt.Errorf("failed to run migrations: %w", err)
	}

	return cfg, db, log, nil
}

func serve(ctx context.Context) error {
	cfg, db, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	gin.SetMode(cfg.GinMode)
	if cfg.UsesDefaultSecret() && cfg.GinMode == gin.ReleaseMode {
		log.Warn().Msg("JWT_SECRET is the development default; set a real secret in production")
	}

	if cfg.SeedSampleData {
		if err := database.SeedSampleData(db, log); err != nil {
			return fmt.Errorf("failed to seed sample data: %w", err)
		}
	}

	if err := apierrors.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	policy, err := services.ParseUpdatePolicy(cfg.TaskUpdatePolicy)
	if err != nil {
		return err
	}

	// Initialize AI service
	var suggester services.TaskSuggester
	if cfg.OpenAIAPIKey != "" {
		suggester = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		log.Info().Msg("OPENAI_API_KEY not set; task suggestions disabled")
	}

	var limiter *ratelimit.Limiter
	if cfg.Redis.Enabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable; requests pass until it recovers")
		}
		limiter = ratelimit.New(rdb, log, constants.RateLimitKeyPrefix, cfg.RateLimit.LoginRate, cfg.RateLimit.LoginBurst)
	} else {
		log.Info().Msg("REDIS_ADDR not set; login throttling disabled")
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Expiration)
	deps := server.Deps{
		Users:    services.NewUserService(userRepo, tokens, log),
		Tasks:    services.NewTaskService(taskRepo, userRepo, commentRepo, policy, suggester, log),
		Comments: services.NewCommentService(commentRepo, taskRepo, userRepo, log),
		Admin:    services.NewAdminService(userRepo, taskRepo, commentRepo, log),
		Ping:     func() error { return database.Ping(db) },
		Log:      log,
	}
	if limiter != nil {
		deps.AuthLimiter = limiter
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func closeDB(db *gorm.DB, log zerolog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}
