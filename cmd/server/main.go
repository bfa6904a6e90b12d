// @title           Incubation Backend API
// @version         1.0.0
// @description     Backend API for the incubation marketplace. Startups publish projects and funding rounds, freelancers submit proposals and track milestones, investors decide funding and mentors run sessions. Notifications are pushed via Supabase Realtime.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"incubation-backend/docs"
	"incubation-backend/internal/config"
	"incubation-backend/internal/database"
	"incubation-backend/internal/handlers"
	"incubation-backend/internal/logging"
	"incubation-backend/internal/memstore"
	"incubation-backend/internal/supabase"
	"incubation-backend/internal/workflow"
)

const Version = "1.0.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "incubation-backend",
		Short:         "Incubation marketplace API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configPath != "" {
				os.Setenv("INCUBATION_CONFIG", configPath)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (overrides INCUBATION_CONFIG)")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("incubation-backend version %s\n", Version)
		},
	})

	return cmd
}

func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.Environment)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func migrate(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required to run migrations")
	}
	return runMigrations(ctx, cfg.DatabaseURL, logger)
}

func runMigrations(ctx context.Context, dbURL string, logger *slog.Logger) error {
	migrator, err := database.NewMigrator(dbURL, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize migrator: %w", err)
	}
	defer migrator.Close()

	applied, err := migrator.Run(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("migrations completed", "applied", len(applied))
	return nil
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	var (
		store workflow.Store
		db    handlers.Pinger
	)
	if cfg.DatabaseURL != "" {
		if err := runMigrations(ctx, cfg.DatabaseURL, logger); err != nil {
			return err
		}
		dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize database client: %w", err)
		}
		defer dbClient.Close()
		store, db = dbClient, dbClient
	} else {
		logger.Warn("DATABASE_URL not set, using the in-memory store; data is lost on restart")
		store = memstore.New()
	}

	opts := []workflow.Option{
		workflow.WithLogger(logger),
		workflow.WithStrictNotifications(cfg.StrictNotifications),
	}
	if cfg.MediaEnabled() {
		supabaseClient, err := supabase.NewClient(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize Supabase client: %w", err)
		}
		opts = append(opts, workflow.WithMedia(supabase.NewStorageClient(supabaseClient)))
		if cfg.RealtimeEnabled {
			opts = append(opts, workflow.WithEvents(supabase.NewRealtimeClient(supabaseClient)))
		}
	} else {
		logger.Warn("Supabase not configured, uploads and realtime events are disabled")
	}
	service := workflow.NewService(store, opts...)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, service, db, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
