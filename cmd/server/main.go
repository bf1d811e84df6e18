package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hydrocode-de/metacatalog-ingest/internal/formatter"
	"github.com/hydrocode-de/metacatalog-ingest/internal/handlers"
	"github.com/hydrocode-de/metacatalog-ingest/internal/ingest"
	"github.com/hydrocode-de/metacatalog-ingest/internal/services"
	"github.com/hydrocode-de/metacatalog-ingest/internal/storage"
)

func main() {
	// Setup logger
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("No .env file found, using environment variables")
	}

	if err := rootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metacatalog-ingest",
		Short: "Upload service for the metacatalog dataset catalog",
		Long: `metacatalog-ingest registers uploaded tabular files in a metacatalog database.

Each upload carries a metadata document; the service creates the catalog entry, its
associations and data source, and appends the rows to a table in the data schema.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(loadConfig())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(loadConfig())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Create the catalog tables and default records if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			return install(cmd.Context(), loadConfig())
		},
	})

	return cmd
}

func openCatalog(config *Config) (*storage.PostgresStorage, error) {
	log.Info().Msg("Initializing Postgres storage...")
	catalog, err := storage.NewPostgresStorage(
		config.DBHost,
		config.DBPort,
		config.DBUser,
		config.DBPassword,
		config.DBName,
		config.DBSSLMode,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres storage: %w", err)
	}
	log.Info().Msg("Postgres storage initialized")
	return catalog, nil
}

func install(ctx context.Context, config *Config) error {
	setLogLevel(config.LogLevel)

	catalog, err := openCatalog(config)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if ctx == nil {
		ctx = context.Background()
	}

	installed, err := catalog.IsInstalled(ctx)
	if err != nil {
		return err
	}
	if installed {
		log.Info().Msg("Catalog already installed, nothing to do")
		return nil
	}

	return catalog.Install(ctx, config.DataSchema)
}

func serve(config *Config) error {
	setLogLevel(config.LogLevel)

	log.Info().
		Str("host", config.Host).
		Str("port", config.Port).
		Msg("Starting metacatalog ingest service")

	catalog, err := openCatalog(config)
	if err != nil {
		return err
	}
	defer catalog.Close()

	var archive handlers.Archiver
	var minioStorage *storage.MinIOStorage
	if config.MinIOEndpoint != "" {
		log.Info().Msg("Initializing MinIO storage...")
		minioStorage, err = storage.NewMinIOStorage(
			config.MinIOEndpoint,
			config.MinIOAccessKey,
			config.MinIOSecretKey,
			config.MinIOBucket,
			config.MinIOUseSSL,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize MinIO storage: %w", err)
		}
		archive = minioStorage
	} else {
		log.Warn().Msg("MinIO endpoint not configured - uploads will not be archived")
	}

	var events handlers.EventPublisher
	var rabbitMQPublisher *services.RabbitMQPublisher
	if config.RabbitMQURL != "" {
		log.Info().Msg("Initializing RabbitMQ publisher...")
		rabbitMQPublisher, err = services.NewRabbitMQPublisher(
			config.RabbitMQURL,
			config.RabbitMQExchange,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ publisher: %w", err)
		}
		defer rabbitMQPublisher.Close()
		events = rabbitMQPublisher
	} else {
		log.Warn().Msg("RabbitMQ URL not configured - entry events will not be published")
	}

	orchestrator := ingest.NewOrchestrator(catalog, catalog.Tabular(config.DataSchema))

	handler := handlers.NewHandler(
		orchestrator,
		catalog,
		archive,
		events,
		formatter.NewDCATFormatter(config.PublisherName, config.BaseURL),
		config.MaxUploadMB<<20,
	)
	handler.AddHealthCheck("postgres", catalog)
	if minioStorage != nil {
		handler.AddHealthCheck("minio", minioStorage)
	}
	if rabbitMQPublisher != nil {
		handler.AddHealthCheck("rabbitmq", rabbitMQPublisher)
	}

	router := setupRouter(handler, config.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", srv.Addr).
			Msg("Server starting...")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}

func setLogLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		log.Warn().Str("level", level).Msg("Unknown log level, using info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}
