package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/devconnect-app/backend/api"
	"github.com/devconnect-app/backend/auth"
	"github.com/devconnect-app/backend/config"
	"github.com/devconnect-app/backend/database"
	"github.com/devconnect-app/backend/events"
	"github.com/devconnect-app/backend/schema"
	"github.com/devconnect-app/backend/services"
	"github.com/devconnect-app/backend/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupLogging applies LOG_LEVEL to the global zerolog logger.
func setupLogging(c map[string]string) {
	level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.With().Str("service", "devconnect").Logger()
}

// serve connects every backing service, starts the HTTP server and blocks
// until it fails or the process is interrupted.
func serve(ctx context.Context, c map[string]string) error {
	db, err := database.Open(c)
	if err != nil {
		return err
	}
	store := database.New(db)
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing database")
		}
	}()

	secret := config.GetString(c, "SUPABASE_JWT_SECRET", "")
	if secret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is not set")
	}
	tokens := auth.NewTokenManager(
		secret,
		config.GetString(c, "JWT_ISSUER", "devconnect"),
		config.GetDuration(c, "ACCESS_TOKEN_TTL_MINUTES", time.Minute, 60),
		config.GetDuration(c, "REFRESH_TOKEN_TTL_HOURS", time.Hour, 24*7),
	)

	var revoked auth.RevocationStore = auth.NopRevocationStore{}
	if url := config.GetString(c, "REDIS_URL", ""); url != "" {
		client, err := auth.ConnectRedis(ctx, url)
		if err != nil {
			return err
		}
		defer client.Close()
		revoked = auth.NewRedisRevocationStore(client)
		log.Info().Msg("token revocation backed by redis")
	} else {
		log.Warn().Msg("REDIS_URL not set, logout will not revoke tokens")
	}

	var publisher events.Publisher = events.Nop{}
	if url := config.GetString(c, "NATS_URL", ""); url != "" {
		nc, err := events.Connect(events.Config{
			URL:           url,
			MaxReconnects: config.GetInt(c, "NATS_MAX_RECONNECTS", 10),
			ReconnectWait: config.GetDuration(c, "NATS_RECONNECT_WAIT_SECONDS", time.Second, 2),
			Name:          "devconnect-backend",
		})
		if err != nil {
			return err
		}
		publisher = nc
	}
	defer publisher.Close()

	var projectOpts []services.ProjectOption
	storageCfg := storage.Config{
		Endpoint:        config.GetString(c, "STORAGE_S3_ENDPOINT", ""),
		Region:          config.GetString(c, "STORAGE_S3_REGION", "us-east-1"),
		Bucket:          config.GetString(c, "STORAGE_S3_BUCKET", ""),
		PublicURL:       config.GetString(c, "STORAGE_S3_PUBLIC_URL", ""),
		AccessKeyID:     config.GetString(c, "STORAGE_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: config.GetString(c, "STORAGE_S3_SECRET_ACCESS_KEY", ""),
	}
	if storageCfg.Enabled() {
		uploader, err := storage.NewS3Client(ctx, storageCfg)
		if err != nil {
			return err
		}
		maxBytes := int64(config.GetInt(c, "STORAGE_MAX_IMAGE_BYTES", services.DefaultMaxImageBytes))
		projectOpts = append(projectOpts, services.WithUploader(uploader, maxBytes))
		log.Info().Str("bucket", storageCfg.Bucket).Msg("project image uploads enabled")
	}

	registry, err := schema.Default()
	if err != nil {
		return fmt.Errorf("building schema registry: %w", err)
	}

	server, err := api.NewServer(c, registry, api.Services{
		Auth:     services.NewAuthService(store, tokens, revoked),
		Projects: services.NewProjectService(store, publisher, projectOpts...),
		Comments: services.NewCommentService(store, publisher),
		Profiles: services.NewProfileService(store),
		Health:   store,
	})
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(config.GetDuration(c, "SHUTDOWN_TIMEOUT_SECONDS", time.Second, 30))
	return nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
