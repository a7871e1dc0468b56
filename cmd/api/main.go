package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/providers/gemini"
	"server/internal/restyle"
	"server/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	store, err := storage.Resolve(ctx, storage.Options{
		S3Bucket:        cfg.S3Bucket,
		S3Region:        cfg.S3Region,
		S3Endpoint:      cfg.S3Endpoint,
		S3AccessKeyID:   cfg.S3AccessKeyID,
		S3SecretKey:     cfg.S3SecretKey,
		S3PublicBaseURL: cfg.S3PublicBaseURL,
		S3UsePathStyle:  cfg.S3UsePathStyle,

		SupabaseURL:        cfg.SupabaseURL,
		SupabaseServiceKey: cfg.SupabaseServiceKey,

		LocalDir:   cfg.PublicDir,
		PrivateACL: cfg.StoragePrivateACL,
		ReadOnlyFS: cfg.ReadOnlyFS,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to resolve storage backend")
	}
	logger.Info().Str("backend", string(store.Backend())).Msg("storage ready")

	generator, err := gemini.NewClient(ctx, gemini.Options{
		APIKey:    cfg.GeminiAPIKey,
		Model:     cfg.GeminiModel,
		ImageSize: cfg.GeminiImageSize,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create generation client")
	}

	swatches := storage.NewSwatchLibrary(cfg.PublicDir)
	restyler := restyle.NewService(store, swatches, generator, cfg.GenerationTimeout, logger)

	app := handlers.NewApp(logger, cfg, store, restyler)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
