package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rohan-patnaik/convex-imagegen-studio/internal/adapter/repo"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/domain"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/http/handlers"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/http/httpapi"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/imagegen"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/infra"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/providers/fal"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/providers/hf"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/providers/image"
	"github.com/rohan-patnaik/convex-imagegen-studio/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()

	store, err := newBlobStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure storage")
	}

	httpClient := &http.Client{Timeout: 120 * time.Second}
	falClient := fal.NewClient(fal.Options{
		APIKey:     cfg.FalAPIKey,
		BaseURL:    cfg.FalBaseURL,
		HTTPClient: httpClient,
		Logger:     &logger,
	})
	hfClient := hf.NewClient(hf.Options{
		APIToken:   cfg.HFAPIToken,
		BaseURL:    cfg.HFBaseURL,
		HTTPClient: httpClient,
		Logger:     &logger,
	})

	generators := map[domain.Provider]image.Generator{
		domain.ProviderFal:         image.NewFalGenerator(falClient),
		domain.ProviderHuggingFace: image.NewHFGenerator(hfClient, store, &logger),
	}
	defaults := map[domain.Provider]string{
		domain.ProviderFal:         cfg.FalModel,
		domain.ProviderHuggingFace: cfg.HFModel,
	}

	generations := repo.NewGenerationRepository(pool)
	service := imagegen.NewService(generations, generators, defaults, logger)

	app := handlers.NewApp(cfg, logger, service)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func newBlobStore(cfg *infra.Config) (domain.BlobStore, error) {
	if cfg.StorageDriver == infra.StorageDriverSupabase {
		return storage.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	}
	return storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
}
