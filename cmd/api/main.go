package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"studio/internal/adapter/repo"
	"studio/internal/contact"
	"studio/internal/gallery"
	"studio/internal/http/handlers"
	httpapi "studio/internal/http/httpapi"
	"studio/internal/infra"
	"studio/internal/infra/geoip"
	"studio/internal/mail"
	"studio/internal/migration"
	"studio/internal/storage"
	"studio/internal/validation"
	"studio/internal/watermark"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	if cfg.MigrateOnStart {
		if err := infra.RunMigrations(ctx, cfg.DatabaseURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	sqlRunner := infra.NewSQLRunner(dbpool, logger)

	files, err := storage.NewFileStore(cfg.PublicDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open public dir")
	}
	objects, err := storage.ObjectStoreFromConfig(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure object store")
	}
	if !cfg.ObjectStoreEnabled() {
		logger.Warn().Msg("object store not configured, uploads stay in the public dir")
	}

	geo, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
		geo, _ = geoip.NewResolver("")
	}
	defer geo.Close()

	marker, err := watermark.New(watermark.Config{
		Text:      cfg.WatermarkText,
		MaxWidth:  cfg.WatermarkMaxWidth,
		Allowlist: cfg.ImageSourceAllowlist,
		Client:    &http.Client{Timeout: 20 * time.Second},
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init watermark")
	}

	// without a bucket every absolute URL counts as the preferred copy
	isObjectStore := objects.Owns
	if !cfg.ObjectStoreEnabled() {
		isObjectStore = nil
	}

	images := repo.NewImageRepository(sqlRunner)
	app := &handlers.App{
		Config:     cfg,
		Logger:     logger,
		DB:         dbpool,
		Images:     images,
		Donations:  repo.NewDonationRepository(sqlRunner),
		Gallery:    gallery.NewService(images, isObjectStore),
		Contact:    contact.NewService(contact.NewFilter(), mail.FromConfig(cfg, logger), geo, cfg.ContactRecipient, logger),
		Watermark:  marker,
		Migrations: migration.NewRunner(images, files, objects, logger),
		Files:      files,
		Objects:    objects,
		Validator:  validation.New(),
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
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
