package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"compressx/internal/http/handlers"
	"compressx/internal/http/httpapi"
	"compressx/internal/infra"
	"compressx/internal/mediastore"
	"compressx/internal/notify"
	"compressx/internal/storage"
	"compressx/internal/store"
	"compressx/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	records := store.NewRecordRepository(dbpool)
	if err := records.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	media, err := mediastore.NewClient(mediastore.Options{
		CloudName:      cfg.CloudName,
		APIKey:         cfg.CloudAPIKey,
		APISecret:      cfg.CloudAPISecret,
		BaseURL:        cfg.CloudBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure media store")
	}

	files, err := storage.NewFileStore(cfg.LocalStoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare local storage")
	}

	var mailer notify.Mailer
	if cfg.MailEnabled() {
		mailer = notify.NewSMTPMailer(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
	} else {
		logger.Warn().Msg("MAIL_HOST not set, record notifications disabled")
	}
	notifier := notify.NewNotifier(mailer, &logger, cfg.ProviderTimeout)

	compressor := workflow.New(workflow.Options{
		Store:  media,
		Folder: cfg.UploadFolder,
		Logger: &logger,
	})

	app := &handlers.App{
		Config:     cfg,
		Logger:     &logger,
		Media:      media,
		Compressor: compressor,
		Records:    records,
		Notifier:   notifier,
		Files:      files,
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	// Let in-flight notification attempts finish before exiting.
	notifier.Wait()
	logger.Info().Msg("server stopped")
}
