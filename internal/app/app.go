// Package app initializes and runs the main application server. It wires
// configuration, structured logging, the database (with migrations), the
// object store and the HTTP API, and handles graceful shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/swapcloset/swapcloset/internal/config"
	"github.com/swapcloset/swapcloset/internal/httpapi"
	"github.com/swapcloset/swapcloset/internal/logging"
	"github.com/swapcloset/swapcloset/internal/repositories/repomanager"
	"github.com/swapcloset/swapcloset/internal/services"
	"github.com/swapcloset/swapcloset/internal/storage"
	"github.com/swapcloset/swapcloset/internal/validation"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	api    *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Config{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	policy := validation.DefaultPolicy()
	policy.MaxSizeBytes = cfg.MaxUploadSizeBytes
	uploader := storage.NewUploader(store, policy, logger)

	listingService := services.NewListingService(db, rm, uploader, storage.UploadOptions{
		Bucket: cfg.S3Bucket,
		Folder: cfg.UploadFolder,
	}, logger)
	profileService := services.NewProfileService(db, rm)

	api := httpapi.NewServer(cfg.EndpointAddrHTTP, []byte(cfg.SecretKey),
		listingService, rm.Categories(db), profileService, logger)

	return &App{config: cfg, logger: logger, db: db, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.api.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
