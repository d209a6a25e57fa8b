package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"coop-intake-go/internal/blob"
	"coop-intake-go/internal/config"
	"coop-intake-go/internal/db"
	campaignsdomain "coop-intake-go/internal/domain/campaigns"
	proposalsdomain "coop-intake-go/internal/domain/proposals"
	"coop-intake-go/internal/integration/crm"
	"coop-intake-go/internal/integration/notifier"
	"coop-intake-go/internal/refdata/ibge"
	"coop-intake-go/internal/repository/inmemory"
	campaignsrepo "coop-intake-go/internal/repository/postgres/campaigns"
	proposalsrepo "coop-intake-go/internal/repository/postgres/proposals"
	"coop-intake-go/internal/transport/httpserver"
	"coop-intake-go/internal/transport/httpserver/handler"
	adminhandler "coop-intake-go/internal/transport/httpserver/handler/admin"
	commonhandler "coop-intake-go/internal/transport/httpserver/handler/common"
	publichandler "coop-intake-go/internal/transport/httpserver/handler/public"
	"coop-intake-go/internal/worker"
	"coop-intake-go/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	runner     *worker.Runner
	log        logger.Logger
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(dbConn, log); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	sqlDB, err := dbConn.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}

	log.Info("app: loading municipality table", "override", cfg.RefData.CitiesFile)
	cities, err := ibge.Load(cfg.RefData.CitiesFile)
	if err != nil {
		return nil, fmt.Errorf("load municipalities: %w", err)
	}
	log.Info("app: municipality table loaded", "entries", cities.Len())

	blobs := blob.NewLocalStore(cfg.Blob.Dir, cfg.PublicBaseURL, cfg.Blob.MaxUploadBytes)
	runner := worker.NewRunner(cfg.Worker.QueueSize, cfg.Worker.Workers, cfg.Worker.TaskTimeout, log.With("component", "worker"))

	crmClient := crm.NewClient(crm.Config{
		BaseURL:           cfg.CRM.BaseURL,
		APIKey:            cfg.CRM.APIKey,
		Timeout:           cfg.CRM.Timeout,
		DownloadTimeout:   cfg.CRM.DownloadTimeout,
		MaxImageDimension: cfg.CRM.MaxImageDimension,
		JPEGQuality:       cfg.CRM.JPEGQuality,
	}, cities, blobs, log.With("component", "crm"))
	if cfg.CRM.BaseURL == "" || cfg.CRM.APIKey == "" {
		log.Warn("app: crm not configured, syncs will be recorded as failed")
	}

	notifierClient := notifier.NewClient(notifier.Config{
		BaseURL: cfg.Notifier.BaseURL,
		Timeout: cfg.Notifier.Timeout,
	})
	if cfg.Notifier.BaseURL == "" {
		log.Warn("app: notifier not configured, notifications will be recorded as failed")
	}

	campaignService := campaignsdomain.NewService(
		campaignsrepo.NewPostgres(dbConn),
		inmemory.NewInMemoryCampaignCache(),
		cfg.Campaigns.CacheTTL,
	)
	proposalService := proposalsdomain.NewService(
		proposalsrepo.NewPostgres(dbConn),
		campaignService,
		notifierClient,
		crmClient,
		runner,
		log.With("component", "proposals"),
		proposalsdomain.Config{
			UploadTokenTTL: cfg.Proposals.UploadTokenTTL,
			BatchSyncDelay: cfg.Proposals.BatchSyncDelay,
			SyncTimeout:    cfg.Proposals.SyncTimeout,
		},
	)

	sessions := inmemory.NewInMemorySessionStore()
	if cfg.Admin.Password == "" {
		log.Warn("app: ADMIN_PASSWORD not set, admin login disabled")
	}

	handlers := handler.New(
		commonhandler.New(sqlDB, log),
		publichandler.New(campaignService, proposalService, blobs, cities, cfg.Blob.MaxUploadBytes, log),
		adminhandler.New(campaignService, proposalService, sessions, adminhandler.Credentials{
			User:         cfg.Admin.User,
			Password:     cfg.Admin.Password,
			SessionTTL:   cfg.Admin.SessionTTL,
			SecureCookie: cfg.IsProduction(),
		}, log),
	)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, sessions, blobs.Handler(), log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
		runner:     runner,
		log:        log,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) ShutdownTimeout() time.Duration {
	if a.cfg.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return a.cfg.ShutdownTimeout
}

// StartWorkers runs background tasks until ctx is done. Close waits for the
// queue to drain.
func (a *App) StartWorkers(ctx context.Context) {
	a.runner.Start(ctx)
}

func (a *App) Close() error {
	if a.runner != nil {
		started := time.Now()
		a.log.Info("app: waiting for background tasks")
		a.runner.Wait()
		a.log.Info("app: background tasks drained", "duration_ms", time.Since(started).Milliseconds())
	}
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
