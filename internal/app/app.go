package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lcalzada-xor/vulnscope/internal/adapters/enrichment"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/nvd"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/reporting"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/storage"
	webserver "github.com/lcalzada-xor/vulnscope/internal/adapters/web/server"
	"github.com/lcalzada-xor/vulnscope/internal/adapters/web/websocket"
	"github.com/lcalzada-xor/vulnscope/internal/config"
	"github.com/lcalzada-xor/vulnscope/internal/core/services/audit"
	"github.com/lcalzada-xor/vulnscope/internal/core/services/lookup"
	"github.com/lcalzada-xor/vulnscope/internal/telemetry"
)

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config        *config.Config
	LookupService *lookup.Service
	AuditService  *audit.AuditService
	WebServer     *webserver.Server
	WSManager     *websocket.WSManager

	recordRepo *nvd.SQLiteRepository
	store      *storage.SQLiteAdapter
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}

	// 2. Domain Services
	app.AuditService = audit.NewAuditService(app.store)

	scoring := enrichment.NewEPSSClient(app.Config.EPSSBaseURL, app.Config.ProviderTimeout)
	exposure := enrichment.NewShodanClient(app.Config.ShodanCVEDBURL, app.Config.ShodanAPIURL, app.Config.ShodanAPIKey, app.Config.ProviderTimeout)
	narrative := enrichment.NewOpenAIClient(app.Config.OpenAIBaseURL, app.Config.OpenAIAPIKey, app.Config.ProviderTimeout)
	taxonomy := enrichment.NewCWEClient(app.Config.CWEBaseURL, app.Config.ProviderTimeout)

	app.WSManager = websocket.NewWSManager()
	app.LookupService = lookup.NewService(
		app.recordRepo,
		app.store,
		scoring,
		exposure,
		narrative,
		taxonomy,
		lookup.WithNotifier(app.WSManager),
	)

	// 3. Servers
	app.WebServer = webserver.NewServer(app.Config.Addr, app.LookupService, app.AuditService, app.WSManager, reporting.NewPDFExporter())

	return nil
}

func (app *Application) initStorage() error {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init system storage: %w", err)
	}
	app.store = store

	records, err := nvd.NewSQLiteRepository(app.Config.NVDDBPath)
	if err != nil {
		return fmt.Errorf("failed to init record storage: %w", err)
	}
	app.recordRepo = records

	return nil
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting vulnscope components...")

	errChan := make(chan error, 1)

	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	slog.Info("vulnscope ready", "addr", app.Config.Addr)

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case err := <-errChan:
		return err
	}

	return app.cleanup()
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")

	if app.recordRepo != nil {
		if err := app.recordRepo.Close(); err != nil {
			slog.Warn("failed to close record storage", "error", err)
		}
	}
	if app.store != nil {
		if err := app.store.Close(); err != nil {
			slog.Warn("failed to close system storage", "error", err)
		}
	}

	return nil
}
