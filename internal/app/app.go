package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/majorcompass-backend/internal/data/db"
	"github.com/yungbote/majorcompass-backend/internal/http"
	"github.com/yungbote/majorcompass-backend/internal/observability"
	"github.com/yungbote/majorcompass-backend/internal/platform/envutil"
	"github.com/yungbote/majorcompass-backend/internal/platform/logger"
)

// Mode selects how much of the application is wired.
type Mode int

const (
	// ModeServe wires identity, handlers and the HTTP server.
	ModeServe Mode = iota
	// ModeLocal wires storage and the questionnaire only, for in-process use.
	ModeLocal
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services
	Server   *http.Server

	dbs          *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// NewLogger builds the process logger from LOG_MODE.
func NewLogger() (*logger.Logger, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return log, nil
}

// OpenDatabase connects and migrates.
func OpenDatabase(log *logger.Logger, cfg Config) (*db.Service, error) {
	dbs, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbs.Migrate(); err != nil {
		_ = dbs.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	return dbs, nil
}

func New(ctx context.Context, log *logger.Logger, mode Mode) (*App, error) {
	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	var otelShutdown func(context.Context) error
	if mode == ModeServe {
		otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)
	}

	dbs, err := OpenDatabase(log, cfg)
	if err != nil {
		return nil, err
	}
	theDB := dbs.DB()

	clientset, err := wireClients(ctx, log, cfg, mode == ModeServe)
	if err != nil {
		_ = dbs.Close()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireQuestionnaire(theDB, log, cfg, reposet, clientset)

	a := &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		dbs:          dbs,
		otelShutdown: otelShutdown,
	}
	if mode == ModeLocal {
		return a, nil
	}

	serviceset, err = wireServices(theDB, log, cfg, reposet, clientset, serviceset)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services = serviceset

	handlerset := wireHandlers(log, dbs, serviceset)
	middleware := wireMiddleware(log, serviceset)
	a.Server = wireServer(log, cfg, handlerset, middleware)
	return a, nil
}

// Start launches background work: the idle session janitor.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.Questionnaire != nil {
		go a.Services.Questionnaire.RunJanitor(ctx, a.Cfg.JanitorInterval)
	}
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("Server listening", "port", a.Cfg.Port)
		errCh <- a.Server.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	a.Log.Info("Shutting down server")
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbs != nil {
		if err := a.dbs.Close(); err != nil {
			a.Log.Warn("database close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
