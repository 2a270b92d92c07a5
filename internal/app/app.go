package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	"github.com/yungbote/writecoach-backend/internal/data/db"
	"github.com/yungbote/writecoach-backend/internal/data/repos"
	"github.com/yungbote/writecoach-backend/internal/http"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

const serviceName = "writecoach-api"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Catalog  *catalog.Catalog
	Repos    repos.Set
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	ctx := context.Background()

	otelCfg := observability.OtelConfigFromEnv()
	otelCfg.ServiceName = serviceName
	otelCfg.Environment = cfg.Environment
	otelCfg.Version = cfg.Version
	otelShutdown := observability.InitOTel(ctx, log, otelCfg)
	metrics := observability.Init(log)

	cat, err := LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Sync()
		return nil, err
	}
	log.Info("Catalog loaded", "lessons", len(cat.Lessons()))

	dbService, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := dbService.DB()

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset, err := wireServices(theDB, log, cfg, cat, reposet, clients, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, cat, serviceset)
	middleware := wireMiddleware(log, cfg)
	router := wireRouter(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Catalog:      cat,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// LoadCatalog reads path, or the embedded catalog when path is empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("load default catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return cat, nil
}

// Start launches background collectors. Run does not depend on it.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil && a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return (&http.Server{Engine: a.Router}).Run(ctx, ":"+a.Cfg.Port)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Clients.Redis != nil {
		_ = a.Clients.Redis.Close()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
