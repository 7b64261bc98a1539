package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/echomeet/core/internal/config"
	"github.com/echomeet/core/internal/database"
	"github.com/echomeet/core/internal/middleware"
	pkgcron "github.com/echomeet/core/internal/pkg/cron"
	"github.com/echomeet/core/internal/pkg/jwt"
	pkgredis "github.com/echomeet/core/internal/pkg/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var processStart = time.Now()

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler
}

// New wires the application together: config, database, Redis, HTTP routes
// and the cron scheduler.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if cfg.JWTSecret != "" {
		jwt.SetSecret(cfg.JWTSecret)
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	rc, err := pkgredis.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		cfg:    cfg,
		router: buildRouter(cfg, logger),
		db:     db,
		logger: logger,
		cancel: cancel,
		sched:  pkgcron.New(),
	}

	deps := app.registerRoutes(rc)
	registerCronJobs(app.sched, deps, cfg, logger)
	go app.sched.Start(ctx)

	return app, nil
}

func buildRouter(cfg *config.AppConfig, logger *zap.Logger) *gin.Engine {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery(), middleware.Logger(logger), cors.New(corsConfig(cfg)))
	return router
}

func corsConfig(cfg *config.AppConfig) cors.Config {
	conf := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		AllowOriginFunc:  func(string) bool { return true },
	}

	// Origin restrictions only apply in production; local dev stays open.
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		patterns := cfg.AllowedOrigins
		conf.AllowOriginFunc = func(origin string) bool {
			return originAllowed(patterns, origin)
		}
	}
	return conf
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the cron scheduler and other background goroutines.
func (a *App) Shutdown() { a.cancel() }

func (a *App) startTime() time.Time { return processStart }
