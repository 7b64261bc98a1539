package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/echomeet/core/internal/middleware"
	"github.com/echomeet/core/internal/modules/ai"
	"github.com/echomeet/core/internal/modules/auth"
	"github.com/echomeet/core/internal/modules/costs"
	"github.com/echomeet/core/internal/modules/export"
	"github.com/echomeet/core/internal/modules/meetings"
	"github.com/echomeet/core/internal/modules/settings"
	pkgredis "github.com/echomeet/core/internal/pkg/redis"
	"github.com/echomeet/core/internal/pkg/response"
	"github.com/echomeet/core/internal/pkg/taskqueue"
)

// appDeps carries the shared services cron jobs reuse after route setup.
type appDeps struct {
	meetings *meetings.Service
	settings *settings.Service
	engine   *export.Engine
}

func (a *App) registerRoutes(rc *pkgredis.Client) appDeps {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	appInfo := gin.H{
		"name":     "echomeet-core",
		"version":  "1.0.0",
		"homepage": "https://github.com/echomeet/core",
	}

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth())

	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/uptime", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"timestamp": time.Since(a.startTime()).Milliseconds(),
		})
	})

	jobs := api.Group("/jobs", authMW)
	jobs.GET("", func(c *gin.Context) {
		response.OK(c, a.sched.List())
	})
	jobs.GET("/:name", func(c *gin.Context) {
		info, err := a.sched.Get(c.Param("name"))
		if err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, info)
	})
	jobs.POST("/:name/run", func(c *gin.Context) {
		if err := a.sched.Trigger(c.Param("name")); err != nil {
			response.NotFoundMsg(c, err.Error())
			return
		}
		response.OK(c, gin.H{"started": true})
	})

	taskSvc := taskqueue.NewService(rc)
	settingsSvc := settings.NewService(db)
	meetingsSvc := meetings.NewService(db)
	costsSvc := costs.NewService(db, a.logger)
	engine := export.NewEngine(meetingsSvc, a.logger)

	auth.NewHandler(a.cfg.AccessKey).RegisterRoutes(api, authMW)
	settings.NewHandler(settingsSvc).RegisterRoutes(api, authMW)
	meetings.NewHandler(meetingsSvc).RegisterRoutes(api, authMW)
	costs.NewHandler(costsSvc).RegisterRoutes(api, authMW)
	export.NewHandler(engine, settingsSvc, taskSvc, a.logger, a.cfg.BackupsDir()).RegisterRoutes(api, authMW)

	aiSvc := ai.NewService(meetingsSvc, settingsSvc, costsSvc, taskSvc, a.logger)
	ai.NewHandler(aiSvc).RegisterRoutes(api, authMW)

	return appDeps{meetings: meetingsSvc, settings: settingsSvc, engine: engine}
}
