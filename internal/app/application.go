package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"sellusgenie-backend/internal/background"
	"sellusgenie-backend/internal/config"
	"sellusgenie-backend/internal/handlers"
	"sellusgenie-backend/internal/middleware"
	"sellusgenie-backend/internal/models"
	"sellusgenie-backend/internal/render"
	"sellusgenie-backend/internal/repository"
	"sellusgenie-backend/internal/service"
	"sellusgenie-backend/internal/theme"
	"sellusgenie-backend/internal/widgets"
	"sellusgenie-backend/pkg/cache"
	"sellusgenie-backend/pkg/logger"
)

const widgetUpgradeJob = "widget-upgrade"

type Application struct {
	cfg *config.Config

	ctx    context.Context
	cancel context.CancelFunc

	db       *gorm.DB
	cache    *cache.Cache
	themes   *theme.Manager
	registry *widgets.Registry
	renderer *render.Renderer

	repositories repositoryContainer
	services     serviceContainer
	handlers     handlerContainer

	scheduler   *background.Scheduler
	trigger     *background.Trigger
	rateLimiter *middleware.RateLimitManager

	router *gin.Engine
	server *http.Server
}

type repositoryContainer struct {
	Store repository.StoreRepository
	Page  repository.PageRepository
}

type serviceContainer struct {
	Store       *service.StoreService
	Page        *service.PageService
	Storefront  *service.StorefrontService
	Maintenance *service.MaintenanceService
}

type handlerContainer struct {
	Store      *handlers.StoreHandler
	Page       *handlers.PageHandler
	Storefront *handlers.StorefrontHandler
	Widget     *handlers.WidgetHandler
	Theme      *handlers.ThemeHandler
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, err
	}

	if err := app.runMigrations(); err != nil {
		app.closeResources()
		return nil, err
	}

	if err := app.createIndexes(); err != nil {
		app.closeResources()
		return nil, err
	}

	app.initCache()

	if err := app.initEngine(); err != nil {
		app.closeResources()
		return nil, err
	}

	app.initRepositories()
	app.initServices()
	app.initHandlers()

	if err := app.initBackground(); err != nil {
		app.closeResources()
		return nil, err
	}

	app.initRouter()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	a.scheduler.Start(a.ctx)
	a.trigger.Start()

	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
		"schedules":   a.trigger.Len(),
	})

	return a.server.ListenAndServe()
}

func (a *Application) Shutdown(ctx context.Context) error {
	var shutdownErr error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			shutdownErr = err
		}
	}

	if a.trigger != nil {
		a.trigger.Stop()
	}
	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(ctx); err != nil {
			logger.Error(err, "Background jobs did not stop in time", nil)
		}
	}

	a.closeResources()
	return shutdownErr
}

func (a *Application) closeResources() {
	a.cancel()

	if a.rateLimiter != nil {
		a.rateLimiter.Shutdown()
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) Storefront() *service.StorefrontService {
	return a.services.Storefront
}

func (a *Application) Maintenance() *service.MaintenanceService {
	return a.services.Maintenance
}

func (a *Application) Registry() *widgets.Registry {
	return a.registry
}

func (a *Application) initDatabase() error {
	logger.Info("Connecting to database", nil)

	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(
		&models.StoreProfile{},
		&models.PageDocument{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migration completed", nil)
	return nil
}

func (a *Application) createIndexes() error {
	if a.db == nil {
		return fmt.Errorf("database connection is not initialized")
	}

	logger.Info("Creating database indexes", nil)

	statements := []string{
		"CREATE INDEX IF NOT EXISTS idx_page_documents_store_slug ON page_documents(store_id, slug) WHERE page_type = 'content'",
		"CREATE INDEX IF NOT EXISTS idx_page_documents_published_system ON page_documents(store_id, system_page_type, updated_at DESC) WHERE status = 'published'",
		"CREATE INDEX IF NOT EXISTS idx_page_documents_sections ON page_documents USING GIN (sections)",
	}

	for _, stmt := range statements {
		if err := a.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}

func (a *Application) initCache() {
	renderCache, err := cache.NewCache(a.cfg.RedisURL, a.cfg.EnableCache)
	if err != nil {
		logger.Error(err, "Render cache unavailable, continuing without it", map[string]interface{}{"redis_url": a.cfg.RedisURL})
		renderCache, _ = cache.NewCache("", false)
	}
	a.cache = renderCache
}

func (a *Application) initEngine() error {
	themes, err := theme.NewManager(a.cfg.ThemesDir, a.cfg.DefaultThemePreset)
	if err != nil {
		return fmt.Errorf("failed to load theme presets: %w", err)
	}
	a.themes = themes

	a.registry = widgets.DefaultRegistry()
	a.renderer = render.New(a.registry, render.Options{OnFallback: service.RecordWidgetFallback})

	logger.Info("Widget registry ready", map[string]interface{}{
		"widgets": a.registry.Len(),
		"themes":  len(themes.List()),
	})
	return nil
}

func (a *Application) initRepositories() {
	a.repositories = repositoryContainer{
		Store: repository.NewStoreRepository(a.db),
		Page:  repository.NewPageRepository(a.db),
	}
}

func (a *Application) initServices() {
	stores := service.NewStoreService(a.repositories.Store, a.themes, a.cache)

	a.services = serviceContainer{
		Store: stores,
		Page:  service.NewPageService(a.repositories.Page, stores, a.registry, a.cache),
		Storefront: service.NewStorefrontService(a.repositories.Page, stores, a.renderer, a.cache, service.StorefrontOptions{
			CacheTTL:     a.cfg.RenderCacheTTL,
			FetchTimeout: a.cfg.RenderFetchTimeout,
		}),
		Maintenance: service.NewMaintenanceService(a.repositories.Page, a.repositories.Store, stores, a.registry, a.cache),
	}
}

func (a *Application) initHandlers() {
	a.handlers = handlerContainer{
		Store:      handlers.NewStoreHandler(a.services.Store),
		Page:       handlers.NewPageHandler(a.services.Page, a.services.Storefront),
		Storefront: handlers.NewStorefrontHandler(a.services.Storefront),
		Widget:     handlers.NewWidgetHandler(a.registry),
		Theme:      handlers.NewThemeHandler(a.themes, a.cache),
	}
}

func (a *Application) initBackground() error {
	a.scheduler = background.NewScheduler(background.Config{WorkerCount: a.cfg.WorkerCount})
	a.trigger = background.NewTrigger(a.scheduler)

	upgrade := background.Job{
		Name:       widgetUpgradeJob,
		Timeout:    10 * time.Minute,
		MaxRetries: 1,
		Backoff:    30 * time.Second,
		Run: func(ctx context.Context) error {
			_, err := a.services.Maintenance.UpgradeAllStores(ctx)
			return err
		},
	}
	if err := a.trigger.Every(a.cfg.WidgetUpgradeSchedule, upgrade); err != nil {
		return fmt.Errorf("invalid widget upgrade schedule: %w", err)
	}
	return nil
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware(a.cfg.ImageHosts))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	a.rateLimiter = middleware.NewRateLimitManager(
		a.ctx,
		a.cfg.RateLimitRequests,
		time.Duration(a.cfg.RateLimitWindow)*time.Second,
		a.cfg.RateLimitBurst,
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/widgets", a.handlers.Widget.List)
		v1.GET("/widgets/:type", a.handlers.Widget.Get)

		v1.GET("/themes", a.handlers.Theme.List)
		v1.POST("/themes/reload", a.handlers.Theme.Reload)

		v1.POST("/stores", a.handlers.Store.Create)
		v1.GET("/stores/:storeID", a.handlers.Store.Get)
		v1.PUT("/stores/:storeID", a.handlers.Store.Update)

		v1.GET("/stores/:storeID/pages", a.handlers.Page.ListByStore)
		v1.POST("/stores/:storeID/pages", a.handlers.Page.Create)

		pages := v1.Group("/pages")
		{
			pages.GET("/:id", a.handlers.Page.GetByID)
			pages.PUT("/:id", a.handlers.Page.Update)
			pages.DELETE("/:id", a.handlers.Page.Delete)
			pages.POST("/:id/publish", a.handlers.Page.Publish)
			pages.POST("/:id/unpublish", a.handlers.Page.Unpublish)
			pages.POST("/:id/duplicate", a.handlers.Page.Duplicate)
			pages.GET("/:id/preview", a.handlers.Page.Preview)
		}

		storefront := v1.Group("/storefront/:storeID")
		storefront.Use(middleware.RateLimitMiddleware(a.rateLimiter))
		{
			storefront.GET("/pages/:slug", a.handlers.Storefront.PageBySlug)
			storefront.GET("/system/:role", a.handlers.Storefront.SystemPage)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Route not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	a.router = router
}
