// Package quillpress is a personal publishing engine built with Go, Echo,
// and templ. It provides article CRUD with drafts, a single-admin session
// login, editable pages, asset storage, visit counters, search, RSS, and a
// sitemap.
//
// Templates are supplied through the ViewFuncs struct; DefaultViews wires
// the components of the views package. quillpress handles the handler
// logic, middleware, and database operations.
package quillpress

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eringen/quillpress/views"
)

// ViewFuncs holds the templ components the framework calls when rendering
// pages. This is the inversion-of-control mechanism that lets users own
// and customize all templates.
type ViewFuncs struct {
	Home        func(site views.SiteConfig, sess views.Session, home views.HomePage, articles []views.Article) templ.Component
	Blog        func(site views.SiteConfig, sess views.Session, articles []views.Article) templ.Component
	Article     func(site views.SiteConfig, sess views.Session, article views.Article, next *views.ArticleLink) templ.Component
	Imprint     func(site views.SiteConfig, sess views.Session, page views.ImprintPage) templ.Component
	Login       func(site views.SiteConfig, incorrect bool, csrfToken string) templ.Component
	NotFound    func(site views.SiteConfig) templ.Component
	ServerError func(site views.SiteConfig) templ.Component
}

// DefaultViews returns the components of the views package.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:        views.Home,
		Blog:        views.Blog,
		Article:     views.ArticlePage,
		Imprint:     views.Imprint,
		Login:       views.Login,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central quillpress application. It wires together the store,
// cache, handlers, middleware, and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *ArticleCache
	Views  ViewFuncs
	Log    *zap.Logger

	loginLimiter *RateLimiter
	redis        *redis.Client
	customRoutes []func(*App)
	ownsStore    bool
	ownsRedis    bool
}

// New creates a new App with the given configuration and view functions.
// Nothing is opened until Init or Start.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Views:  v,
		Log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store and the optional Redis connection and sets up
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.Store == nil {
		if err := a.Config.Validate(); err != nil {
			return fmt.Errorf("quillpress: %w", err)
		}
		store, err := NewStore(ctx, a.Config.StoreConfig())
		if err != nil {
			return fmt.Errorf("quillpress: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	if a.redis == nil && a.Config.RedisURL != "" {
		opts, err := redis.ParseURL(a.Config.RedisURL)
		if err != nil {
			return fmt.Errorf("quillpress: redis url: %w", err)
		}
		a.redis = redis.NewClient(opts)
		a.ownsRedis = true
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Log.Warn("redis unavailable, using in-process cache only", zap.Error(err))
		}
	}

	a.Cache = NewArticleCache(a.Store, a.Config.ArticleCacheTTL, a.redis)
	a.loginLimiter = NewRateLimiter(a.Config.LoginAttempts, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the App and serves until ctx is canceled, then shuts
// the server down gracefully.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("listening", zap.String("addr", a.Config.Addr), zap.String("database", a.Store.Dialect()))
		errCh <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Pages
	e.GET("/", a.handleHome)
	e.GET("/blog", a.handleBlog)
	e.GET("/blog/:slug", a.handleArticle)
	e.GET("/imprint", a.handleImprint)
	e.GET("/assets/*", a.handleAsset)

	// Session
	e.GET("/login", a.handleLoginForm)
	e.POST("/login", a.handleLogin)
	e.GET("/logout", a.handleLogout)
	e.POST("/logout", a.handleLogout)

	// JSON API
	api := e.Group("/api")
	api.GET("/counter", a.handleCounter)
	api.GET("/search", a.handleSearch)
	api.GET("/editor", a.handleEditorConfig)
	api.GET("/articles", a.handleListArticles)
	api.POST("/articles", a.handleCreateArticle)
	api.GET("/articles/:slug", a.handleGetArticle)
	api.PUT("/articles/:slug", a.handleUpdateArticle)
	api.DELETE("/articles/:slug", a.handleDeleteArticle)
	api.GET("/articles/:slug/next", a.handleNextArticle)
	api.POST("/articles/:slug/publish", a.handlePublish(true))
	api.POST("/articles/:slug/unpublish", a.handlePublish(false))
	api.GET("/pages/:id", a.handleGetPage)
	api.PUT("/pages/:id", a.handleSavePage)
	api.PUT("/upload-asset", a.handleUploadAsset)
	api.GET("/assets", a.handleListAssets)
	api.DELETE("/assets/*", a.handleDeleteAsset)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	var errs []error
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.redis != nil && a.ownsRedis {
		errs = append(errs, a.redis.Close())
	}
	if a.Store != nil && a.ownsStore {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
