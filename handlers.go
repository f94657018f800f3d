package quillpress

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/quillpress/views"
)

// listArticles returns what the request may see: the cached published list
// for anonymous visitors, every article for the admin.
func (a *App) listArticles(c echo.Context) ([]Article, error) {
	ctx := c.Request().Context()
	if user := CurrentUser(c); user != nil {
		return a.Store.ListArticles(ctx, user)
	}
	return a.Cache.Published(ctx)
}

// findArticle returns a visible article by slug. Drafts are only visible to
// the admin.
func (a *App) findArticle(c echo.Context, slug string) (Article, error) {
	ctx := c.Request().Context()
	if IsAdmin(c) {
		return a.Store.GetArticle(ctx, slug)
	}
	return a.Cache.Get(ctx, slug)
}

func (a *App) handleHome(c echo.Context) error {
	articles, err := a.listArticles(c)
	if err != nil {
		return err
	}
	var home views.HomePage
	if _, err := a.Store.LoadPage(c.Request().Context(), "home", &home); err != nil {
		return err
	}
	return Render(c, a.Views.Home(a.Config.Site(), viewSession(c), home, toViews(articles)))
}

func (a *App) handleBlog(c echo.Context) error {
	articles, err := a.listArticles(c)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Blog(a.Config.Site(), viewSession(c), toViews(articles)))
}

func (a *App) handleArticle(c echo.Context) error {
	article, err := a.findArticle(c, c.Param("slug"))
	if errors.Is(err, ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.Config.Site()))
	}
	if err != nil {
		return err
	}

	var next *views.ArticleLink
	if article.Published() {
		sum, err := a.Store.NextArticle(c.Request().Context(), article.Slug)
		if err != nil && !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrNotPublished) {
			return err
		}
		if sum != nil {
			next = &views.ArticleLink{Title: sum.Title, Teaser: sum.Teaser, Link: "/blog/" + sum.Slug}
		}
	}
	return Render(c, a.Views.Article(a.Config.Site(), viewSession(c), toView(article), next))
}

func (a *App) handleImprint(c echo.Context) error {
	var page views.ImprintPage
	if _, err := a.Store.LoadPage(c.Request().Context(), "imprint", &page); err != nil {
		return err
	}
	return Render(c, a.Views.Imprint(a.Config.Site(), viewSession(c), page))
}

func (a *App) handleSitemap(c echo.Context) error {
	articles, err := a.Cache.Published(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderSitemap(c, articles)
}

func (a *App) handleFeed(c echo.Context) error {
	articles, err := a.Cache.Published(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, articles)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /api/\nDisallow: /login\n\nSitemap: " + BuildURL(a.Config.URL, "sitemap.xml") + "\n"
	return c.String(http.StatusOK, body)
}

func (a *App) handleHealth(c echo.Context) error {
	if err := a.Store.Ping(c.Request().Context()); err != nil {
		a.Log.Error("health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	path := c.Request().URL.Path
	api := strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/assets/")

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	} else if errors.Is(err, context.Canceled) {
		return
	}

	if code >= 500 {
		a.Log.Error("server error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		)
	}
	if !api {
		switch {
		case code == http.StatusNotFound:
			_ = RenderStatus(c, code, a.Views.NotFound(a.Config.Site()))
			return
		case code >= 500:
			_ = RenderStatus(c, code, a.Views.ServerError(a.Config.Site()))
			return
		}
	}
	if code >= 500 && he == nil {
		_ = c.JSON(code, echo.Map{"error": "internal server error"})
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
