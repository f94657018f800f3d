package quillpress

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/quillpress/editor"
)

// maxPageSize bounds the JSON document accepted by the page editor.
const maxPageSize = 1 << 20

func (a *App) handleLoginForm(c echo.Context) error {
	if IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return Render(c, a.Views.Login(a.Config.Site(), false, CsrfToken(c)))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "too many login attempts, try again later"})
	}
	password := c.FormValue("password")
	if password == "" {
		return a.loginFailed(c)
	}

	id, err := a.Store.Authenticate(c.Request().Context(), password, a.Config.SessionTimeout)
	if errors.Is(err, ErrAuthFailed) {
		a.loginLimiter.Record(ip)
		a.Log.Info("login failed", zap.String("remote_ip", ip))
		return a.loginFailed(c)
	}
	if err != nil {
		return err
	}

	sess, err := session.Get(SessionCookieName, c)
	if err != nil {
		return err
	}
	sess.ID = id
	sess.Values[userSessionKey] = adminUser
	sess.Options.MaxAge = int(a.Config.SessionTimeout.Seconds())
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	a.Log.Info("login", zap.String("remote_ip", ip))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (a *App) loginFailed(c echo.Context) error {
	if wantsJSON(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"incorrect": true})
	}
	return RenderStatus(c, http.StatusBadRequest, a.Views.Login(a.Config.Site(), true, CsrfToken(c)))
}

func (a *App) handleLogout(c echo.Context) error {
	sess, err := session.Get(SessionCookieName, c)
	if err != nil {
		return err
	}
	if sess.ID != "" {
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			a.Log.Error("logout", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"incorrect": true})
		}
	}
	return c.Redirect(http.StatusSeeOther, "/")
}

// prepareArticle normalizes submitted content to the article schema and
// derives a missing teaser from it.
func prepareArticle(in ArticleInput) (ArticleInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return in, fmt.Errorf("%w: title is required", errBadInput)
	}
	switch strings.ToLower(in.Format) {
	case "markdown", "md":
		html, err := editor.FromMarkdown(in.Content)
		if err != nil {
			return in, fmt.Errorf("%w: %v", errBadInput, err)
		}
		in.Content = html
	case "", "html":
		in.Content = editor.Sanitize(editor.MultiLineRichText, in.Content)
	default:
		return in, fmt.Errorf("%w: unknown format %q", errBadInput, in.Format)
	}
	in.Format = ""
	in.Teaser = strings.TrimSpace(in.Teaser)
	if in.Teaser == "" {
		in.Teaser = editor.ExtractTeaser(in.Content)
	}
	return in, nil
}

func (a *App) bindArticle(c echo.Context) (ArticleInput, error) {
	var in ArticleInput
	if err := c.Bind(&in); err != nil {
		return in, fmt.Errorf("%w: %v", errBadInput, err)
	}
	return prepareArticle(in)
}

func (a *App) invalidate(c echo.Context) {
	if err := a.Cache.Invalidate(c.Request().Context()); err != nil {
		a.Log.Warn("invalidate article cache", zap.Error(err))
	}
}

func (a *App) handleCreateArticle(c echo.Context) error {
	if !IsAdmin(c) {
		return apiError(c, ErrNotAuthorized)
	}
	in, err := a.bindArticle(c)
	if err != nil {
		return apiError(c, err)
	}
	ref, err := a.Store.CreateArticle(c.Request().Context(), CurrentUser(c), in)
	if err != nil {
		return apiError(c, err)
	}
	a.invalidate(c)
	return c.JSON(http.StatusCreated, ref)
}

func (a *App) handleUpdateArticle(c echo.Context) error {
	if !IsAdmin(c) {
		return apiError(c, ErrNotAuthorized)
	}
	in, err := a.bindArticle(c)
	if err != nil {
		return apiError(c, err)
	}
	ref, err := a.Store.UpdateArticle(c.Request().Context(), CurrentUser(c), c.Param("slug"), in)
	if err != nil {
		return apiError(c, err)
	}
	a.invalidate(c)
	return c.JSON(http.StatusOK, ref)
}

func (a *App) handleDeleteArticle(c echo.Context) error {
	deleted, err := a.Store.DeleteArticle(c.Request().Context(), CurrentUser(c), c.Param("slug"))
	if err != nil {
		return apiError(c, err)
	}
	if deleted {
		a.invalidate(c)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}

func (a *App) handlePublish(published bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		slug := c.Param("slug")
		if err := a.Store.SetPublished(c.Request().Context(), CurrentUser(c), slug, published); err != nil {
			return apiError(c, err)
		}
		a.invalidate(c)
		article, err := a.Store.GetArticle(c.Request().Context(), slug)
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(http.StatusOK, article)
	}
}

func (a *App) handleSavePage(c echo.Context) error {
	if !IsAdmin(c) {
		return apiError(c, ErrNotAuthorized)
	}
	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPageSize+1))
	if err != nil {
		return err
	}
	if len(data) > maxPageSize {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "page too large"})
	}
	id := c.Param("id")
	if err := a.Store.SavePage(c.Request().Context(), CurrentUser(c), id, data); err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"page_id": id})
}

func (a *App) handleListAssets(c echo.Context) error {
	assets, err := a.Store.ListAssets(c.Request().Context(), CurrentUser(c))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, assets)
}

func (a *App) handleDeleteAsset(c echo.Context) error {
	id := assetParam(c)
	if id == "" {
		return apiError(c, ErrNotFound)
	}
	deleted, err := a.Store.DeleteAsset(c.Request().Context(), CurrentUser(c), id)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": deleted})
}

// assetParam returns the cleaned asset path from the wildcard route
// parameter, or "" when it is not a valid path.
func assetParam(c echo.Context) string {
	raw := c.Param("*")
	if p, err := url.PathUnescape(raw); err == nil {
		raw = p
	}
	return cleanAssetPath(raw)
}
