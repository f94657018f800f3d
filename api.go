package quillpress

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/quillpress/editor"
)

func (a *App) handleCounter(c echo.Context) error {
	id := c.QueryParam("c")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "counter_id is required"})
	}
	count, err := a.Store.IncrementCounter(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"count": count})
}

func (a *App) handleSearch(c echo.Context) error {
	results, err := a.Store.Search(c.Request().Context(), c.QueryParam("q"), CurrentUser(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, results)
}

func (a *App) handleEditorConfig(c echo.Context) error {
	name := c.QueryParam("schema")
	if name == "" {
		name = editor.MultiLineRichText.Name
	}
	cfg, err := editor.ConfigFor(name, c.QueryParam("platform") == "mac")
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error(), "schemas": editor.SchemaNames()})
	}
	return c.JSON(http.StatusOK, cfg)
}

func (a *App) handleListArticles(c echo.Context) error {
	articles, err := a.listArticles(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, articles)
}

func (a *App) handleGetArticle(c echo.Context) error {
	article, err := a.findArticle(c, c.Param("slug"))
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, article)
}

// handleNextArticle answers null when there is no other published article.
func (a *App) handleNextArticle(c echo.Context) error {
	slug := c.Param("slug")
	if !IsAdmin(c) {
		if _, err := a.Cache.Get(c.Request().Context(), slug); err != nil {
			return apiError(c, err)
		}
	}
	next, err := a.Store.NextArticle(c.Request().Context(), slug)
	if err != nil {
		return apiError(c, err)
	}
	return c.JSON(http.StatusOK, next)
}

// handleGetPage answers the stored document as is, or null when the page
// has never been saved.
func (a *App) handleGetPage(c echo.Context) error {
	page, err := a.Store.GetPage(c.Request().Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return c.JSONBlob(http.StatusOK, []byte("null"))
	}
	if err != nil {
		return err
	}
	return c.JSONBlob(http.StatusOK, page.Data)
}
