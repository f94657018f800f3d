package quillpress

import (
	"errors"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/quillpress/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// wantsJSON reports whether the client prefers a JSON response.
func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON) ||
		strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON)
}

// apiError maps store errors to JSON responses. Unknown errors go to the
// HTTP error handler.
func apiError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authorized"})
	case errors.Is(err, ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, ErrNotPublished):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "article is not published"})
	case errors.Is(err, ErrInvalidPage), errors.Is(err, errBadInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return err
}

const displayDate = "Jan 2, 2006"

func toView(a Article) views.Article {
	v := views.Article{
		Title:     a.Title,
		Slug:      a.Slug,
		Teaser:    a.Teaser,
		Content:   a.Content,
		ISODate:   a.ModifiedAt().Format("2006-01-02"),
		Published: a.Published(),
		Link:      a.Link(),
	}
	if a.PublishedAt != nil {
		v.Date = a.PublishedAt.Format(displayDate)
	}
	return v
}

func toViews(articles []Article) []views.Article {
	out := make([]views.Article, len(articles))
	for i, a := range articles {
		out[i] = toView(a)
	}
	return out
}
