package quillpress

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

func sitemapDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.DateOnly)
}

// buildSitemap lists the static pages and every published article. The
// home and blog index carry the date of the newest article.
func (a *App) buildSitemap(articles []Article) sitemapURLSet {
	base := a.Config.URL
	var newest time.Time
	entries := make([]sitemapURL, 0, len(articles))
	for _, ar := range articles {
		if !ar.Published() {
			continue
		}
		mod := ar.ModifiedAt()
		if mod.After(newest) {
			newest = mod
		}
		entries = append(entries, sitemapURL{
			Loc:     BuildURL(base, "blog", ar.Slug),
			LastMod: sitemapDate(mod),
		})
	}

	urls := []sitemapURL{
		{Loc: BuildURL(base), LastMod: sitemapDate(newest), ChangeFreq: "weekly"},
		{Loc: BuildURL(base, "blog"), LastMod: sitemapDate(newest), ChangeFreq: "weekly"},
		{Loc: BuildURL(base, "imprint"), ChangeFreq: "yearly"},
	}
	return sitemapURLSet{XMLNS: sitemapNS, URLs: append(urls, entries...)}
}

func (a *App) renderSitemap(c echo.Context, articles []Article) error {
	out, err := xml.Marshal(a.buildSitemap(articles))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}
