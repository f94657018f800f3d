package quillpress

import (
	"net/http"

	"github.com/gorilla/feeds"
	"github.com/labstack/echo/v4"
)

// feedSize caps the number of articles in the RSS feed.
const feedSize = 20

func (a *App) buildFeed(articles []Article) *feeds.Feed {
	base := a.Config.URL
	feed := &feeds.Feed{
		Title:       a.Config.Name,
		Link:        &feeds.Link{Href: BuildURL(base)},
		Description: a.Config.Description,
	}
	if a.Config.Author != "" {
		feed.Author = &feeds.Author{Name: a.Config.Author}
	}
	if len(articles) > feedSize {
		articles = articles[:feedSize]
	}
	for _, ar := range articles {
		if !ar.Published() {
			continue
		}
		articleURL := BuildURL(base, "blog", ar.Slug)
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       ar.Title,
			Link:        &feeds.Link{Href: articleURL},
			Id:          articleURL,
			Description: ar.Teaser,
			Content:     ar.Content,
			Created:     *ar.PublishedAt,
			Updated:     ar.UpdatedAt,
		})
		if m := ar.ModifiedAt(); m.After(feed.Updated) {
			feed.Updated = m
		}
	}
	return feed
}

func (a *App) renderRSS(c echo.Context, articles []Article) error {
	rss, err := a.buildFeed(articles).ToRss()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}
