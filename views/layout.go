package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so components can emit markup
// without checking every call.
type writer struct {
	ctx context.Context
	w   io.Writer
	err error
}

func (h *writer) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *writer) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *writer) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (h *writer) component(c templ.Component) {
	if h.err != nil || c == nil {
		return
	}
	h.err = c.Render(h.ctx, h.w)
}

func component(fn func(h *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &writer{ctx: ctx, w: w}
		fn(h)
		return h.err
	})
}

// Layout wraps body in the site chrome: head metadata, navigation and
// footer.
func Layout(site SiteConfig, meta PageMeta, sess Session, body templ.Component) templ.Component {
	return component(func(h *writer) {
		title := site.Name
		if meta.Title != "" {
			title = meta.Title + " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		canonical := meta.URL
		if canonical == "" {
			canonical = buildURL(site.URL)
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		if description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", description)
			h.raw(">")
		}
		h.raw(`<link rel="canonical"`)
		h.attr("href", canonical)
		h.raw(">")
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw(`><meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(`><meta property="og:url"`)
		h.attr("content", canonical)
		h.raw(">")
		h.raw(`<link rel="alternate" type="application/rss+xml"`)
		h.attr("title", site.Name)
		h.raw(` href="/feed.xml">`)
		h.raw(`<script type="application/ld+json">`, WebsiteJsonLD(site), `</script>`)
		h.raw(`</head><body><header><nav><a class="brand" href="/">`)
		h.text(site.Name)
		h.raw(`</a> <a href="/blog">Blog</a> <a href="/imprint">Imprint</a> `)
		if sess.Admin {
			h.raw(`<form class="logout" method="post" action="/logout"><input type="hidden" name="_csrf"`)
			h.attr("value", sess.CSRFToken)
			h.raw(`><button type="submit">Log out</button></form>`)
		} else {
			h.raw(`<a href="/login">Login</a>`)
		}
		h.raw(`</nav></header><main>`)
		h.component(body)
		h.raw(`</main><footer><p>&copy; `)
		if site.Author != "" {
			h.text(site.Author)
		} else {
			h.text(site.Name)
		}
		h.raw(` &middot; <a href="/feed.xml">RSS</a></p></footer></body></html>`)
	})
}
