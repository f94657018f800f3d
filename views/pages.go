package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/quillpress/markdown"
)

// HomeArticleCount is the number of recent articles listed on the home page.
const HomeArticleCount = 3

func articleList(articles []Article, admin bool) templ.Component {
	return component(func(h *writer) {
		if len(articles) == 0 {
			h.raw(`<p class="empty">No articles yet.</p>`)
			return
		}
		h.raw(`<ul class="articles">`)
		for _, a := range articles {
			h.raw(`<li><article><h2><a`)
			h.attr("href", a.Link)
			h.raw(">")
			h.text(a.Title)
			h.raw("</a></h2>")
			if a.Published {
				h.raw(`<time`)
				h.attr("datetime", a.ISODate)
				h.raw(">")
				h.text(a.Date)
				h.raw("</time>")
			} else if admin {
				h.raw(`<span class="badge">Draft</span>`)
			}
			if a.Teaser != "" {
				h.raw("<p>")
				h.text(a.Teaser)
				h.raw("</p>")
			}
			h.raw("</article></li>")
		}
		h.raw("</ul>")
	})
}

// Home renders the landing page from the editable home document and the
// most recent articles.
func Home(site SiteConfig, sess Session, home HomePage, articles []Article) templ.Component {
	if len(articles) > HomeArticleCount {
		articles = articles[:HomeArticleCount]
	}
	title := home.Title
	if title == "" {
		title = site.Name
	}
	body := component(func(h *writer) {
		h.raw(`<section class="hero"><h1>`)
		h.text(title)
		h.raw("</h1>")
		if site.Description != "" {
			h.raw("<p>")
			h.text(site.Description)
			h.raw("</p>")
		}
		h.raw("</section>")

		if steps := home.IntroSteps(); len(steps) > 0 {
			h.raw(`<section class="intro"><ol>`)
			for _, s := range steps {
				h.raw(`<li><span class="label">`)
				h.text(s.Label)
				h.raw("</span><h3>")
				h.text(s.Title)
				h.raw("</h3><p>")
				h.text(s.Description)
				h.raw("</p></li>")
			}
			h.raw("</ol></section>")
		}

		h.raw(`<section class="latest"><h2>Latest articles</h2>`)
		h.component(articleList(articles, sess.Admin))
		h.raw(`<p><a href="/blog">All articles</a></p></section>`)

		if len(home.Testimonials) > 0 {
			h.raw(`<section class="testimonials">`)
			for _, t := range home.Testimonials {
				h.raw("<figure>")
				if t.Image != "" {
					h.raw("<img")
					h.attr("src", t.Image)
					h.attr("alt", t.Name)
					h.raw(">")
				}
				h.raw("<blockquote>")
				h.text(t.Text)
				h.raw("</blockquote><figcaption>")
				h.text(t.Name)
				h.raw("</figcaption></figure>")
			}
			h.raw("</section>")
		}

		if home.Bio != "" || home.BioTitle != "" {
			h.raw(`<section class="bio">`)
			if home.BioPicture != "" {
				h.raw("<img")
				h.attr("src", home.BioPicture)
				h.attr("alt", home.BioTitle)
				h.raw(">")
			}
			if home.BioTitle != "" {
				h.raw("<h2>")
				h.text(home.BioTitle)
				h.raw("</h2>")
			}
			h.component(markdown.Markdown(home.Bio))
			h.raw("</section>")
		}

		if home.FAQs != "" {
			h.raw(`<section class="faqs"><h2>FAQ</h2>`)
			h.component(markdown.Markdown(home.FAQs))
			h.raw("</section>")
		}
		h.raw(`<section id="contact"></section>`)
	})
	return Layout(site, PageMeta{URL: buildURL(site.URL)}, sess, body)
}

// Blog renders the full article list.
func Blog(site SiteConfig, sess Session, articles []Article) templ.Component {
	body := component(func(h *writer) {
		h.raw("<h1>Blog</h1>")
		h.component(articleList(articles, sess.Admin))
	})
	return Layout(site, PageMeta{Title: "Blog", URL: buildURL(site.URL, "blog")}, sess, body)
}

// ArticlePage renders a single article with an optional "read next" link.
func ArticlePage(site SiteConfig, sess Session, article Article, next *ArticleLink) templ.Component {
	body := component(func(h *writer) {
		h.raw(`<script type="application/ld+json">`, ArticleJsonLD(site, article), `</script>`)
		h.raw(`<article class="post"><header><h1>`)
		h.text(article.Title)
		h.raw("</h1>")
		if article.Published {
			h.raw("<time")
			h.attr("datetime", article.ISODate)
			h.raw(">")
			h.text(article.Date)
			h.raw("</time>")
		} else {
			h.raw(`<span class="badge">Draft</span>`)
		}
		h.raw(`</header><div class="content">`)
		h.raw(article.Content)
		h.raw("</div></article>")

		if next != nil {
			h.raw(`<aside class="next"><h2>Read next</h2><a`)
			h.attr("href", next.Link)
			h.raw("><strong>")
			h.text(next.Title)
			h.raw("</strong>")
			if next.Teaser != "" {
				h.raw("<p>")
				h.text(next.Teaser)
				h.raw("</p>")
			}
			h.raw("</a></aside>")
		}
	})
	meta := PageMeta{
		Title:       article.Title,
		Description: article.Teaser,
		URL:         buildURL(site.URL, "blog", article.Slug),
		OGType:      "article",
	}
	return Layout(site, meta, sess, body)
}

// Imprint renders the legal notice page.
func Imprint(site SiteConfig, sess Session, page ImprintPage) templ.Component {
	title := page.Title
	if title == "" {
		title = "Imprint"
	}
	body := component(func(h *writer) {
		h.raw("<h1>")
		h.text(title)
		h.raw("</h1>")
		h.component(markdown.Markdown(page.Imprint))
		if page.Price != "" {
			h.raw(`<p class="price">`)
			h.text(page.Price)
			h.raw("</p>")
		}
	})
	return Layout(site, PageMeta{Title: title, URL: buildURL(site.URL, "imprint")}, sess, body)
}

// Login renders the password form. incorrect marks a failed attempt.
func Login(site SiteConfig, incorrect bool, csrfToken string) templ.Component {
	body := component(func(h *writer) {
		h.raw(`<h1>Login</h1><form class="login" method="post" action="/login">`)
		h.raw(`<input type="hidden" name="_csrf"`)
		h.attr("value", csrfToken)
		h.raw(`><label for="password">Password</label>`)
		h.raw(`<input id="password" name="password" type="password" autocomplete="current-password" required autofocus>`)
		if incorrect {
			h.raw(`<p class="error" role="alert">Incorrect password.</p>`)
		}
		h.raw(`<button type="submit">Log in</button></form>`)
	})
	return Layout(site, PageMeta{Title: "Login", URL: buildURL(site.URL, "login")}, Session{CSRFToken: csrfToken}, body)
}

// NotFound renders the 404 page.
func NotFound(site SiteConfig) templ.Component {
	return errorPage(site, 404, "Page not found", "The page you are looking for does not exist.")
}

// ServerError renders the 500 page.
func ServerError(site SiteConfig) templ.Component {
	return errorPage(site, 500, "Something went wrong", "Please try again later.")
}

func errorPage(site SiteConfig, code int, title, message string) templ.Component {
	body := component(func(h *writer) {
		h.raw(`<section class="error"><p class="code">`, strconv.Itoa(code), "</p><h1>")
		h.text(title)
		h.raw("</h1><p>")
		h.text(message)
		h.raw(`</p><p><a href="/">Back to the home page</a></p></section>`)
	})
	return Layout(site, PageMeta{Title: title}, Session{}, body)
}
