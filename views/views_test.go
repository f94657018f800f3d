package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

var testSite = SiteConfig{
	Name:        "Test Blog",
	URL:         "https://example.com",
	Description: "Notes",
	Author:      "Jo",
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestArticlePageEscapesTitleAndKeepsContent(t *testing.T) {
	out := render(t, ArticlePage(testSite, Session{}, Article{
		Title:     "<b>Title</b>",
		Slug:      "title",
		Content:   "<p>Body <strong>text</strong></p>",
		Date:      "Jan 2, 2026",
		ISODate:   "2026-01-02",
		Published: true,
		Link:      "/blog/title",
	}, &ArticleLink{Title: "Older", Link: "/blog/older"}))

	if strings.Contains(out, "<b>Title</b>") {
		t.Errorf("title was not escaped")
	}
	if !strings.Contains(out, "&lt;b&gt;Title&lt;/b&gt;") {
		t.Errorf("escaped title missing")
	}
	if !strings.Contains(out, "<p>Body <strong>text</strong></p>") {
		t.Errorf("content should be rendered as HTML")
	}
	if !strings.Contains(out, `href="/blog/older"`) {
		t.Errorf("read-next link missing")
	}
	if !strings.Contains(out, `<link rel="canonical" href="https://example.com/blog/title">`) {
		t.Errorf("canonical URL missing: %s", out)
	}
	if !strings.Contains(out, `"datePublished":"2026-01-02"`) {
		t.Errorf("JSON-LD missing datePublished")
	}
}

func TestArticlePageDraftBadge(t *testing.T) {
	out := render(t, ArticlePage(testSite, Session{Admin: true}, Article{Title: "Draft", Slug: "d"}, nil))
	if !strings.Contains(out, "Draft</span>") {
		t.Errorf("expected draft badge")
	}
	if strings.Contains(out, "Read next") {
		t.Errorf("no next article should render no aside")
	}
}

func TestLayoutAdminShowsLogout(t *testing.T) {
	out := render(t, Blog(testSite, Session{Admin: true, CSRFToken: "tok"}, nil))
	if !strings.Contains(out, `action="/logout"`) || !strings.Contains(out, `value="tok"`) {
		t.Errorf("expected logout form with CSRF token")
	}
	if strings.Contains(out, `href="/login"`) {
		t.Errorf("admin should not see the login link")
	}

	out = render(t, Blog(testSite, Session{}, nil))
	if !strings.Contains(out, `href="/login"`) {
		t.Errorf("anonymous visitor should see the login link")
	}
	if !strings.Contains(out, "No articles yet.") {
		t.Errorf("expected empty state")
	}
}

func TestHomeLimitsArticles(t *testing.T) {
	articles := []Article{
		{Title: "A", Link: "/blog/a"},
		{Title: "B", Link: "/blog/b"},
		{Title: "C", Link: "/blog/c"},
		{Title: "D", Link: "/blog/d"},
	}
	home := HomePage{
		Title:      "Welcome",
		IntroStep2: &IntroStep{Label: "2", Title: "Second"},
		FAQs:       "**Why?** Because.",
	}
	out := render(t, Home(testSite, Session{}, home, articles))
	if strings.Contains(out, "/blog/d") {
		t.Errorf("home should list only %d articles", HomeArticleCount)
	}
	if !strings.Contains(out, "<h1>Welcome</h1>") {
		t.Errorf("home title missing")
	}
	if !strings.Contains(out, "Second") {
		t.Errorf("intro step missing")
	}
	if !strings.Contains(out, "<strong>Why?</strong>") {
		t.Errorf("FAQs should be rendered as markdown")
	}
	if !strings.Contains(out, `id="contact"`) {
		t.Errorf("contact anchor missing")
	}
}

func TestLoginIncorrectFlag(t *testing.T) {
	out := render(t, Login(testSite, false, "tok"))
	if strings.Contains(out, "Incorrect password") {
		t.Errorf("unexpected error message")
	}
	if !strings.Contains(out, `name="_csrf" value="tok"`) {
		t.Errorf("missing CSRF field")
	}
	out = render(t, Login(testSite, true, "tok"))
	if !strings.Contains(out, "Incorrect password") {
		t.Errorf("expected error message")
	}
}

func TestErrorPages(t *testing.T) {
	if out := render(t, NotFound(testSite)); !strings.Contains(out, "Page not found") {
		t.Errorf("404 page: %s", out)
	}
	if out := render(t, ServerError(testSite)); !strings.Contains(out, "Something went wrong") {
		t.Errorf("500 page: %s", out)
	}
}

func TestImprintRendersMarkdown(t *testing.T) {
	out := render(t, Imprint(testSite, Session{}, ImprintPage{Imprint: "Jo *Doe*", Price: "free"}))
	if !strings.Contains(out, "<h1>Imprint</h1>") {
		t.Errorf("default title missing")
	}
	if !strings.Contains(out, "<em>Doe</em>") || !strings.Contains(out, "free") {
		t.Errorf("imprint body missing: %s", out)
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	out := WebsiteJsonLD(testSite)
	for _, want := range []string{`"@type":"WebSite"`, `"url":"https://example.com/"`, `"name":"Jo"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}

func TestBuildURL(t *testing.T) {
	if got := buildURL("https://example.com", "blog", "a b"); got != "https://example.com/blog/a%20b" {
		t.Errorf("buildURL = %q", got)
	}
	if got := buildURL("https://example.com"); got != "https://example.com/" {
		t.Errorf("buildURL root = %q", got)
	}
}
