package quillpress

import (
	"encoding/json"
	"path"
	"time"
)

// User is the identity attached to a request with a valid session. There is
// a single role, so every authenticated user is the admin.
type User struct {
	Name string `json:"name"`
}

// adminUser is the fixed identity returned for any live session.
var adminUser = User{Name: "Admin"}

// Article is the core content type: an HTML document with a title, a teaser
// and three independent timestamps.
type Article struct {
	ID          int64      `json:"article_id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Teaser      string     `json:"teaser"`
	Content     string     `json:"content"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Published reports whether the article is visible to anonymous readers.
func (a Article) Published() bool {
	return a.PublishedAt != nil
}

// ModifiedAt is the effective date used for ordering: published, else
// updated, else created.
func (a Article) ModifiedAt() time.Time {
	switch {
	case a.PublishedAt != nil:
		return *a.PublishedAt
	case !a.UpdatedAt.IsZero():
		return a.UpdatedAt
	default:
		return a.CreatedAt
	}
}

// Link returns the site-relative URL of the article.
func (a Article) Link() string {
	return "/blog/" + a.Slug
}

// ArticleInput carries the editable fields of an article.
type ArticleInput struct {
	Title   string `json:"title"`
	Teaser  string `json:"teaser"`
	Content string `json:"content"`
	// Format is "html" (default) or "markdown".
	Format string `json:"format,omitempty"`
	// Draft leaves published_at empty on create.
	Draft bool `json:"draft,omitempty"`
}

// ArticleRef is returned by mutations: the slug plus the timestamp the
// mutation wrote.
type ArticleRef struct {
	Slug      string     `json:"slug"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ArticleSummary is the projection used for "read next" links.
type ArticleSummary struct {
	Title       string    `json:"title"`
	Teaser      string    `json:"teaser"`
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"published_at"`
}

// SearchResult is a single hit returned by Store.Search. Shortcuts carry a
// nil ModifiedAt.
type SearchResult struct {
	Name       string     `json:"name"`
	URL        string     `json:"url"`
	ModifiedAt *time.Time `json:"modified_at"`
}

// Shortcut is a fixed navigational entry merged into search results.
type Shortcut struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Shortcuts are matched by name against every search query.
var Shortcuts = []Shortcut{
	{Name: "About", URL: "/"},
	{Name: "Blog", URL: "/blog"},
	{Name: "Contact", URL: "/#contact"},
	{Name: "Imprint", URL: "/imprint"},
	{Name: "Login", URL: "/login"},
}

// Page is an editable page: an opaque JSON document keyed by page id.
type Page struct {
	ID        string          `json:"page_id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Asset is a stored file. ID doubles as its storage path.
type Asset struct {
	ID        string    `json:"asset_id"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
	Data      []byte    `json:"-"`
}

// Filename is the last segment of the asset path.
func (a Asset) Filename() string {
	return path.Base(a.ID)
}
