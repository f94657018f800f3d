package quillpress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store wraps the relational database and provides one method per data
// access operation. It works against SQLite (default) or Postgres.
type Store struct {
	db      *sql.DB
	dialect dialect
	secret  adminSecret
	now     func() time.Time
}

// StoreConfig selects the database and the admin secret checked by
// Authenticate.
type StoreConfig struct {
	URL               string // SQLite path, file:/sqlite:// URL or postgres:// URL
	AuthToken         string // Postgres password when the URL has none
	AdminPassword     string
	AdminPasswordHash string // bcrypt; wins over AdminPassword when set
}

// NewStore opens the database named by cfg.URL and runs schema migrations.
func NewStore(ctx context.Context, cfg StoreConfig) (*Store, error) {
	d, dsn, err := resolveDatabase(cfg.URL, cfg.AuthToken)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.name, err)
	}
	if d.name == sqliteDialect.name {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(4)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s database: %w", d.name, err)
	}
	s := &Store{
		db:      db,
		dialect: d,
		secret:  newAdminSecret(cfg.AdminPassword, cfg.AdminPasswordHash),
		now:     time.Now,
	}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect names the backing database ("sqlite" or "postgres").
func (s *Store) Dialect() string {
	return s.dialect.name
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) bind(q string) string {
	return s.dialect.bind(q)
}

// clock returns the current time at the precision timestamps are stored with.
func (s *Store) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// timeLayout is fixed width so that text comparison orders chronologically.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q", v)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := parseTime(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// --- Articles ---

const articleColumns = `article_id, slug, title, teaser, content, created_at, published_at, updated_at`

// effectiveDate orders articles by published, else updated, else created.
const effectiveDate = `COALESCE(published_at, updated_at, created_at)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (Article, error) {
	var a Article
	var content, created, published, updated sql.NullString
	if err := row.Scan(&a.ID, &a.Slug, &a.Title, &a.Teaser, &content, &created, &published, &updated); err != nil {
		return Article{}, err
	}
	a.Content = content.String
	var err error
	if a.PublishedAt, err = parseNullTime(published); err != nil {
		return Article{}, err
	}
	if t, err := parseNullTime(created); err != nil {
		return Article{}, err
	} else if t != nil {
		a.CreatedAt = *t
	}
	if t, err := parseNullTime(updated); err != nil {
		return Article{}, err
	} else if t != nil {
		a.UpdatedAt = *t
	}
	return a, nil
}

func (s *Store) queryArticles(ctx context.Context, query string, args ...any) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	articles := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return articles, nil
}

func (s *Store) slugExists(ctx context.Context, slug string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT 1 FROM articles WHERE slug = ? LIMIT 1`), slug).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return true, nil
}

// CreateArticle inserts a new article. The slug is derived from the title;
// when it is already taken a random suffix is appended. The article is
// published immediately unless in.Draft is set.
func (s *Store) CreateArticle(ctx context.Context, user *User, in ArticleInput) (ArticleRef, error) {
	if user == nil {
		return ArticleRef{}, ErrNotAuthorized
	}
	slug := Slugify(in.Title)
	if slug == "" {
		slug = NewID()
	} else {
		taken, err := s.slugExists(ctx, slug)
		if err != nil {
			return ArticleRef{}, err
		}
		if taken {
			slug = slug + "-" + NewID()
		}
	}

	now := s.clock()
	ts := formatTime(now)
	var published any
	if !in.Draft {
		published = ts
	}
	_, err := s.db.ExecContext(ctx, s.bind(`INSERT INTO articles (slug, title, teaser, content, created_at, published_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		slug, in.Title, in.Teaser, in.Content, ts, published, ts)
	if err != nil {
		return ArticleRef{}, fmt.Errorf("insert article: %w", err)
	}
	return ArticleRef{Slug: slug, CreatedAt: &now}, nil
}

// UpdateArticle overwrites title, teaser and content and stamps updated_at.
func (s *Store) UpdateArticle(ctx context.Context, user *User, slug string, in ArticleInput) (ArticleRef, error) {
	if user == nil {
		return ArticleRef{}, ErrNotAuthorized
	}
	now := s.clock()
	res, err := s.db.ExecContext(ctx, s.bind(`UPDATE articles SET title = ?, teaser = ?, content = ?, updated_at = ? WHERE slug = ?`),
		in.Title, in.Teaser, in.Content, formatTime(now), slug)
	if err != nil {
		return ArticleRef{}, fmt.Errorf("update article: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return ArticleRef{}, fmt.Errorf("update article: %w", err)
	} else if n == 0 {
		return ArticleRef{}, ErrNotFound
	}
	return ArticleRef{Slug: slug, UpdatedAt: &now}, nil
}

// SetPublished stamps published_at with the current time, or clears it.
func (s *Store) SetPublished(ctx context.Context, user *User, slug string, published bool) error {
	if user == nil {
		return ErrNotAuthorized
	}
	var value any
	if published {
		value = formatTime(s.clock())
	}
	res, err := s.db.ExecContext(ctx, s.bind(`UPDATE articles SET published_at = ? WHERE slug = ?`), value, slug)
	if err != nil {
		return fmt.Errorf("set published: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("set published: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteArticle removes an article and reports whether a row was deleted.
func (s *Store) DeleteArticle(ctx context.Context, user *User, slug string) (bool, error) {
	if user == nil {
		return false, ErrNotAuthorized
	}
	res, err := s.db.ExecContext(ctx, s.bind(`DELETE FROM articles WHERE slug = ?`), slug)
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete article: %w", err)
	}
	return n > 0, nil
}

// ListArticles returns every article for an authenticated user, ordered by
// effective modification date, and only published articles otherwise.
func (s *Store) ListArticles(ctx context.Context, user *User) ([]Article, error) {
	if user != nil {
		return s.queryArticles(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY `+effectiveDate+` DESC, article_id DESC`)
	}
	return s.queryArticles(ctx, `SELECT `+articleColumns+` FROM articles WHERE published_at IS NOT NULL ORDER BY published_at DESC, article_id DESC`)
}

// GetArticle returns a single article by slug regardless of its status.
func (s *Store) GetArticle(ctx context.Context, slug string) (Article, error) {
	row := s.db.QueryRowContext(ctx, s.bind(`SELECT `+articleColumns+` FROM articles WHERE slug = ? LIMIT 1`), slug)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Article{}, ErrNotFound
	}
	if err != nil {
		return Article{}, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

func scanSummary(row rowScanner) (ArticleSummary, error) {
	var sum ArticleSummary
	var published string
	if err := row.Scan(&sum.Title, &sum.Teaser, &sum.Slug, &published); err != nil {
		return ArticleSummary{}, err
	}
	t, err := parseTime(published)
	if err != nil {
		return ArticleSummary{}, err
	}
	sum.PublishedAt = t
	return sum, nil
}

// NextArticle returns the article published right before slug. When slug is
// the oldest article it wraps to the most recent one other than itself. It
// returns nil when no other published article exists.
func (s *Store) NextArticle(ctx context.Context, slug string) (*ArticleSummary, error) {
	var published sql.NullString
	err := s.db.QueryRowContext(ctx, s.bind(`SELECT published_at FROM articles WHERE slug = ? LIMIT 1`), slug).Scan(&published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if !published.Valid || published.String == "" {
		return nil, ErrNotPublished
	}

	sum, err := scanSummary(s.db.QueryRowContext(ctx, s.bind(`SELECT title, teaser, slug, published_at FROM articles WHERE published_at IS NOT NULL AND published_at < ? ORDER BY published_at DESC LIMIT 1`), published.String))
	if err == nil {
		return &sum, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("previous article: %w", err)
	}

	sum, err = scanSummary(s.db.QueryRowContext(ctx, s.bind(`SELECT title, teaser, slug, published_at FROM articles WHERE published_at IS NOT NULL AND slug <> ? ORDER BY published_at DESC LIMIT 1`), slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest article: %w", err)
	}
	return &sum, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchQuery selects matching titles. Drafts are left out unless
// withDrafts is set.
func searchQuery(d dialect, withDrafts bool) string {
	query := `SELECT title, slug, ` + effectiveDate + ` FROM articles WHERE ` + d.titleMatch + ` ? ESCAPE '\'`
	if !withDrafts {
		query += ` AND published_at IS NOT NULL`
	}
	return d.bind(query + ` ORDER BY ` + effectiveDate + ` DESC`)
}

// Search matches q case-insensitively against article titles, then appends
// the fixed shortcuts whose name contains q.
func (s *Store) Search(ctx context.Context, q string, user *User) ([]SearchResult, error) {
	needle := strings.ToLower(q)
	pattern := "%" + likeEscaper.Replace(needle) + "%"
	query := searchQuery(s.dialect, user != nil)

	rows, err := s.db.QueryContext(ctx, query, pattern)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	results := []SearchResult{}
	for rows.Next() {
		var title, slug string
		var modified sql.NullString
		if err := rows.Scan(&title, &slug, &modified); err != nil {
			return nil, fmt.Errorf("scan search result: %w", err)
		}
		t, err := parseNullTime(modified)
		if err != nil {
			return nil, err
		}
		results = append(results, SearchResult{Name: title, URL: "/blog/" + slug, ModifiedAt: t})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search results: %w", err)
	}

	for _, sc := range Shortcuts {
		if strings.Contains(strings.ToLower(sc.Name), needle) {
			results = append(results, SearchResult{Name: sc.Name, URL: sc.URL})
		}
	}
	return results, nil
}
