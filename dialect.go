package quillpress

import (
	"database/sql/driver"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
)

// casefold lower-cases text with Go's Unicode tables. SQLite's own lower()
// and LIKE only fold ASCII.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("casefold", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		}
		return args[0], nil
	})
}

// dialect captures the few places where SQLite and Postgres disagree: the
// driver name, placeholder syntax, title matching and column types in the
// schema.
type dialect struct {
	name     string
	driver   string
	numbered bool // $1, $2 ... instead of ?

	// titleMatch compares the title against a lower-cased LIKE pattern.
	titleMatch string
	schema     []string
}

var sqliteDialect = dialect{
	name:       "sqlite",
	driver:     "sqlite",
	titleMatch: "casefold(title) LIKE",
	schema:     []string{
		`CREATE TABLE IF NOT EXISTS articles (
    article_id INTEGER PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    teaser TEXT NOT NULL,
    content TEXT,
    created_at TEXT,
    published_at TEXT,
    updated_at TEXT
)`,
		`CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    expires TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS pages (
    page_id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS counters (
    counter_id TEXT PRIMARY KEY,
    count INTEGER NOT NULL DEFAULT 1
)`,
		`CREATE TABLE IF NOT EXISTS assets (
    asset_id TEXT PRIMARY KEY,
    mime_type TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    size INTEGER NOT NULL,
    data BLOB NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires)`,
	},
}

var postgresDialect = dialect{
	name:       "postgres",
	driver:     "pgx",
	numbered:   true,
	titleMatch: "title ILIKE",
	schema:     []string{
		`CREATE TABLE IF NOT EXISTS articles (
    article_id BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    title TEXT NOT NULL,
    teaser TEXT NOT NULL,
    content TEXT,
    created_at TEXT,
    published_at TEXT,
    updated_at TEXT
)`,
		`CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    expires TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS pages (
    page_id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS counters (
    counter_id TEXT PRIMARY KEY,
    count BIGINT NOT NULL DEFAULT 1
)`,
		`CREATE TABLE IF NOT EXISTS assets (
    asset_id TEXT PRIMARY KEY,
    mime_type TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    size BIGINT NOT NULL,
    data BYTEA NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires)`,
	},
}

// bind rewrites ? placeholders for drivers that use numbered parameters.
// Queries in this package never contain a literal question mark.
func (d dialect) bind(q string) string {
	if !d.numbered {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// sqlitePragmas are applied to every pooled connection through the DSN.
// WAL lets readers proceed during writes; busy_timeout makes writers wait
// instead of failing with SQLITE_BUSY.
var sqlitePragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"cache_size(-8000)",
}

// resolveDatabase picks a dialect for a DATABASE_URL and returns the DSN to
// hand to database/sql. authToken is applied as the Postgres password when
// the URL does not carry one; a Postgres URL without a user name cannot take
// a token and is rejected.
func resolveDatabase(rawURL, authToken string) (dialect, string, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return dialect{}, "", fmt.Errorf("database url is empty")
	}
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		u, err := url.Parse(raw)
		if err != nil {
			return dialect{}, "", fmt.Errorf("parse database url: %w", err)
		}
		if authToken != "" && (u.User == nil || u.User.Username() == "") {
			return dialect{}, "", fmt.Errorf("database url %q needs a user name to apply DATABASE_AUTH_TOKEN", redactURL(raw))
		}
		if authToken != "" {
			if _, ok := u.User.Password(); !ok {
				u.User = url.UserPassword(u.User.Username(), authToken)
			}
		}
		return postgresDialect, u.String(), nil
	case strings.HasPrefix(lower, "libsql://"), strings.HasPrefix(lower, "http://"),
		strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "wss://"):
		return dialect{}, "", fmt.Errorf("unsupported database url scheme in %q: use a local SQLite path or postgres://", redactURL(raw))
	}

	path := raw
	switch {
	case strings.HasPrefix(lower, "sqlite://"):
		path = raw[len("sqlite://"):]
	case strings.HasPrefix(lower, "sqlite:"):
		path = raw[len("sqlite:"):]
	case strings.HasPrefix(lower, "file:"):
		path = raw[len("file:"):]
	}
	query := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i+1:]
	}
	if path == "" {
		return dialect{}, "", fmt.Errorf("database url %q has no path", raw)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return dialect{}, "", fmt.Errorf("create database dir: %w", err)
		}
	}
	params := make([]string, 0, len(sqlitePragmas)+1)
	if query != "" {
		params = append(params, query)
	}
	for _, p := range sqlitePragmas {
		params = append(params, "_pragma="+p)
	}
	return sqliteDialect, path + "?" + strings.Join(params, "&"), nil
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
