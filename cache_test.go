package quillpress

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// newSharedRedis starts an in-process Redis and returns a client for it.
func newSharedRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestArticleCachePublishedOnly(t *testing.T) {
	s, clock := setupTestStore(t)
	ctx := context.Background()
	createArticle(t, s, "Old", false)
	clock.advance(time.Hour)
	createArticle(t, s, "Draft", true)
	clock.advance(time.Hour)
	createArticle(t, s, "New", false)

	c := NewArticleCache(s, time.Minute, nil)
	articles, err := c.Published(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := slugs(articles); got != "new,old" {
		t.Errorf("Published = %s, want new,old", got)
	}

	if _, err := c.Get(ctx, "draft"); !errors.Is(err, ErrNotFound) {
		t.Errorf("draft through cache err = %v, want ErrNotFound", err)
	}
	a, err := c.Get(ctx, "old")
	if err != nil || a.Title != "Old" {
		t.Errorf("Get(old) = %+v, %v", a, err)
	}
}

func TestArticleCacheInvalidate(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	createArticle(t, s, "First", false)

	c := NewArticleCache(s, time.Hour, nil)
	if articles, _ := c.Published(ctx); len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}

	createArticle(t, s, "Second", false)
	if articles, _ := c.Published(ctx); len(articles) != 1 {
		t.Errorf("cache should still hold the old list, got %d", len(articles))
	}

	if err := c.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if articles, _ := c.Published(ctx); len(articles) != 2 {
		t.Errorf("expected 2 articles after invalidate, got %d", len(articles))
	}
}

func TestArticleCacheExpires(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	c := NewArticleCache(s, time.Nanosecond, nil)
	if articles, _ := c.Published(ctx); len(articles) != 0 {
		t.Fatalf("expected empty list")
	}
	createArticle(t, s, "Later", false)
	time.Sleep(time.Millisecond)
	if articles, _ := c.Published(ctx); len(articles) != 1 {
		t.Errorf("expired cache should reload, got %d", len(articles))
	}
}

func TestArticleCacheSharedInvalidation(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	_, client := newSharedRedis(t)
	createArticle(t, s, "First", false)

	a := NewArticleCache(s, time.Hour, client)
	b := NewArticleCache(s, time.Hour, client)
	if articles, err := b.Published(ctx); err != nil || len(articles) != 1 {
		t.Fatalf("b.Published = %d, %v", len(articles), err)
	}

	createArticle(t, s, "Second", false)
	if err := a.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	articles, err := b.Published(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(articles) != 2 {
		t.Errorf("b after invalidation on a sees %d articles, want 2", len(articles))
	}
}

func TestArticleCacheSharedFill(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	mr, client := newSharedRedis(t)
	createArticle(t, s, "First", false)

	a := NewArticleCache(s, time.Hour, client)
	if _, err := a.Published(ctx); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists(publishedKey) {
		t.Fatalf("list should be written to redis")
	}

	// Written behind the caches' back: a second instance must still be
	// served from the shared list.
	createArticle(t, s, "Second", false)
	b := NewArticleCache(s, time.Hour, client)
	if articles, _ := b.Published(ctx); len(articles) != 1 {
		t.Errorf("b should load the shared list, got %d articles", len(articles))
	}
}

func TestArticleCacheIgnoresStaleSharedList(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	mr, client := newSharedRedis(t)
	createArticle(t, s, "First", false)

	a := NewArticleCache(s, time.Hour, client)
	old, err := a.Published(ctx)
	if err != nil {
		t.Fatal(err)
	}
	createArticle(t, s, "Second", false)
	if err := a.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	if gen, _ := mr.Get(generationKey); gen != "1" {
		t.Errorf("generation = %q, want 1", gen)
	}

	// A reload that started before the invalidation writes its list late.
	if err := a.storeShared(ctx, 0, old); err != nil {
		t.Fatal(err)
	}
	b := NewArticleCache(s, time.Hour, client)
	if articles, _ := b.Published(ctx); len(articles) != 2 {
		t.Errorf("stale shared list was used: %d articles", len(articles))
	}

	raw, err := mr.Get(publishedKey)
	if err != nil {
		t.Fatal(err)
	}
	var list sharedList
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		t.Fatal(err)
	}
	if list.Generation != 1 || len(list.Articles) != 2 {
		t.Errorf("shared list = generation %d, %d articles", list.Generation, len(list.Articles))
	}
}

func TestArticleCacheRedisDown(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	mr, client := newSharedRedis(t)
	createArticle(t, s, "First", false)
	mr.Close()

	c := NewArticleCache(s, time.Hour, client)
	articles, err := c.Published(ctx)
	if err != nil || len(articles) != 1 {
		t.Fatalf("Published without redis = %d, %v", len(articles), err)
	}
	if err := c.Invalidate(ctx); err == nil {
		t.Errorf("Invalidate should report the redis error")
	}
	createArticle(t, s, "Second", false)
	if articles, _ := c.Published(ctx); len(articles) != 2 {
		t.Errorf("local invalidation should still apply, got %d", len(articles))
	}
}
