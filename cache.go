package quillpress

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys for the shared published-article list. The generation is bumped
// on every invalidation; a list stored under an older generation is stale.
const (
	publishedKey  = "quillpress:articles:published"
	generationKey = "quillpress:articles:generation"
)

// sharedList is the Redis payload: a published list and the generation it
// was loaded under.
type sharedList struct {
	Generation int64     `json:"generation"`
	Articles   []Article `json:"articles"`
}

// ArticleCache is an in-memory TTL cache of the published article list, the
// view anonymous readers get. When a Redis client is attached every read
// compares the local copy against the shared generation counter, so an
// invalidation on one instance is seen by all. If Redis is unreachable the
// cache falls back to its TTL.
type ArticleCache struct {
	mu         sync.RWMutex
	articles   []Article
	generation int64
	fetched    time.Time
	ttl        time.Duration
	store      *Store
	shared     *redis.Client
}

// NewArticleCache creates an ArticleCache backed by the given Store. shared
// may be nil.
func NewArticleCache(s *Store, ttl time.Duration, shared *redis.Client) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl, shared: shared}
}

// sharedGeneration reads the current generation. ok is false when no Redis
// client is attached or it cannot be reached.
func (c *ArticleCache) sharedGeneration(ctx context.Context) (gen int64, ok bool) {
	if c.shared == nil {
		return 0, false
	}
	gen, err := c.shared.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, true
	}
	if err != nil {
		return 0, false
	}
	return gen, true
}

func (c *ArticleCache) fresh(gen int64, shared bool) bool {
	if c.articles == nil || time.Since(c.fetched) >= c.ttl {
		return false
	}
	return !shared || c.generation == gen
}

// Invalidate clears the cache so the next read triggers a fresh load, here
// and on every instance sharing the Redis client.
func (c *ArticleCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.articles = nil
	c.mu.Unlock()
	if c.shared == nil {
		return nil
	}
	_, err := c.shared.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, generationKey)
		p.Del(ctx, publishedKey)
		return nil
	})
	return err
}

func (c *ArticleCache) loadShared(ctx context.Context, gen int64) ([]Article, bool) {
	raw, err := c.shared.Get(ctx, publishedKey).Bytes()
	if err != nil {
		// redis.Nil and connection errors alike fall back to the database.
		return nil, false
	}
	var list sharedList
	if err := json.Unmarshal(raw, &list); err != nil || list.Generation != gen {
		return nil, false
	}
	if list.Articles == nil {
		list.Articles = []Article{}
	}
	return list.Articles, true
}

// storeShared writes articles tagged with the generation they were loaded
// under. Readers ignore a payload whose generation has since moved on.
func (c *ArticleCache) storeShared(ctx context.Context, gen int64, articles []Article) error {
	raw, err := json.Marshal(sharedList{Generation: gen, Articles: articles})
	if err != nil {
		return err
	}
	return c.shared.Set(ctx, publishedKey, raw, c.ttl).Err()
}

func (c *ArticleCache) load(ctx context.Context, gen int64, shared bool) error {
	var articles []Article
	ok := false
	if shared {
		articles, ok = c.loadShared(ctx, gen)
	}
	if !ok {
		var err error
		articles, err = c.store.ListArticles(ctx, nil)
		if err != nil {
			return err
		}
		if shared {
			// A failed shared write only costs other instances a reload.
			_ = c.storeShared(ctx, gen, articles)
		}
	}
	c.articles = articles
	c.generation = gen
	c.fetched = time.Now()
	return nil
}

// Published returns the published articles, newest first. It tries a read
// lock first and only takes the write lock if a reload is needed.
func (c *ArticleCache) Published(ctx context.Context) ([]Article, error) {
	gen, shared := c.sharedGeneration(ctx)

	c.mu.RLock()
	if c.fresh(gen, shared) {
		articles := c.articles
		c.mu.RUnlock()
		return articles, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fresh(gen, shared) {
		if err := c.load(ctx, gen, shared); err != nil {
			return nil, err
		}
	}
	return c.articles, nil
}

// Get returns a single published article by slug from the cache.
func (c *ArticleCache) Get(ctx context.Context, slug string) (Article, error) {
	articles, err := c.Published(ctx)
	if err != nil {
		return Article{}, err
	}
	for _, a := range articles {
		if a.Slug == slug {
			return a, nil
		}
	}
	return Article{}, ErrNotFound
}
