package store

import (
	"context"
	"strings"
	"time"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// minCacheSize is the smallest cache freecache will allocate.
const minCacheSize = 512 * 1024

// Cached serves point reads from an in-memory cache. Writes made through it
// invalidate the affected entry; writes by other processes become visible
// once the entry expires.
type Cached struct {
	Store
	cache *freecache.Cache
	ttl   int
}

var _ Store = (*Cached)(nil)

// NewCached wraps s with a point-read cache of sizeMB megabytes. A size of
// zero or less returns s unchanged.
func NewCached(s Store, sizeMB int, ttl time.Duration) Store {
	if sizeMB <= 0 {
		return s
	}
	size := sizeMB * 1024 * 1024
	if size < minCacheSize {
		size = minCacheSize
	}
	return &Cached{
		Store: s,
		cache: freecache.NewCache(size),
		ttl:   max(int(ttl.Seconds()), 1),
	}
}

func cacheKey(collection, id string) []byte {
	return []byte(collection + "/" + id)
}

func (c *Cached) Get(ctx context.Context, collection, id string) (Document, error) {
	key := cacheKey(collection, id)
	if val, err := c.cache.Get(key); err == nil {
		var doc Document
		if err := json.Unmarshal(val, &doc); err == nil {
			return doc, nil
		}
		c.cache.Del(key)
	}
	doc, err := c.Store.Get(ctx, collection, id)
	if err != nil {
		return Document{}, err
	}
	if val, err := json.Marshal(doc); err == nil {
		if err := c.cache.Set(key, val, c.ttl); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Str("key", string(key)).Msg("store: cache set")
		}
	}
	return doc, nil
}

// Update evicts the entry on both sides of the write so a read racing the
// write cannot keep the old document cached.
func (c *Cached) Update(ctx context.Context, collection, id string, fields map[string]any, serverTimestamps ...string) error {
	key := cacheKey(collection, id)
	c.cache.Del(key)
	defer c.cache.Del(key)
	return c.Store.Update(ctx, collection, id, fields, serverTimestamps...)
}

// Delete evicts the document and every cached document below it, such as
// the messages of a deleted item.
func (c *Cached) Delete(ctx context.Context, collection, id string) error {
	c.evict(collection, id)
	defer c.evict(collection, id)
	return c.Store.Delete(ctx, collection, id)
}

func (c *Cached) evict(collection, id string) {
	key := cacheKey(collection, id)
	c.cache.Del(key)
	prefix := string(key) + "/"
	var nested [][]byte
	it := c.cache.NewIterator()
	for entry := it.Next(); entry != nil; entry = it.Next() {
		if strings.HasPrefix(string(entry.Key), prefix) {
			nested = append(nested, entry.Key)
		}
	}
	for _, k := range nested {
		c.cache.Del(k)
	}
}

// Stats reports cache hits and misses.
func (c *Cached) Stats() (hits, misses int64) {
	return c.cache.HitCount(), c.cache.MissCount()
}
