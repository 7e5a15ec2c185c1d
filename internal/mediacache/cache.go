// Package mediacache keeps fetched guest photos and audio clips so the
// gallery keeps working on a flaky venue connection.
//
// Entries are grouped in generations.  Lookups and writes go to the current
// generation; Activate drops every stored generation that is not in the
// allow-list, so bumping the generation name invalidates everything at once.
package mediacache

import (
	"context"
	"net/http"
	"strings"

	"github.com/iliyamo/wedding-guests/internal/config"
	"github.com/iliyamo/wedding-guests/internal/logger"
	"github.com/iliyamo/wedding-guests/internal/model"
)

// Entry is a cached response.
type Entry struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports whether the response is worth caching.
func (e *Entry) OK() bool { return e != nil && e.Status >= 200 && e.Status < 300 }

// Store persists entries per generation.  A miss is (nil, nil).
type Store interface {
	Get(ctx context.Context, generation, url string) (*Entry, error)
	Put(ctx context.Context, generation, url string, e *Entry) error
	Generations(ctx context.Context) ([]string, error)
	Drop(ctx context.Context, generation string) error
}

// Fetcher performs the network request for url.
type Fetcher func(ctx context.Context, url string) (*Entry, error)

// Cache is a fetch-through media cache.
type Cache struct {
	store      Store
	generation string
	allow      []string
	maxBytes   int
}

// New builds a cache over store.  MaxBytes of 0 caches bodies of any size.
func New(store Store, cfg config.MediaCacheConfig) *Cache {
	allow := cfg.Allow
	if len(allow) == 0 {
		allow = []string{cfg.Generation}
	}
	return &Cache{store: store, generation: cfg.Generation, allow: allow, maxBytes: cfg.MaxBytes}
}

// Generation returns the name entries are written under.
func (c *Cache) Generation() string { return c.generation }

// Activate drops every stored generation outside the allow-list and returns
// the dropped names.
func (c *Cache) Activate(ctx context.Context) ([]string, error) {
	gens, err := c.store.Generations(ctx)
	if err != nil {
		return nil, err
	}
	keep := make(map[string]bool, len(c.allow))
	for _, g := range c.allow {
		keep[g] = true
	}
	var dropped []string
	for _, g := range gens {
		if keep[g] {
			continue
		}
		if err := c.store.Drop(ctx, g); err != nil {
			return dropped, err
		}
		dropped = append(dropped, g)
	}
	return dropped, nil
}

// Fetch answers r from the cache when possible and falls back to network.
// Only GET requests for media URLs are cached; navigations always go to the
// network.  A fetched response is stored only when it succeeded.  The
// second result reports a cache hit.
func (c *Cache) Fetch(ctx context.Context, r *http.Request, network Fetcher) (*Entry, bool, error) {
	url := r.URL.RequestURI()
	if !Cacheable(r) {
		e, err := network(ctx, url)
		return e, false, err
	}

	log := logger.With("generation", c.generation, "url", url)
	if e, err := c.store.Get(ctx, c.generation, url); err != nil {
		log.Warnw("media cache read failed", "error", err)
	} else if e != nil {
		return e, true, nil
	}

	e, err := network(ctx, url)
	if err != nil {
		return nil, false, err
	}
	if e.OK() && (c.maxBytes <= 0 || len(e.Body) <= c.maxBytes) {
		if err := c.store.Put(ctx, c.generation, url, e); err != nil {
			log.Warnw("media cache write failed", "error", err)
		}
	}
	return e, false, nil
}

// Cacheable reports whether r may be served from or stored in the cache.
func Cacheable(r *http.Request) bool {
	return r.Method == http.MethodGet && !IsNavigation(r) && IsMedia(r.URL.Path)
}

// IsNavigation reports whether r loads a page rather than a subresource.
func IsNavigation(r *http.Request) bool {
	if mode := r.Header.Get("Sec-Fetch-Mode"); mode != "" {
		return mode == "navigate"
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

var mediaPrefixes = []string{
	"/storage/v1/object/public/",
	"/media/",
}

// IsMedia reports whether path points into the photo or audio buckets,
// either directly on the storage backend or through the media proxy.
func IsMedia(path string) bool {
	for _, p := range mediaPrefixes {
		i := strings.Index(path, p)
		if i < 0 {
			continue
		}
		rest := path[i+len(p):]
		if strings.HasPrefix(rest, model.BucketPhotos+"/") || strings.HasPrefix(rest, "audio-") {
			return true
		}
	}
	return false
}
