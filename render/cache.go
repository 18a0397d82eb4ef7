// ABOUTME: In-memory preview cache keyed by the sha256 of the page's three code fields.
// ABOUTME: Supports TTL-based expiry, concurrent access, and manual cache clearing.

package render

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/2389-research/pagesmith/page"
)

// cacheEntry holds one composed preview with its creation timestamp.
type cacheEntry struct {
	srcdoc    string
	createdAt time.Time
}

// PreviewCache memoizes Compose results. Identical documents share one entry;
// entries expire after the configured TTL.
type PreviewCache struct {
	ttl     time.Duration
	entries map[string]*cacheEntry
	mu      sync.RWMutex
}

// NewPreviewCache creates a PreviewCache whose entries expire after ttl.
func NewPreviewCache(ttl time.Duration) *PreviewCache {
	return &PreviewCache{
		ttl:     ttl,
		entries: make(map[string]*cacheEntry),
	}
}

// Compose returns the composed preview for doc, from cache when available and
// not expired.
func (c *PreviewCache) Compose(doc page.Document) string {
	key := cacheKey(doc)

	c.mu.RLock()
	if entry, ok := c.entries[key]; ok {
		if time.Since(entry.createdAt) < c.ttl {
			srcdoc := entry.srcdoc
			c.mu.RUnlock()
			return srcdoc
		}
	}
	c.mu.RUnlock()

	srcdoc := Compose(doc)

	c.mu.Lock()
	c.entries[key] = &cacheEntry{srcdoc: srcdoc, createdAt: time.Now()}
	c.mu.Unlock()

	return srcdoc
}

// Len returns the number of entries currently in the cache (including expired ones).
func (c *PreviewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *PreviewCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// cacheKey hashes the three code fields with length prefixes so field
// boundaries cannot collide.
func cacheKey(doc page.Document) string {
	h := sha256.New()
	for _, field := range []string{doc.HTML, doc.CSS, doc.JavaScript} {
		fmt.Fprintf(h, "%d:", len(field))
		h.Write([]byte(field))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
