// Package session holds the per-pensioner working set shared between the
// search surface and the payment-detail view. It is an explicit, scoped
// cache keyed by pensioner id — not ambient shared state — with explicit
// Clear semantics and TTL eviction.
package session

import (
	"sync"
	"time"

	"github.com/jfbetancur/consorcio-manager/internal/domain"
)

// WorkingSet is one pensioner's loaded context: the pensioner record plus
// the payments already fetched for it.
type WorkingSet struct {
	Pensionado *domain.Pensionado
	Pagos      []*domain.Pago
	LoadedAt   time.Time
}

type entry struct {
	ws      WorkingSet
	expires time.Time
}

// Cache is a TTL cache of working sets, safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewCache creates a cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the working set for a pensioner, or false when absent or
// expired. Expired entries are dropped on access.
func (c *Cache) Get(documento string) (WorkingSet, bool) {
	c.mu.RLock()
	e, ok := c.entries[documento]
	c.mu.RUnlock()

	if !ok {
		return WorkingSet{}, false
	}
	if c.now().After(e.expires) {
		c.Clear(documento)
		return WorkingSet{}, false
	}
	return e.ws, true
}

// Put stores a pensioner's working set, replacing any previous one.
func (c *Cache) Put(documento string, ws WorkingSet) {
	if ws.LoadedAt.IsZero() {
		ws.LoadedAt = c.now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[documento] = entry{ws: ws, expires: c.now().Add(c.ttl)}
}

// Clear drops one pensioner's working set.
func (c *Cache) Clear(documento string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, documento)
}

// ClearAll drops every working set.
func (c *Cache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len reports how many entries are held, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
