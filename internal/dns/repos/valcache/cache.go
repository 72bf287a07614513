// Package valcache caches per-zone DNSSEC chain outcomes so repeated
// validations under the same zone skip the anchor walk.
package valcache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// Stats is a point-in-time snapshot of cache effectiveness counters.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// Cache is the outcome-cache surface the validation engine consumes,
// plus inspection hooks.
type Cache interface {
	Get(zone string) (domain.ValidationOutcome, bool)
	Put(zone string, outcome domain.ValidationOutcome)
	Purge()
	Stats() Stats
}

// outcomeCache is an LRU-backed Cache tracking hits, misses, and
// evictions.
type outcomeCache struct {
	lru       *lru.Cache[string, domain.ValidationOutcome]
	hits      uint64
	misses    uint64
	evictions uint64
}

// disabledCache is a no-op Cache used when size <= 0. It always misses
// and tracks no metrics.
type disabledCache struct{}

// New creates a Cache with the given capacity. If size <= 0, a disabled
// no-op cache is returned.
func New(size int) (Cache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	var oc outcomeCache
	// NewWithEvict observes evictions, including Purge-induced ones.
	cache, err := lru.NewWithEvict(size, func(_ string, _ domain.ValidationOutcome) {
		atomic.AddUint64(&oc.evictions, 1)
	})
	if err != nil {
		return nil, err
	}
	oc.lru = cache
	return &oc, nil
}

func (c *outcomeCache) Get(zone string) (domain.ValidationOutcome, bool) {
	if outcome, ok := c.lru.Get(domain.CanonicalName(zone)); ok {
		atomic.AddUint64(&c.hits, 1)
		return outcome, true
	}
	atomic.AddUint64(&c.misses, 1)
	return 0, false
}

func (c *outcomeCache) Put(zone string, outcome domain.ValidationOutcome) {
	c.lru.Add(domain.CanonicalName(zone), outcome)
}

func (c *outcomeCache) Purge() { c.lru.Purge() }

func (c *outcomeCache) Stats() Stats {
	return Stats{
		Hits:      atomic.LoadUint64(&c.hits),
		Misses:    atomic.LoadUint64(&c.misses),
		Evictions: atomic.LoadUint64(&c.evictions),
		Size:      c.lru.Len(),
	}
}

func (disabledCache) Get(string) (domain.ValidationOutcome, bool) { return 0, false }
func (disabledCache) Put(string, domain.ValidationOutcome)        {}
func (disabledCache) Purge()                                      {}
func (disabledCache) Stats() Stats                                { return Stats{} }
