package valcache

import (
	"testing"

	"github.com/haukened/dnscore/internal/dns/domain"
	"github.com/haukened/dnscore/internal/dns/services/dnssec"
)

var _ dnssec.OutcomeCache = (Cache)(nil)

func TestOutcomeCache_HitMissAndPut(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, ok := c.Get("example.com"); ok {
		t.Fatalf("expected miss before put")
	}

	c.Put("example.com", domain.OutcomeValid)

	got, ok := c.Get("example.com")
	if !ok || got != domain.OutcomeValid {
		t.Fatalf("unexpected get: ok=%v got=%v", ok, got)
	}
	// Lookups are canonical, so case does not matter.
	if got, ok := c.Get("Example.COM."); !ok || got != domain.OutcomeValid {
		t.Fatalf("canonical get: ok=%v got=%v", ok, got)
	}

	st := c.Stats()
	if st.Hits != 2 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("stats=%+v want hits=2 misses=1 size=1", st)
	}
}

func TestOutcomeCache_Eviction(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a.example", domain.OutcomeValid)
	c.Put("b.example", domain.OutcomeBogus)
	c.Put("c.example", domain.OutcomeInsecure)

	st := c.Stats()
	if st.Size != 2 || st.Evictions != 1 {
		t.Fatalf("stats=%+v want size=2 evictions=1", st)
	}
}

func TestOutcomeCache_PurgeCountsEvictions(t *testing.T) {
	c, err := New(3)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a.example", domain.OutcomeValid)
	c.Put("b.example", domain.OutcomeValid)

	c.Purge()
	st := c.Stats()
	if st.Size != 0 || st.Evictions != 2 {
		t.Fatalf("stats=%+v want size=0 evictions=2", st)
	}
	if _, ok := c.Get("a.example"); ok {
		t.Fatalf("expected miss after purge")
	}
}

func TestDisabledCache(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("example.com", domain.OutcomeValid)
	if _, ok := c.Get("example.com"); ok {
		t.Fatalf("disabled cache must always miss")
	}
	if st := c.Stats(); st != (Stats{}) {
		t.Fatalf("disabled cache stats=%+v want zero", st)
	}
}
