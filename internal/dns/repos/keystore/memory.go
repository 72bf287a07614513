package keystore

import (
	"context"
	"sync"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// memoryStore is a Store held entirely in memory.
type memoryStore struct {
	mu      sync.RWMutex
	anchors map[string]map[uint16]domain.TrustAnchor
	tsig    map[string]domain.TSIGKey
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{
		anchors: make(map[string]map[uint16]domain.TrustAnchor),
		tsig:    make(map[string]domain.TSIGKey),
	}
}

func (s *memoryStore) Close() error { return nil }

func (s *memoryStore) PutAnchor(anchor domain.TrustAnchor) error {
	if err := anchor.Validate(); err != nil {
		return err
	}
	zone := domain.CanonicalName(anchor.Zone)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.anchors[zone] == nil {
		s.anchors[zone] = make(map[uint16]domain.TrustAnchor)
	}
	s.anchors[zone][anchor.KeyTag()] = anchor
	return nil
}

func (s *memoryStore) Anchors(_ context.Context, zone string) ([]domain.TrustAnchor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byTag := s.anchors[domain.CanonicalName(zone)]
	anchors := make([]domain.TrustAnchor, 0, len(byTag))
	for _, a := range byTag {
		anchors = append(anchors, a)
	}
	return anchors, nil
}

func (s *memoryStore) DeleteAnchors(zone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.anchors, domain.CanonicalName(zone))
	return nil
}

func (s *memoryStore) PutTSIGKey(key domain.TSIGKey) error {
	if _, err := encodeTSIGKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tsig[domain.CanonicalName(key.Name)] = key
	return nil
}

func (s *memoryStore) TSIGKey(name string) (domain.TSIGKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.tsig[domain.CanonicalName(name)]
	return key, ok
}

func (s *memoryStore) DeleteTSIGKey(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tsig, domain.CanonicalName(name))
	return nil
}
