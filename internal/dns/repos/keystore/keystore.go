// Package keystore persists the trust material the signing and
// verification engines depend on: DNSSEC trust anchors per zone and
// TSIG shared secrets per key name. The bolt-backed store survives
// restarts; the memory store serves tests and embedders that manage
// key material themselves.
package keystore

import (
	"context"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// Store is the full read/write keystore surface. The read side
// satisfies the validation engine's AnchorSource and the TSIG engine's
// Keyring.
type Store interface {
	// PutAnchor pins a trust anchor for its zone. Multiple anchors may
	// be pinned per zone; duplicates by key tag are replaced.
	PutAnchor(anchor domain.TrustAnchor) error

	// Anchors returns the anchors pinned exactly at zone, or an empty
	// slice when none exist.
	Anchors(ctx context.Context, zone string) ([]domain.TrustAnchor, error)

	// DeleteAnchors unpins every anchor of a zone.
	DeleteAnchors(zone string) error

	// PutTSIGKey stores a shared secret under its canonical key name.
	PutTSIGKey(key domain.TSIGKey) error

	// TSIGKey returns the secret for a canonical key name.
	TSIGKey(name string) (domain.TSIGKey, bool)

	// DeleteTSIGKey removes a shared secret.
	DeleteTSIGKey(name string) error

	Close() error
}
