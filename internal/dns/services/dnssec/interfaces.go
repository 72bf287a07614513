// Package dnssec implements RRset canonicalization, RRSIG signing, NSEC
// chain generation, and trust-chain validation with authenticated
// denial of existence.
package dnssec

import (
	"context"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// LookupResult carries what a resolver collaborator found for one
// (name, type) query. An empty Records slice means the RRset does not
// exist; Denial then holds the authority-section NSEC/NSEC3 records and
// their RRSIGs so the absence can be authenticated.
type LookupResult struct {
	Records    []domain.ResourceRecord
	Signatures []domain.RRSIG
	Denial     []domain.ResourceRecord
}

// RRsetSource supplies RRsets during the chain-of-trust walk. The
// validation engine never fetches anything itself; every lookup is an
// asynchronous boundary owned by the resolver collaborator.
type RRsetSource interface {
	Lookup(ctx context.Context, name string, rrType domain.RRType) (LookupResult, error)
}

// AnchorSource supplies configured trust anchors. Anchors returns the
// anchors pinned exactly at zone, or an empty slice when none exist.
type AnchorSource interface {
	Anchors(ctx context.Context, zone string) ([]domain.TrustAnchor, error)
}

// OutcomeCache remembers per-zone chain outcomes between validations.
type OutcomeCache interface {
	Get(zone string) (domain.ValidationOutcome, bool)
	Put(zone string, outcome domain.ValidationOutcome)
}

// Verifier checks a signature over signed data with a DNSKEY-format
// public key, dispatching on the DNSSEC algorithm number.
type Verifier interface {
	Verify(alg domain.Algorithm, publicKey, signed, signature []byte) error
}

// Digester computes DS digests, dispatching on the digest type number.
type Digester interface {
	Digest(dt domain.DigestType, data []byte) ([]byte, error)
}

// SigningKey is a private key capable of producing DNSSEC signatures.
// PublicKey returns the DNSKEY public key field for the matching
// algorithm.
type SigningKey interface {
	Algorithm() domain.Algorithm
	PublicKey() []byte
	Sign(data []byte) ([]byte, error)
}
