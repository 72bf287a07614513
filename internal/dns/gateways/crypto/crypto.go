// Package crypto backs DNSSEC signature verification, digest
// computation, and signing with the Go standard library crypto
// implementations. Public keys and signatures use the DNSSEC wire
// encodings: RFC 3110 for RSA, RFC 6605 for ECDSA, RFC 8080 for
// Ed25519.
package crypto

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// Verifier checks DNSSEC signatures against DNSKEY public keys.
type Verifier struct{}

// NewVerifier returns a Verifier supporting RSA (SHA-1/256/512), ECDSA
// (P-256/P-384), and Ed25519.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks signature over signed using the DNSKEY-format public
// key. It returns domain.ErrUnsupportedAlgorithm for algorithms this
// build does not implement and domain.ErrBadSignature when the
// signature does not verify.
func (v *Verifier) Verify(alg domain.Algorithm, publicKey, signed, signature []byte) error {
	switch alg {
	case domain.AlgRSASHA1, domain.AlgRSASHA256, domain.AlgRSASHA512:
		return verifyRSA(alg, publicKey, signed, signature)
	case domain.AlgECDSAP256SHA256, domain.AlgECDSAP384SHA384:
		return verifyECDSA(alg, publicKey, signed, signature)
	case domain.AlgED25519:
		return verifyEd25519(publicKey, signed, signature)
	default:
		return fmt.Errorf("%w: algorithm %d", domain.ErrUnsupportedAlgorithm, alg)
	}
}

// Digester computes DS digests over canonical DNSKEY data.
type Digester struct{}

// NewDigester returns a Digester supporting SHA-1, SHA-256, and SHA-384.
func NewDigester() *Digester {
	return &Digester{}
}

// Digest hashes data with the DS digest algorithm dt.
func (d *Digester) Digest(dt domain.DigestType, data []byte) ([]byte, error) {
	switch dt {
	case domain.DigestSHA1:
		sum := sha1.Sum(data)
		return sum[:], nil
	case domain.DigestSHA256:
		sum := sha256.Sum256(data)
		return sum[:], nil
	case domain.DigestSHA384:
		sum := sha512.Sum384(data)
		return sum[:], nil
	default:
		return nil, fmt.Errorf("%w: digest type %d", domain.ErrUnsupportedAlgorithm, dt)
	}
}
