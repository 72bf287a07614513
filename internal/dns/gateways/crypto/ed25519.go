package crypto

import (
	"crypto/ed25519"
	"fmt"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// verifyEd25519 checks an RFC 8080 signature: the public key is the raw
// 32-byte point and the signature the raw 64 bytes.
func verifyEd25519(publicKey, signed, signature []byte) error {
	if len(publicKey) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: Ed25519 public key length %d, want %d", domain.ErrBadSignature, len(publicKey), ed25519.PublicKeySize)
	}
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: Ed25519 signature length %d, want %d", domain.ErrBadSignature, len(signature), ed25519.SignatureSize)
	}
	if !ed25519.Verify(ed25519.PublicKey(publicKey), signed, signature) {
		return fmt.Errorf("%w: Ed25519", domain.ErrBadSignature)
	}
	return nil
}
