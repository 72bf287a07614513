package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"math/big"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// ecdsaParams returns the curve, the coordinate size in bytes, and the
// hash function for an ECDSA DNSSEC algorithm.
func ecdsaParams(alg domain.Algorithm) (elliptic.Curve, int, func([]byte) []byte, error) {
	switch alg {
	case domain.AlgECDSAP256SHA256:
		return elliptic.P256(), 32, func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }, nil
	case domain.AlgECDSAP384SHA384:
		return elliptic.P384(), 48, func(b []byte) []byte { s := sha512.Sum384(b); return s[:] }, nil
	default:
		return nil, 0, nil, fmt.Errorf("%w: algorithm %d is not ECDSA", domain.ErrUnsupportedAlgorithm, alg)
	}
}

// verifyECDSA checks an RFC 6605 signature: the public key is the
// uncompressed point X||Y and the signature is R||S, both in
// fixed-width big-endian form.
func verifyECDSA(alg domain.Algorithm, publicKey, signed, signature []byte) error {
	curve, size, sum, err := ecdsaParams(alg)
	if err != nil {
		return err
	}
	if len(publicKey) != 2*size {
		return fmt.Errorf("%w: ECDSA public key length %d, want %d", domain.ErrBadSignature, len(publicKey), 2*size)
	}
	if len(signature) != 2*size {
		return fmt.Errorf("%w: ECDSA signature length %d, want %d", domain.ErrBadSignature, len(signature), 2*size)
	}
	pub := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(publicKey[:size]),
		Y:     new(big.Int).SetBytes(publicKey[size:]),
	}
	if !curve.IsOnCurve(pub.X, pub.Y) {
		return fmt.Errorf("%w: ECDSA public key is not on the curve", domain.ErrBadSignature)
	}
	r := new(big.Int).SetBytes(signature[:size])
	s := new(big.Int).SetBytes(signature[size:])
	if !ecdsa.Verify(pub, sum(signed), r, s) {
		return fmt.Errorf("%w: ECDSA", domain.ErrBadSignature)
	}
	return nil
}

// fixedWidth left-pads b with zeros to exactly size bytes.
func fixedWidth(b []byte, size int) []byte {
	if len(b) >= size {
		return b[len(b)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}
