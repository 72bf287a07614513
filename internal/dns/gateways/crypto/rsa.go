package crypto

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// rsaHash maps RSA DNSSEC algorithms to their hash functions.
func rsaHash(alg domain.Algorithm) (crypto.Hash, func([]byte) []byte, error) {
	switch alg {
	case domain.AlgRSASHA1:
		return crypto.SHA1, func(b []byte) []byte { s := sha1.Sum(b); return s[:] }, nil
	case domain.AlgRSASHA256:
		return crypto.SHA256, func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }, nil
	case domain.AlgRSASHA512:
		return crypto.SHA512, func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }, nil
	default:
		return 0, nil, fmt.Errorf("%w: algorithm %d is not RSA", domain.ErrUnsupportedAlgorithm, alg)
	}
}

// parseRSAPublicKey decodes the RFC 3110 exponent-length prefixed
// public key format.
func parseRSAPublicKey(b []byte) (*rsa.PublicKey, error) {
	if len(b) < 3 {
		return nil, fmt.Errorf("RSA public key too short: %d bytes", len(b))
	}
	var expLen, off int
	if b[0] != 0 {
		expLen = int(b[0])
		off = 1
	} else {
		expLen = int(binary.BigEndian.Uint16(b[1:3]))
		off = 3
	}
	if expLen == 0 || off+expLen >= len(b) {
		return nil, fmt.Errorf("invalid RSA exponent length: %d", expLen)
	}
	exp := new(big.Int).SetBytes(b[off : off+expLen])
	if !exp.IsInt64() || exp.Int64() > int64(1)<<31-1 {
		return nil, fmt.Errorf("RSA exponent too large")
	}
	return &rsa.PublicKey{
		E: int(exp.Int64()),
		N: new(big.Int).SetBytes(b[off+expLen:]),
	}, nil
}

// encodeRSAPublicKey produces the RFC 3110 wire form of pub.
func encodeRSAPublicKey(pub *rsa.PublicKey) []byte {
	exp := big.NewInt(int64(pub.E)).Bytes()
	var out []byte
	if len(exp) <= 255 {
		out = append(out, byte(len(exp)))
	} else {
		out = append(out, 0)
		out = binary.BigEndian.AppendUint16(out, uint16(len(exp)))
	}
	out = append(out, exp...)
	return append(out, pub.N.Bytes()...)
}

func verifyRSA(alg domain.Algorithm, publicKey, signed, signature []byte) error {
	hash, sum, err := rsaHash(alg)
	if err != nil {
		return err
	}
	pub, err := parseRSAPublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBadSignature, err)
	}
	if err := rsa.VerifyPKCS1v15(pub, hash, sum(signed), signature); err != nil {
		return fmt.Errorf("%w: RSA: %v", domain.ErrBadSignature, err)
	}
	return nil
}
