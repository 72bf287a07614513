package crypto

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"fmt"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// Signer produces DNSSEC signatures with a private key. PublicKey
// returns the matching DNSKEY public key field.
type Signer interface {
	Algorithm() domain.Algorithm
	PublicKey() []byte
	Sign(data []byte) ([]byte, error)
}

// GenerateSigner creates a fresh key pair for alg. RSA keys are 2048
// bits.
func GenerateSigner(alg domain.Algorithm) (Signer, error) {
	switch alg {
	case domain.AlgRSASHA1, domain.AlgRSASHA256, domain.AlgRSASHA512:
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, err
		}
		return NewRSASigner(alg, priv)
	case domain.AlgECDSAP256SHA256, domain.AlgECDSAP384SHA384:
		curve, _, _, err := ecdsaParams(alg)
		if err != nil {
			return nil, err
		}
		priv, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return nil, err
		}
		return NewECDSASigner(alg, priv)
	case domain.AlgED25519:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, err
		}
		return NewEd25519Signer(priv), nil
	default:
		return nil, fmt.Errorf("%w: algorithm %d", domain.ErrUnsupportedAlgorithm, alg)
	}
}

type rsaSigner struct {
	alg  domain.Algorithm
	priv *rsa.PrivateKey
}

// NewRSASigner wraps an RSA private key for one of the RSA DNSSEC
// algorithms.
func NewRSASigner(alg domain.Algorithm, priv *rsa.PrivateKey) (Signer, error) {
	if _, _, err := rsaHash(alg); err != nil {
		return nil, err
	}
	return &rsaSigner{alg: alg, priv: priv}, nil
}

func (s *rsaSigner) Algorithm() domain.Algorithm { return s.alg }

func (s *rsaSigner) PublicKey() []byte {
	return encodeRSAPublicKey(&s.priv.PublicKey)
}

func (s *rsaSigner) Sign(data []byte) ([]byte, error) {
	hash, sum, err := rsaHash(s.alg)
	if err != nil {
		return nil, err
	}
	return rsa.SignPKCS1v15(rand.Reader, s.priv, hash, sum(data))
}

type ecdsaSigner struct {
	alg  domain.Algorithm
	size int
	sum  func([]byte) []byte
	priv *ecdsa.PrivateKey
}

// NewECDSASigner wraps an ECDSA private key. The key's curve must match
// the algorithm.
func NewECDSASigner(alg domain.Algorithm, priv *ecdsa.PrivateKey) (Signer, error) {
	curve, size, sum, err := ecdsaParams(alg)
	if err != nil {
		return nil, err
	}
	if priv.Curve != curve {
		return nil, fmt.Errorf("key curve %s does not match algorithm %d", priv.Curve.Params().Name, alg)
	}
	return &ecdsaSigner{alg: alg, size: size, sum: sum, priv: priv}, nil
}

func (s *ecdsaSigner) Algorithm() domain.Algorithm { return s.alg }

func (s *ecdsaSigner) PublicKey() []byte {
	out := fixedWidth(s.priv.X.Bytes(), s.size)
	return append(out, fixedWidth(s.priv.Y.Bytes(), s.size)...)
}

func (s *ecdsaSigner) Sign(data []byte) ([]byte, error) {
	r, sv, err := ecdsa.Sign(rand.Reader, s.priv, s.sum(data))
	if err != nil {
		return nil, err
	}
	out := fixedWidth(r.Bytes(), s.size)
	return append(out, fixedWidth(sv.Bytes(), s.size)...), nil
}

type ed25519Signer struct {
	priv ed25519.PrivateKey
}

// NewEd25519Signer wraps an Ed25519 private key.
func NewEd25519Signer(priv ed25519.PrivateKey) Signer {
	return &ed25519Signer{priv: priv}
}

func (s *ed25519Signer) Algorithm() domain.Algorithm { return domain.AlgED25519 }

func (s *ed25519Signer) PublicKey() []byte {
	return append([]byte(nil), s.priv.Public().(ed25519.PublicKey)...)
}

func (s *ed25519Signer) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(s.priv, data), nil
}
