package crypto

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnscore/internal/dns/domain"
)

var signerAlgorithms = []domain.Algorithm{
	domain.AlgRSASHA1,
	domain.AlgRSASHA256,
	domain.AlgRSASHA512,
	domain.AlgECDSAP256SHA256,
	domain.AlgECDSAP384SHA384,
	domain.AlgED25519,
}

func TestSignVerify(t *testing.T) {
	v := NewVerifier()
	signed := []byte("the quick brown fox jumps over the lazy dog")
	for _, alg := range signerAlgorithms {
		t.Run(alg.String(), func(t *testing.T) {
			s, err := GenerateSigner(alg)
			require.NoError(t, err)
			assert.Equal(t, alg, s.Algorithm())

			sig, err := s.Sign(signed)
			require.NoError(t, err)
			require.NoError(t, v.Verify(alg, s.PublicKey(), signed, sig))
		})
	}
}

func TestVerify_TamperedData(t *testing.T) {
	v := NewVerifier()
	signed := []byte("payload")
	for _, alg := range []domain.Algorithm{domain.AlgRSASHA256, domain.AlgECDSAP256SHA256, domain.AlgED25519} {
		t.Run(alg.String(), func(t *testing.T) {
			s, err := GenerateSigner(alg)
			require.NoError(t, err)
			sig, err := s.Sign(signed)
			require.NoError(t, err)

			err = v.Verify(alg, s.PublicKey(), []byte("Payload"), sig)
			assert.True(t, errors.Is(err, domain.ErrBadSignature))
		})
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	v := NewVerifier()
	s, err := GenerateSigner(domain.AlgED25519)
	require.NoError(t, err)
	sig, err := s.Sign([]byte("payload"))
	require.NoError(t, err)
	sig[0] ^= 0x01

	err = v.Verify(domain.AlgED25519, s.PublicKey(), []byte("payload"), sig)
	assert.True(t, errors.Is(err, domain.ErrBadSignature))
}

func TestVerify_UnsupportedAlgorithm(t *testing.T) {
	err := NewVerifier().Verify(domain.Algorithm(200), nil, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedAlgorithm))
}

func TestGenerateSigner_UnsupportedAlgorithm(t *testing.T) {
	_, err := GenerateSigner(domain.Algorithm(200))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedAlgorithm))
}

func TestRSAPublicKeyRoundTrip(t *testing.T) {
	s, err := GenerateSigner(domain.AlgRSASHA256)
	require.NoError(t, err)
	pub, err := parseRSAPublicKey(s.PublicKey())
	require.NoError(t, err)
	assert.Equal(t, 65537, pub.E)
	assert.Equal(t, 2048, pub.N.BitLen())
}

func TestParseRSAPublicKey_Invalid(t *testing.T) {
	_, err := parseRSAPublicKey(nil)
	assert.Error(t, err)
	_, err = parseRSAPublicKey([]byte{0, 0, 0, 1})
	assert.Error(t, err)
	// Exponent length runs past the key material.
	_, err = parseRSAPublicKey([]byte{10, 1, 2})
	assert.Error(t, err)
}

func TestDigest(t *testing.T) {
	d := NewDigester()
	want := sha256.Sum256([]byte("abc"))
	got, err := d.Digest(domain.DigestSHA256, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, want[:], got)

	sha1Sum, err := d.Digest(domain.DigestSHA1, []byte("abc"))
	require.NoError(t, err)
	assert.Len(t, sha1Sum, 20)

	sha384Sum, err := d.Digest(domain.DigestSHA384, []byte("abc"))
	require.NoError(t, err)
	assert.Len(t, sha384Sum, 48)

	_, err = d.Digest(domain.DigestType(99), []byte("abc"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedAlgorithm))
}

func TestVerify_ECDSAKeyNotOnCurve(t *testing.T) {
	bad := make([]byte, 64)
	bad[0] = 1
	err := NewVerifier().Verify(domain.AlgECDSAP256SHA256, bad, []byte("x"), make([]byte, 64))
	assert.True(t, errors.Is(err, domain.ErrBadSignature))
}
