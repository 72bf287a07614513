package tsig

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnscore/internal/dns/common/clock"
	"github.com/haukened/dnscore/internal/dns/domain"
	"github.com/haukened/dnscore/internal/dns/gateways/wire"
)

const testNow = 1700000000

type mapKeyring map[string]domain.TSIGKey

func (m mapKeyring) TSIGKey(name string) (domain.TSIGKey, bool) {
	k, ok := m[name]
	return k, ok
}

func testKey(algorithm string) domain.TSIGKey {
	return domain.TSIGKey{
		Name:      "transfer.example.com",
		Algorithm: algorithm,
		Secret:    []byte("0123456789abcdef0123456789abcdef"),
	}
}

func testEngine(t *testing.T, at int64) *Engine {
	t.Helper()
	return NewEngine(clock.NewMockClock(time.Unix(at, 0)), nil, Options{})
}

func testMessage(t *testing.T) []byte {
	t.Helper()
	q, err := domain.NewQuestion("www.example.com", domain.RRTypeA, domain.RRClassIN)
	require.NoError(t, err)
	data, err := wire.NewCodec(nil).EncodeQuery(0x1234, q)
	require.NoError(t, err)
	return data
}

func TestSignAndVerify(t *testing.T) {
	algorithms := []string{
		domain.TSIGHMACMD5,
		domain.TSIGHMACSHA1,
		domain.TSIGHMACSHA256,
		domain.TSIGHMACSHA512,
	}
	for _, alg := range algorithms {
		t.Run(alg, func(t *testing.T) {
			e := testEngine(t, testNow)
			key := testKey(alg)
			signed, err := e.Sign(testMessage(t), key)
			require.NoError(t, err)

			name, err := e.Verify(signed, mapKeyring{key.Name: key})
			require.NoError(t, err)
			assert.Equal(t, "transfer.example.com", name)
		})
	}
}

func TestVerifyUnknownKey(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey(domain.TSIGHMACSHA256)
	signed, err := e.Sign(testMessage(t), key)
	require.NoError(t, err)

	_, err = e.Verify(signed, mapKeyring{})
	assert.ErrorIs(t, err, domain.ErrBadKey)
}

func TestVerifyAlgorithmMismatch(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey(domain.TSIGHMACSHA256)
	signed, err := e.Sign(testMessage(t), key)
	require.NoError(t, err)

	ring := mapKeyring{key.Name: testKey(domain.TSIGHMACSHA1)}
	_, err = e.Verify(signed, ring)
	assert.ErrorIs(t, err, domain.ErrBadKey)
}

func TestVerifyWrongSecret(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey(domain.TSIGHMACSHA256)
	signed, err := e.Sign(testMessage(t), key)
	require.NoError(t, err)

	other := key
	other.Secret = []byte("ffffffffffffffffffffffffffffffff")
	_, err = e.Verify(signed, mapKeyring{key.Name: other})
	assert.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestVerifyTamperedBody(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey(domain.TSIGHMACSHA256)
	signed, err := e.Sign(testMessage(t), key)
	require.NoError(t, err)
	// Flip a bit inside the question name.
	signed[14] ^= 0x20

	_, err = e.Verify(signed, mapKeyring{key.Name: key})
	assert.ErrorIs(t, err, domain.ErrBadSignature)
}

func TestVerifyOutsideTimeWindow(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey(domain.TSIGHMACSHA256)
	signed, err := e.Sign(testMessage(t), key)
	require.NoError(t, err)

	// Within fudge on either side.
	for _, at := range []int64{testNow - 299, testNow + 299} {
		_, err = testEngine(t, at).Verify(signed, mapKeyring{key.Name: key})
		assert.NoError(t, err)
	}
	// Beyond fudge, both directions.
	for _, at := range []int64{testNow - 301, testNow + 301} {
		_, err = testEngine(t, at).Verify(signed, mapKeyring{key.Name: key})
		assert.ErrorIs(t, err, domain.ErrBadTime)
	}
}

func TestVerifyCustomFudge(t *testing.T) {
	e := NewEngine(clock.NewMockClock(time.Unix(testNow, 0)), nil, Options{Fudge: 10 * time.Second})
	key := testKey(domain.TSIGHMACSHA256)
	signed, err := e.Sign(testMessage(t), key)
	require.NoError(t, err)

	late := NewEngine(clock.NewMockClock(time.Unix(testNow+30, 0)), nil, Options{})
	_, err = late.Verify(signed, mapKeyring{key.Name: key})
	assert.ErrorIs(t, err, domain.ErrBadTime)
}

func TestVerifyNoTSIG(t *testing.T) {
	e := testEngine(t, testNow)
	_, err := e.Verify(testMessage(t), mapKeyring{})
	assert.True(t, errors.Is(err, wire.ErrNoTSIG))
}

func TestSignUnknownAlgorithm(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey("hmac-sha224")
	_, err := e.Sign(testMessage(t), key)
	assert.ErrorIs(t, err, domain.ErrBadKey)
}

func TestSignBadTime(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey(domain.TSIGHMACSHA256)
	clientTime := uint64(testNow - 3600)

	signed, err := e.SignBadTime(testMessage(t), key, clientTime)
	require.NoError(t, err)

	_, keyName, ts, err := wire.StripTSIG(signed)
	require.NoError(t, err)
	assert.Equal(t, "transfer.example.com", keyName)
	assert.Equal(t, domain.RCodeBadTime, ts.Error)
	assert.Equal(t, clientTime, ts.TimeSigned)
	require.Len(t, ts.OtherData, 6)

	var serverTime uint64
	for _, b := range ts.OtherData {
		serverTime = serverTime<<8 | uint64(b)
	}
	assert.Equal(t, uint64(testNow), serverTime)
}

func TestSignedMessageLayout(t *testing.T) {
	e := testEngine(t, testNow)
	key := testKey(domain.TSIGHMACSHA256)
	msg := testMessage(t)
	signed, err := e.Sign(msg, key)
	require.NoError(t, err)

	// The original message is an untouched prefix except for ARCOUNT.
	assert.Equal(t, msg[:10], signed[:10])
	assert.Equal(t, byte(1), signed[11], "ARCOUNT incremented")

	unsigned, _, ts, err := wire.StripTSIG(signed)
	require.NoError(t, err)
	assert.Equal(t, msg, unsigned)
	assert.Equal(t, uint16(0x1234), ts.OriginalID)
	assert.Len(t, ts.MAC, 32)
}
