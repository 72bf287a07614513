package wire

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnscore/internal/dns/domain"
)

func signedFixture(t *testing.T) ([]byte, domain.TSIG) {
	t.Helper()
	c := NewCodec(nil)
	msg, err := c.EncodeQuery(0x4242, domain.Question{
		Name: "example.com", Type: domain.RRTypeSOA, Class: domain.RRClassIN,
	})
	require.NoError(t, err)

	ts := domain.TSIG{
		AlgorithmName: domain.TSIGHMACSHA256,
		TimeSigned:    1700000000,
		Fudge:         300,
		MAC:           []byte{1, 2, 3, 4, 5, 6, 7, 8},
		OriginalID:    0x4242,
	}
	signed, err := AppendTSIGRR(msg, "transfer-key.example.com", ts)
	require.NoError(t, err)
	return signed, ts
}

func TestAppendAndStripTSIG(t *testing.T) {
	signed, ts := signedFixture(t)

	assert.Equal(t, uint16(1), binary.BigEndian.Uint16(signed[10:12]), "ARCOUNT must count the TSIG record")

	unsigned, keyName, got, err := StripTSIG(signed)
	require.NoError(t, err)
	assert.Equal(t, "transfer-key.example.com", keyName)
	assert.Equal(t, ts, got)
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(unsigned[10:12]), "ARCOUNT must be restored")

	// The prefix is the original unsigned message byte for byte.
	c := NewCodec(nil)
	original, err := c.EncodeQuery(0x4242, domain.Question{
		Name: "example.com", Type: domain.RRTypeSOA, Class: domain.RRClassIN,
	})
	require.NoError(t, err)
	assert.Equal(t, original, unsigned)
}

func TestStripTSIG_NoAdditionalRecords(t *testing.T) {
	c := NewCodec(nil)
	msg, err := c.EncodeQuery(1, domain.Question{Name: "example.com", Type: domain.RRTypeA, Class: domain.RRClassIN})
	require.NoError(t, err)

	_, _, _, err = StripTSIG(msg)
	assert.True(t, errors.Is(err, ErrNoTSIG))
}

func TestStripTSIG_LastRecordNotTSIG(t *testing.T) {
	c := NewCodec(nil)
	rr, err := domain.NewResourceRecord("ns1.example.com", domain.RRTypeA, domain.RRClassIN, 60, nil, "192.0.2.1")
	require.NoError(t, err)
	msg, err := c.EncodeMessage(domain.Message{
		Questions:  []domain.Question{{Name: "example.com", Type: domain.RRTypeA, Class: domain.RRClassIN}},
		Additional: []domain.ResourceRecord{rr},
	})
	require.NoError(t, err)

	_, _, _, err = StripTSIG(msg)
	assert.True(t, errors.Is(err, ErrNoTSIG))
}

func TestStripTSIG_SignedMessageStillDecodes(t *testing.T) {
	signed, _ := signedFixture(t)

	msg, err := NewCodec(nil).DecodeMessage(signed)
	require.NoError(t, err)
	require.Len(t, msg.Additional, 1)
	assert.Equal(t, domain.RRTypeTSIG, msg.Additional[0].Type)
}
