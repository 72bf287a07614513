package rrdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnscore/internal/dns/domain"
)

func TestDecode_A(t *testing.T) {
	got, err := Decode(domain.RRTypeA, []byte{192, 0, 2, 1})
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1", got)
}

func TestDecode_SOA(t *testing.T) {
	rdata, err := Encode(domain.RRTypeSOA, "ns1.example.com hostmaster.example.com 2024010101 7200 3600 1209600 300")
	require.NoError(t, err)

	got, err := Decode(domain.RRTypeSOA, rdata)
	require.NoError(t, err)
	assert.Equal(t, "ns1.example.com hostmaster.example.com 2024010101 7200 3600 1209600 300", got)
}

func TestDecode_UnknownTypeOpaque(t *testing.T) {
	got, err := Decode(domain.RRType(999), []byte{0x0A, 0x00, 0x00, 0x01})
	require.NoError(t, err)
	assert.Equal(t, `\# 4 0A000001`, got)
}

func TestDecode_UnknownTypeEmpty(t *testing.T) {
	got, err := Decode(domain.RRType(999), nil)
	require.NoError(t, err)
	assert.Equal(t, `\# 0`, got)
}

func TestOpaqueRoundTrip(t *testing.T) {
	original := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x7F}
	text, err := Decode(domain.RRType(4242), original)
	require.NoError(t, err)
	back, err := Encode(domain.RRType(4242), text)
	require.NoError(t, err)
	assert.Equal(t, original, back)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		rrType domain.RRType
		rdata  []byte
	}{
		{"A too short", domain.RRTypeA, []byte{192, 0, 2}},
		{"AAAA too short", domain.RRTypeAAAA, []byte{0x20, 0x01}},
		{"MX missing name", domain.RRTypeMX, []byte{0, 10}},
		{"SRV truncated", domain.RRTypeSRV, []byte{0, 1, 0, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.rrType, tc.rdata)
			assert.Error(t, err)
		})
	}
}
