package rrdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDomainName(t *testing.T) {
	got, err := encodeDomainName("www.example.com")
	require.NoError(t, err)
	want := []byte{3, 'w', 'w', 'w', 7, 'e', 'x', 'a', 'm', 'p', 'l', 'e', 3, 'c', 'o', 'm', 0}
	assert.Equal(t, want, got)
}

func TestEncodeDomainName_Root(t *testing.T) {
	got, err := encodeDomainName("")
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, got)

	got, err = encodeDomainName(".")
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, got)
}

func TestDecodeDomainName(t *testing.T) {
	wire := []byte{3, 'f', 'o', 'o', 3, 'b', 'a', 'r', 0, 0xDE, 0xAD}
	name, n, err := decodeDomainName(wire)
	require.NoError(t, err)
	assert.Equal(t, "foo.bar", name)
	assert.Equal(t, 9, n, "consumed bytes must stop at the root label")
}

func TestDecodeDomainName_Truncated(t *testing.T) {
	_, _, err := decodeDomainName([]byte{5, 'a', 'b'})
	assert.Error(t, err)

	_, _, err = decodeDomainName([]byte{3, 'f', 'o', 'o'}) // missing root label
	assert.Error(t, err)
}
