package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	longLabel := strings.Repeat("a", 64)
	okLabel := strings.Repeat("a", 63)
	// four 63-octet labels encode to 4*64+1 = 257 octets, over the limit
	tooLong := strings.Join([]string{okLabel, okLabel, okLabel, okLabel}, ".")

	tests := []struct {
		name      string
		input     string
		expectErr bool
	}{
		{"simple name", "example.com", false},
		{"trailing dot", "example.com.", false},
		{"single label", "com", false},
		{"max label length", okLabel + ".com", false},
		{"empty name", "", true},
		{"label too long", longLabel + ".com", true},
		{"empty interior label", "foo..com", true},
		{"encoded name too long", tooLong, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Example.COM.", "example.com"},
		{"  example.com  ", "example.com"},
		{"example.com...", "example.com"},
		{".", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CanonicalName(tt.input))
	}
}

func TestNameLabels(t *testing.T) {
	assert.Equal(t, []string{"www", "example", "com"}, NameLabels("www.example.com."))
	assert.Nil(t, NameLabels("."))
	assert.Nil(t, NameLabels(""))
}

func TestParentName(t *testing.T) {
	assert.Equal(t, "example.com", ParentName("www.example.com"))
	assert.Equal(t, "com", ParentName("example.com"))
	assert.Equal(t, "", ParentName("com"))
	assert.Equal(t, "", ParentName(""))
}

func TestIsSubdomain(t *testing.T) {
	assert.True(t, IsSubdomain("example.com", "www.example.com"))
	assert.True(t, IsSubdomain("example.com", "EXAMPLE.com."))
	assert.True(t, IsSubdomain("", "example.com")) // root is everyone's parent
	assert.False(t, IsSubdomain("example.com", "notexample.com"))
	assert.False(t, IsSubdomain("www.example.com", "example.com"))
}

func TestNamesEqual(t *testing.T) {
	assert.True(t, NamesEqual("Example.COM.", "example.com"))
	assert.False(t, NamesEqual("example.com", "example.org"))
}
