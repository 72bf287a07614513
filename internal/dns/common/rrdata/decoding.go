package rrdata

import (
	"encoding/hex"
	"fmt"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// Decode converts wire-format RDATA to its presentation text. Types
// without a registered codec are rendered in the RFC 3597 generic form,
// preserving every byte.
func Decode(rrType domain.RRType, data []byte) (string, error) {
	if c, ok := registry[rrType]; ok {
		return c.decode(data)
	}
	return formatOpaque(data), nil
}

// formatOpaque renders RDATA in the RFC 3597 generic form: `\# length hex`.
func formatOpaque(data []byte) string {
	if len(data) == 0 {
		return `\# 0`
	}
	return fmt.Sprintf(`\# %d %s`, len(data), hex.EncodeToString(data))
}
