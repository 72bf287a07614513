package rrdata

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// Encode converts a record's presentation text to its wire-format RDATA.
// Types without a registered codec must use the RFC 3597 generic form
// produced by Decode, which Encode inverts exactly.
func Encode(rrType domain.RRType, data string) ([]byte, error) {
	if strings.HasPrefix(data, `\#`) {
		return parseOpaque(data)
	}
	if c, ok := registry[rrType]; ok {
		return c.encode(data)
	}
	return parseOpaque(data)
}

// parseOpaque parses the RFC 3597 generic RDATA form: `\# length hex`.
func parseOpaque(data string) ([]byte, error) {
	fields := strings.Fields(data)
	if len(fields) < 2 || fields[0] != `\#` {
		return nil, fmt.Errorf(`unknown-type RDATA must use the \# generic form: %q`, data)
	}
	length, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid generic RDATA length: %v", err)
	}
	raw, err := hex.DecodeString(strings.Join(fields[2:], ""))
	if err != nil {
		return nil, fmt.Errorf("invalid generic RDATA hex: %v", err)
	}
	if uint64(len(raw)) != length {
		return nil, fmt.Errorf("generic RDATA length %d does not match %d hex bytes", length, len(raw))
	}
	return raw, nil
}
