package rrdata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// ParseNSEC decodes NSEC RDATA (RFC 4034 section 4.1) into its typed form.
func ParseNSEC(b []byte) (domain.NSEC, error) {
	next, n, err := decodeDomainName(b)
	if err != nil {
		return domain.NSEC{}, fmt.Errorf("invalid NSEC next name: %v", err)
	}
	types, err := parseTypeBitmap(b[n:])
	if err != nil {
		return domain.NSEC{}, err
	}
	return domain.NSEC{NextName: next, Types: types}, nil
}

// AppendNSEC appends the wire form of an NSEC record to dst.
func AppendNSEC(dst []byte, nsec domain.NSEC) ([]byte, error) {
	next, err := encodeDomainName(nsec.NextName)
	if err != nil {
		return nil, fmt.Errorf("invalid NSEC next name: %v", err)
	}
	dst = append(dst, next...)
	return appendTypeBitmap(dst, nsec.Types), nil
}

// appendTypeBitmap appends the RFC 4034 section 4.1.2 window-block type
// bitmap for the given types.
func appendTypeBitmap(dst []byte, types []domain.RRType) []byte {
	sorted := append([]domain.RRType(nil), types...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var window = -1
	var bits [32]byte
	var bitLen int
	flush := func() {
		if window >= 0 && bitLen > 0 {
			dst = append(dst, byte(window), byte(bitLen))
			dst = append(dst, bits[:bitLen]...)
		}
		bits = [32]byte{}
		bitLen = 0
	}
	for _, t := range sorted {
		w := int(t >> 8)
		if w != window {
			flush()
			window = w
		}
		low := int(t & 0xFF)
		bits[low/8] |= 0x80 >> (low % 8)
		if low/8+1 > bitLen {
			bitLen = low/8 + 1
		}
	}
	flush()
	return dst
}

// parseTypeBitmap decodes an RFC 4034 window-block type bitmap.
func parseTypeBitmap(b []byte) ([]domain.RRType, error) {
	var types []domain.RRType
	for i := 0; i < len(b); {
		if i+2 > len(b) {
			return nil, fmt.Errorf("truncated type bitmap header")
		}
		window := int(b[i])
		length := int(b[i+1])
		i += 2
		if length < 1 || length > 32 {
			return nil, fmt.Errorf("invalid type bitmap length: %d", length)
		}
		if i+length > len(b) {
			return nil, fmt.Errorf("truncated type bitmap window")
		}
		for j := 0; j < length; j++ {
			for bit := 0; bit < 8; bit++ {
				if b[i+j]&(0x80>>bit) != 0 {
					types = append(types, domain.RRType(window<<8|j*8+bit))
				}
			}
		}
		i += length
	}
	return types, nil
}

// encodeNSECData encodes an NSEC record string into its binary representation.
func encodeNSECData(data string) ([]byte, error) {
	// data = "next.example.com A RRSIG NSEC"
	parts := strings.Fields(data)
	if len(parts) < 1 {
		return nil, fmt.Errorf("invalid NSEC record format: %s", data)
	}
	nsec := domain.NSEC{NextName: domain.CanonicalName(parts[0])}
	for _, s := range parts[1:] {
		t := domain.RRTypeFromString(s)
		if t == 0 {
			return nil, fmt.Errorf("unknown type in NSEC bitmap: %s", s)
		}
		nsec.Types = append(nsec.Types, t)
	}
	return AppendNSEC(nil, nsec)
}

// decodeNSECData decodes an NSEC record from its binary representation.
func decodeNSECData(b []byte) (string, error) {
	nsec, err := ParseNSEC(b)
	if err != nil {
		return "", err
	}
	fields := []string{presentationName(nsec.NextName)}
	for _, t := range nsec.Types {
		fields = append(fields, t.String())
	}
	return strings.Join(fields, " "), nil
}
