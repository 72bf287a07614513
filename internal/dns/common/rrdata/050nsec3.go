package rrdata

import (
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// base32Hex is the extended-hex base32 alphabet NSEC3 uses for hashed
// owner names (RFC 5155 section 1.3), without padding.
var base32Hex = base32.HexEncoding.WithPadding(base32.NoPadding)

// ParseNSEC3 decodes NSEC3 RDATA (RFC 5155 section 3.1) into its typed form.
func ParseNSEC3(b []byte) (domain.NSEC3, error) {
	if len(b) < 5 {
		return domain.NSEC3{}, fmt.Errorf("invalid NSEC3 data length: %d", len(b))
	}
	n3 := domain.NSEC3{
		HashAlgorithm: b[0],
		Flags:         b[1],
		Iterations:    binary.BigEndian.Uint16(b[2:4]),
	}
	saltLen := int(b[4])
	off := 5
	if off+saltLen > len(b) {
		return domain.NSEC3{}, fmt.Errorf("truncated NSEC3 salt")
	}
	n3.Salt = append([]byte(nil), b[off:off+saltLen]...)
	off += saltLen
	if off >= len(b) {
		return domain.NSEC3{}, fmt.Errorf("truncated NSEC3 hash")
	}
	hashLen := int(b[off])
	off++
	if hashLen == 0 || off+hashLen > len(b) {
		return domain.NSEC3{}, fmt.Errorf("invalid NSEC3 hash length: %d", hashLen)
	}
	n3.NextHashed = append([]byte(nil), b[off:off+hashLen]...)
	off += hashLen
	types, err := parseTypeBitmap(b[off:])
	if err != nil {
		return domain.NSEC3{}, err
	}
	n3.Types = types
	return n3, nil
}

// AppendNSEC3 appends the wire form of an NSEC3 record to dst.
func AppendNSEC3(dst []byte, n3 domain.NSEC3) ([]byte, error) {
	if len(n3.Salt) > 255 {
		return nil, fmt.Errorf("NSEC3 salt too long: %d", len(n3.Salt))
	}
	if len(n3.NextHashed) == 0 || len(n3.NextHashed) > 255 {
		return nil, fmt.Errorf("invalid NSEC3 hash length: %d", len(n3.NextHashed))
	}
	dst = append(dst, n3.HashAlgorithm, n3.Flags)
	dst = binary.BigEndian.AppendUint16(dst, n3.Iterations)
	dst = append(dst, byte(len(n3.Salt)))
	dst = append(dst, n3.Salt...)
	dst = append(dst, byte(len(n3.NextHashed)))
	dst = append(dst, n3.NextHashed...)
	return appendTypeBitmap(dst, n3.Types), nil
}

// encodeNSEC3Data encodes an NSEC3 record string into its binary representation.
func encodeNSEC3Data(data string) ([]byte, error) {
	// data = "hashalg flags iterations salthex nexthash A RRSIG"
	parts := strings.Fields(data)
	if len(parts) < 5 {
		return nil, fmt.Errorf("invalid NSEC3 record format (expected at least 5 fields): %s", data)
	}
	hashAlg, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid NSEC3 hash algorithm: %v", err)
	}
	flags, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid NSEC3 flags: %v", err)
	}
	iterations, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid NSEC3 iterations: %v", err)
	}
	var salt []byte
	if parts[3] != "-" {
		salt, err = hex.DecodeString(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid NSEC3 salt hex: %v", err)
		}
	}
	next, err := base32Hex.DecodeString(strings.ToUpper(parts[4]))
	if err != nil {
		return nil, fmt.Errorf("invalid NSEC3 next hash: %v", err)
	}
	n3 := domain.NSEC3{
		HashAlgorithm: uint8(hashAlg),
		Flags:         uint8(flags),
		Iterations:    uint16(iterations),
		Salt:          salt,
		NextHashed:    next,
	}
	for _, s := range parts[5:] {
		t := domain.RRTypeFromString(s)
		if t == 0 {
			return nil, fmt.Errorf("unknown type in NSEC3 bitmap: %s", s)
		}
		n3.Types = append(n3.Types, t)
	}
	return AppendNSEC3(nil, n3)
}

// decodeNSEC3Data decodes an NSEC3 record from its binary representation.
func decodeNSEC3Data(b []byte) (string, error) {
	n3, err := ParseNSEC3(b)
	if err != nil {
		return "", err
	}
	salt := "-"
	if len(n3.Salt) > 0 {
		salt = strings.ToUpper(hex.EncodeToString(n3.Salt))
	}
	fields := []string{
		strconv.Itoa(int(n3.HashAlgorithm)),
		strconv.Itoa(int(n3.Flags)),
		strconv.Itoa(int(n3.Iterations)),
		salt,
		base32Hex.EncodeToString(n3.NextHashed),
	}
	for _, t := range n3.Types {
		fields = append(fields, t.String())
	}
	return strings.Join(fields, " "), nil
}
