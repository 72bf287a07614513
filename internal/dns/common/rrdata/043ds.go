package rrdata

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// ParseDS decodes DS RDATA (RFC 4034 section 5.1) into its typed form.
func ParseDS(b []byte) (domain.DS, error) {
	if len(b) < 5 {
		return domain.DS{}, fmt.Errorf("invalid DS data length: %d", len(b))
	}
	ds := domain.DS{
		KeyTag:     binary.BigEndian.Uint16(b[0:2]),
		Algorithm:  domain.Algorithm(b[2]),
		DigestType: domain.DigestType(b[3]),
		Digest:     append([]byte(nil), b[4:]...),
	}
	return ds, nil
}

// AppendDS appends the wire form of a DS record to dst.
func AppendDS(dst []byte, ds domain.DS) []byte {
	dst = binary.BigEndian.AppendUint16(dst, ds.KeyTag)
	dst = append(dst, byte(ds.Algorithm), byte(ds.DigestType))
	return append(dst, ds.Digest...)
}

// encodeDSData encodes a DS record string into its binary representation.
func encodeDSData(data string) ([]byte, error) {
	// data = "keytag algorithm digesttype hexdigest"
	parts := strings.Fields(data)
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid DS record format (expected 4 fields): %s", data)
	}
	keyTag, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid DS key tag: %v", err)
	}
	alg, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid DS algorithm: %v", err)
	}
	digestType, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid DS digest type: %v", err)
	}
	digest, err := hex.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid DS digest hex: %v", err)
	}
	return AppendDS(nil, domain.DS{
		KeyTag:     uint16(keyTag),
		Algorithm:  domain.Algorithm(alg),
		DigestType: domain.DigestType(digestType),
		Digest:     digest,
	}), nil
}

// decodeDSData decodes a DS record from its binary representation.
func decodeDSData(b []byte) (string, error) {
	ds, err := ParseDS(b)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d %s", ds.KeyTag, ds.Algorithm, ds.DigestType,
		strings.ToUpper(hex.EncodeToString(ds.Digest))), nil
}
