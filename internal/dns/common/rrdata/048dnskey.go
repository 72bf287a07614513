package rrdata

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// ParseDNSKEY decodes DNSKEY RDATA (RFC 4034 section 2.1) into its typed form.
func ParseDNSKEY(b []byte) (domain.DNSKEY, error) {
	if len(b) < 5 {
		return domain.DNSKEY{}, fmt.Errorf("invalid DNSKEY data length: %d", len(b))
	}
	return domain.DNSKEY{
		Flags:     binary.BigEndian.Uint16(b[0:2]),
		Protocol:  b[2],
		Algorithm: domain.Algorithm(b[3]),
		PublicKey: append([]byte(nil), b[4:]...),
	}, nil
}

// AppendDNSKEY appends the wire form of a DNSKEY record to dst.
func AppendDNSKEY(dst []byte, key domain.DNSKEY) []byte {
	dst = binary.BigEndian.AppendUint16(dst, key.Flags)
	dst = append(dst, key.Protocol, byte(key.Algorithm))
	return append(dst, key.PublicKey...)
}

// encodeDNSKEYData encodes a DNSKEY record string into its binary representation.
func encodeDNSKEYData(data string) ([]byte, error) {
	// data = "flags protocol algorithm base64key"
	parts := strings.Fields(data)
	if len(parts) != 4 {
		return nil, fmt.Errorf("invalid DNSKEY record format (expected 4 fields): %s", data)
	}
	flags, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid DNSKEY flags: %v", err)
	}
	protocol, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid DNSKEY protocol: %v", err)
	}
	alg, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return nil, fmt.Errorf("invalid DNSKEY algorithm: %v", err)
	}
	pub, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid DNSKEY public key base64: %v", err)
	}
	return AppendDNSKEY(nil, domain.DNSKEY{
		Flags:     uint16(flags),
		Protocol:  uint8(protocol),
		Algorithm: domain.Algorithm(alg),
		PublicKey: pub,
	}), nil
}

// decodeDNSKEYData decodes a DNSKEY record from its binary representation.
func decodeDNSKEYData(b []byte) (string, error) {
	key, err := ParseDNSKEY(b)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d %s", key.Flags, key.Protocol, key.Algorithm,
		base64.StdEncoding.EncodeToString(key.PublicKey)), nil
}
