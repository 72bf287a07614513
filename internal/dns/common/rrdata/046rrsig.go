package rrdata

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// ParseRRSIG decodes RRSIG RDATA (RFC 4034 section 3.1) into its typed form.
func ParseRRSIG(b []byte) (domain.RRSIG, error) {
	if len(b) < 18 {
		return domain.RRSIG{}, fmt.Errorf("invalid RRSIG data length: %d", len(b))
	}
	sig := domain.RRSIG{
		TypeCovered: domain.RRType(binary.BigEndian.Uint16(b[0:2])),
		Algorithm:   domain.Algorithm(b[2]),
		Labels:      b[3],
		OriginalTTL: binary.BigEndian.Uint32(b[4:8]),
		Expiration:  binary.BigEndian.Uint32(b[8:12]),
		Inception:   binary.BigEndian.Uint32(b[12:16]),
		KeyTag:      binary.BigEndian.Uint16(b[16:18]),
	}
	signer, n, err := decodeDomainName(b[18:])
	if err != nil {
		return domain.RRSIG{}, fmt.Errorf("invalid RRSIG signer name: %v", err)
	}
	sig.SignerName = signer
	sig.Signature = append([]byte(nil), b[18+n:]...)
	if len(sig.Signature) == 0 {
		return domain.RRSIG{}, fmt.Errorf("RRSIG carries no signature bytes")
	}
	return sig, nil
}

// AppendRRSIGData appends the RRSIG RDATA fields without the trailing
// signature, which is exactly the prefix of the signed data defined by
// RFC 4034 section 3.1.8.1. The signer name is written uncompressed
// with its case preserved; RFC 6840 section 5.1 removed the signer
// field from the downcase set, so verification must use the bytes the
// record arrived with.
func AppendRRSIGData(dst []byte, sig domain.RRSIG) ([]byte, error) {
	dst = binary.BigEndian.AppendUint16(dst, uint16(sig.TypeCovered))
	dst = append(dst, byte(sig.Algorithm), sig.Labels)
	dst = binary.BigEndian.AppendUint32(dst, sig.OriginalTTL)
	dst = binary.BigEndian.AppendUint32(dst, sig.Expiration)
	dst = binary.BigEndian.AppendUint32(dst, sig.Inception)
	dst = binary.BigEndian.AppendUint16(dst, sig.KeyTag)
	signer, err := encodeDomainName(sig.SignerName)
	if err != nil {
		return nil, fmt.Errorf("invalid RRSIG signer name: %v", err)
	}
	return append(dst, signer...), nil
}

// AppendRRSIG appends the full wire form of an RRSIG record to dst.
func AppendRRSIG(dst []byte, sig domain.RRSIG) ([]byte, error) {
	dst, err := AppendRRSIGData(dst, sig)
	if err != nil {
		return nil, err
	}
	return append(dst, sig.Signature...), nil
}

// encodeRRSIGData encodes an RRSIG record string into its binary representation.
func encodeRRSIGData(data string) ([]byte, error) {
	// data = "typecovered alg labels origttl expiration inception keytag signer base64sig"
	parts := strings.Fields(data)
	if len(parts) != 9 {
		return nil, fmt.Errorf("invalid RRSIG record format (expected 9 fields): %s", data)
	}
	typeCovered := domain.RRTypeFromString(parts[0])
	if typeCovered == 0 {
		v, err := strconv.ParseUint(strings.TrimPrefix(parts[0], "TYPE"), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid RRSIG type covered: %s", parts[0])
		}
		typeCovered = domain.RRType(v)
	}
	var nums [5]uint64
	widths := []int{8, 8, 32, 32, 32}
	for i, w := range widths {
		v, err := strconv.ParseUint(parts[i+1], 10, w)
		if err != nil {
			return nil, fmt.Errorf("invalid RRSIG field %d: %v", i+1, err)
		}
		nums[i] = v
	}
	keyTag, err := strconv.ParseUint(parts[6], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid RRSIG key tag: %v", err)
	}
	signature, err := base64.StdEncoding.DecodeString(parts[8])
	if err != nil {
		return nil, fmt.Errorf("invalid RRSIG signature base64: %v", err)
	}
	return AppendRRSIG(nil, domain.RRSIG{
		TypeCovered: typeCovered,
		Algorithm:   domain.Algorithm(nums[0]),
		Labels:      uint8(nums[1]),
		OriginalTTL: uint32(nums[2]),
		Expiration:  uint32(nums[3]),
		Inception:   uint32(nums[4]),
		KeyTag:      uint16(keyTag),
		SignerName:  parts[7],
		Signature:   signature,
	})
}

// decodeRRSIGData decodes an RRSIG record from its binary representation.
func decodeRRSIGData(b []byte) (string, error) {
	sig, err := ParseRRSIG(b)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %d %d %d %d %d %d %s %s",
		sig.TypeCovered, sig.Algorithm, sig.Labels, sig.OriginalTTL,
		sig.Expiration, sig.Inception, sig.KeyTag, presentationName(sig.SignerName),
		base64.StdEncoding.EncodeToString(sig.Signature)), nil
}
