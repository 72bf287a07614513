package rrdata

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// ParseTSIG decodes TSIG RDATA (RFC 8945 section 4.2) into its typed form.
func ParseTSIG(b []byte) (domain.TSIG, error) {
	alg, n, err := decodeDomainName(b)
	if err != nil {
		return domain.TSIG{}, fmt.Errorf("invalid TSIG algorithm name: %v", err)
	}
	b = b[n:]
	if len(b) < 10 {
		return domain.TSIG{}, fmt.Errorf("truncated TSIG fixed fields")
	}
	ts := domain.TSIG{
		AlgorithmName: domain.CanonicalName(alg),
		TimeSigned:    uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 | uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5]),
		Fudge:         binary.BigEndian.Uint16(b[6:8]),
	}
	macLen := int(binary.BigEndian.Uint16(b[8:10]))
	b = b[10:]
	if len(b) < macLen+4 {
		return domain.TSIG{}, fmt.Errorf("truncated TSIG MAC")
	}
	ts.MAC = append([]byte(nil), b[:macLen]...)
	b = b[macLen:]
	ts.OriginalID = binary.BigEndian.Uint16(b[0:2])
	ts.Error = domain.RCode(binary.BigEndian.Uint16(b[2:4]))
	b = b[4:]
	if len(b) < 2 {
		return domain.TSIG{}, fmt.Errorf("truncated TSIG other length")
	}
	otherLen := int(binary.BigEndian.Uint16(b[0:2]))
	b = b[2:]
	if len(b) != otherLen {
		return domain.TSIG{}, fmt.Errorf("TSIG other data length %d does not match %d remaining bytes", otherLen, len(b))
	}
	if otherLen > 0 {
		ts.OtherData = append([]byte(nil), b...)
	}
	return ts, nil
}

// AppendTSIG appends the wire form of a TSIG record to dst.
func AppendTSIG(dst []byte, ts domain.TSIG) ([]byte, error) {
	alg, err := encodeDomainName(domain.CanonicalName(ts.AlgorithmName))
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG algorithm name: %v", err)
	}
	if len(ts.MAC) > 65535 || len(ts.OtherData) > 65535 {
		return nil, fmt.Errorf("TSIG field too long")
	}
	dst = append(dst, alg...)
	dst = append(dst,
		byte(ts.TimeSigned>>40), byte(ts.TimeSigned>>32), byte(ts.TimeSigned>>24),
		byte(ts.TimeSigned>>16), byte(ts.TimeSigned>>8), byte(ts.TimeSigned))
	dst = binary.BigEndian.AppendUint16(dst, ts.Fudge)
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(ts.MAC)))
	dst = append(dst, ts.MAC...)
	dst = binary.BigEndian.AppendUint16(dst, ts.OriginalID)
	dst = binary.BigEndian.AppendUint16(dst, uint16(ts.Error))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(ts.OtherData)))
	return append(dst, ts.OtherData...), nil
}

// encodeTSIGData encodes a TSIG record string into its binary representation.
func encodeTSIGData(data string) ([]byte, error) {
	// data = "algorithm time fudge base64mac origid error base64other"
	parts := strings.Fields(data)
	if len(parts) != 7 {
		return nil, fmt.Errorf("invalid TSIG record format (expected 7 fields): %s", data)
	}
	timeSigned, err := strconv.ParseUint(parts[1], 10, 48)
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG time signed: %v", err)
	}
	fudge, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG fudge: %v", err)
	}
	mac, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG MAC base64: %v", err)
	}
	origID, err := strconv.ParseUint(parts[4], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG original id: %v", err)
	}
	tsigErr, err := strconv.ParseUint(parts[5], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid TSIG error: %v", err)
	}
	var other []byte
	if parts[6] != "-" {
		other, err = base64.StdEncoding.DecodeString(parts[6])
		if err != nil {
			return nil, fmt.Errorf("invalid TSIG other data base64: %v", err)
		}
	}
	return AppendTSIG(nil, domain.TSIG{
		AlgorithmName: parts[0],
		TimeSigned:    timeSigned,
		Fudge:         uint16(fudge),
		MAC:           mac,
		OriginalID:    uint16(origID),
		Error:         domain.RCode(tsigErr),
		OtherData:     other,
	})
}

// decodeTSIGData decodes a TSIG record from its binary representation.
func decodeTSIGData(b []byte) (string, error) {
	ts, err := ParseTSIG(b)
	if err != nil {
		return "", err
	}
	other := "-"
	if len(ts.OtherData) > 0 {
		other = base64.StdEncoding.EncodeToString(ts.OtherData)
	}
	return fmt.Sprintf("%s %d %d %s %d %d %s",
		presentationName(ts.AlgorithmName), ts.TimeSigned, ts.Fudge,
		base64.StdEncoding.EncodeToString(ts.MAC), ts.OriginalID,
		uint16(ts.Error), other), nil
}
