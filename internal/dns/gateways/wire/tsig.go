package wire

import (
	"encoding/binary"
	"errors"
	"strings"

	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// ErrNoTSIG reports that a message carries no TSIG record where one was
// expected.
var ErrNoTSIG = errors.New("message carries no TSIG record")

// StripTSIG locates the TSIG record, which RFC 8945 requires to be the
// last record of the additional section, and splits the message around
// it. It returns a copy of the message up to the TSIG record with
// ARCOUNT already decremented, the canonical key name from the record
// owner, and the parsed TSIG fields. The returned prefix is the exact
// byte string the MAC was computed over, except that the caller must
// restore the original message ID before digesting.
func StripTSIG(data []byte) ([]byte, string, domain.TSIG, error) {
	if len(data) < 12 {
		return nil, "", domain.TSIG{}, malformed("message shorter than header: %d bytes", len(data))
	}
	arCount := int(binary.BigEndian.Uint16(data[10:12]))
	if arCount == 0 {
		return nil, "", domain.TSIG{}, ErrNoTSIG
	}
	d := &decoder{data: data}

	off := 12
	var err error
	for i := 0; i < int(binary.BigEndian.Uint16(data[4:6])); i++ {
		if off, err = d.skipQuestion(off); err != nil {
			return nil, "", domain.TSIG{}, err
		}
	}
	records := int(binary.BigEndian.Uint16(data[6:8])) +
		int(binary.BigEndian.Uint16(data[8:10])) + arCount
	recordStart := off
	for i := 0; i < records; i++ {
		recordStart = off
		if off, err = d.skipRecord(off); err != nil {
			return nil, "", domain.TSIG{}, err
		}
	}
	if off != len(data) {
		return nil, "", domain.TSIG{}, malformed("%d trailing bytes after last record", len(data)-off)
	}

	rr, _, err := d.readRecord(recordStart)
	if err != nil {
		return nil, "", domain.TSIG{}, err
	}
	if rr.Type != domain.RRTypeTSIG {
		return nil, "", domain.TSIG{}, ErrNoTSIG
	}
	ts, err := rrdata.ParseTSIG(rr.Data)
	if err != nil {
		return nil, "", domain.TSIG{}, malformed("TSIG RDATA: %v", err)
	}

	unsigned := append([]byte(nil), data[:recordStart]...)
	binary.BigEndian.PutUint16(unsigned[10:12], uint16(arCount-1))
	return unsigned, domain.CanonicalName(rr.Name), ts, nil
}

// AppendTSIGRR appends a TSIG record for keyName to a finished message
// and increments ARCOUNT. The owner name is written uncompressed, as
// RFC 8945 requires.
func AppendTSIGRR(data []byte, keyName string, ts domain.TSIG) ([]byte, error) {
	if len(data) < 12 {
		return nil, malformed("message shorter than header: %d bytes", len(data))
	}
	rdata, err := rrdata.AppendTSIG(nil, ts)
	if err != nil {
		return nil, err
	}
	keyName = domain.CanonicalName(keyName)
	if err := validateWireName(keyName); err != nil {
		return nil, err
	}

	out := append([]byte(nil), data...)
	binary.BigEndian.PutUint16(out[10:12], binary.BigEndian.Uint16(out[10:12])+1)
	out = appendDottedName(out, keyName)
	out = binary.BigEndian.AppendUint16(out, uint16(domain.RRTypeTSIG))
	out = binary.BigEndian.AppendUint16(out, uint16(domain.RRClassANY))
	out = binary.BigEndian.AppendUint32(out, 0)
	out = binary.BigEndian.AppendUint16(out, uint16(len(rdata)))
	out = append(out, rdata...)
	if len(out) > maxMessageSize {
		return nil, malformed("signed message size %d exceeds %d bytes", len(out), maxMessageSize)
	}
	return out, nil
}

// appendDottedName appends the uncompressed wire form of a dotted name
// already checked by validateWireName.
func appendDottedName(dst []byte, name string) []byte {
	if name != "" {
		for _, label := range strings.Split(name, ".") {
			dst = append(dst, byte(len(label)))
			dst = append(dst, label...)
		}
	}
	return append(dst, 0)
}

func (d *decoder) skipQuestion(off int) (int, error) {
	_, off, err := d.readName(off)
	if err != nil {
		return 0, err
	}
	if off+4 > len(d.data) {
		return 0, malformed("question runs past end of message")
	}
	return off + 4, nil
}

func (d *decoder) skipRecord(off int) (int, error) {
	_, off, err := d.readName(off)
	if err != nil {
		return 0, err
	}
	if off+10 > len(d.data) {
		return 0, malformed("record header runs past end of message")
	}
	rdLength := int(binary.BigEndian.Uint16(d.data[off+8 : off+10]))
	if off+10+rdLength > len(d.data) {
		return 0, malformed("RDATA runs past end of message")
	}
	return off + 10 + rdLength, nil
}
