package wire

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// malformed wraps a format violation in domain.ErrMalformed so callers
// can detect parse failures with errors.Is.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrMalformed}, args...)...)
}

// decoder reads a single wire-format message. Names may reference any
// earlier part of the message via compression pointers, so the full
// buffer is retained.
type decoder struct {
	data []byte
}

// DecodeMessage parses data into a domain.Message. Every declared
// section count must be satisfied and the buffer fully consumed.
func (c *messageCodec) DecodeMessage(data []byte) (domain.Message, error) {
	if len(data) < 12 {
		return domain.Message{}, malformed("message shorter than header: %d bytes", len(data))
	}
	if len(data) > maxMessageSize {
		return domain.Message{}, malformed("message size %d exceeds %d bytes", len(data), maxMessageSize)
	}
	d := &decoder{data: data}

	flags := binary.BigEndian.Uint16(data[2:4])
	msg := domain.Message{
		Header: domain.Header{
			ID:                 binary.BigEndian.Uint16(data[0:2]),
			Response:           flags&flagQR != 0,
			OpCode:             domain.OpCode(flags >> 11 & 0xF),
			Authoritative:      flags&flagAA != 0,
			Truncated:          flags&flagTC != 0,
			RecursionDesired:   flags&flagRD != 0,
			RecursionAvailable: flags&flagRA != 0,
			AuthenticData:      flags&flagAD != 0,
			CheckingDisabled:   flags&flagCD != 0,
			RCode:              domain.RCode(flags & 0xF),
		},
	}
	qdCount := int(binary.BigEndian.Uint16(data[4:6]))
	counts := []int{
		int(binary.BigEndian.Uint16(data[6:8])),
		int(binary.BigEndian.Uint16(data[8:10])),
		int(binary.BigEndian.Uint16(data[10:12])),
	}

	off := 12
	for i := 0; i < qdCount; i++ {
		q, next, err := d.readQuestion(off)
		if err != nil {
			return domain.Message{}, fmt.Errorf("question %d: %w", i, err)
		}
		msg.Questions = append(msg.Questions, q)
		off = next
	}
	sections := []*[]domain.ResourceRecord{&msg.Answers, &msg.Authority, &msg.Additional}
	names := []string{"answer", "authority", "additional"}
	for s, count := range counts {
		for i := 0; i < count; i++ {
			rr, next, err := d.readRecord(off)
			if err != nil {
				return domain.Message{}, fmt.Errorf("%s record %d: %w", names[s], i, err)
			}
			*sections[s] = append(*sections[s], rr)
			off = next
		}
	}
	if off != len(data) {
		return domain.Message{}, malformed("%d trailing bytes after last record", len(data)-off)
	}
	c.logger.Debug(map[string]any{
		"id":        msg.Header.ID,
		"questions": len(msg.Questions),
		"answers":   len(msg.Answers),
	}, "Decoded DNS message")
	return msg, nil
}

// readName decodes a possibly compressed name starting at off. It
// returns the dotted name (empty string for the root) and the offset
// just past the name in the original byte stream.
func (d *decoder) readName(off int) (string, int, error) {
	labels, end, err := d.readLabels(off)
	if err != nil {
		return "", 0, err
	}
	return strings.Join(labels, "."), end, nil
}

// readLabels walks a possibly compressed name starting at off and
// returns its labels as raw byte strings, untouched by any separator
// convention. Each compression pointer must target a strictly earlier
// offset than the previous one, which bounds the walk and rejects
// pointer loops.
func (d *decoder) readLabels(off int) ([]string, int, error) {
	var labels []string
	var total int
	end := -1
	limit := off
	pos := off
	for {
		if pos >= len(d.data) {
			return nil, 0, malformed("name runs past end of message")
		}
		b := int(d.data[pos])
		switch {
		case b == 0:
			if end == -1 {
				end = pos + 1
			}
			return labels, end, nil
		case b&0xC0 == 0xC0:
			if pos+1 >= len(d.data) {
				return nil, 0, malformed("compression pointer runs past end of message")
			}
			target := (b&0x3F)<<8 | int(d.data[pos+1])
			if end == -1 {
				end = pos + 2
			}
			if target >= limit {
				return nil, 0, malformed("compression pointer at %d does not target an earlier offset", pos)
			}
			limit = target
			pos = target
		case b&0xC0 != 0:
			return nil, 0, malformed("reserved label type 0x%02X", b&0xC0)
		default:
			if pos+1+b > len(d.data) {
				return nil, 0, malformed("label runs past end of message")
			}
			total += b + 1
			if total+1 > domain.MaxNameLength {
				return nil, 0, malformed("name exceeds %d bytes", domain.MaxNameLength)
			}
			labels = append(labels, string(d.data[pos+1:pos+1+b]))
			pos += 1 + b
		}
	}
}

func (d *decoder) readQuestion(off int) (domain.Question, int, error) {
	name, off, err := d.readName(off)
	if err != nil {
		return domain.Question{}, 0, err
	}
	if off+4 > len(d.data) {
		return domain.Question{}, 0, malformed("question runs past end of message")
	}
	q := domain.Question{
		Name:  domain.CanonicalName(name),
		Type:  domain.RRType(binary.BigEndian.Uint16(d.data[off : off+2])),
		Class: domain.RRClass(binary.BigEndian.Uint16(d.data[off+2 : off+4])),
	}
	return q, off + 4, nil
}

func (d *decoder) readRecord(off int) (domain.ResourceRecord, int, error) {
	name, off, err := d.readName(off)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	if off+10 > len(d.data) {
		return domain.ResourceRecord{}, 0, malformed("record header runs past end of message")
	}
	rr := domain.ResourceRecord{
		Name:  name,
		Type:  domain.RRType(binary.BigEndian.Uint16(d.data[off : off+2])),
		Class: domain.RRClass(binary.BigEndian.Uint16(d.data[off+2 : off+4])),
		TTL:   binary.BigEndian.Uint32(d.data[off+4 : off+8]),
	}
	rdLength := int(binary.BigEndian.Uint16(d.data[off+8 : off+10]))
	off += 10
	if off+rdLength > len(d.data) {
		return domain.ResourceRecord{}, 0, malformed("RDATA runs past end of message")
	}
	rr.Data, err = d.rebuildRDATA(rr.Type, off, off+rdLength)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	rr.Text, err = rrdata.Decode(rr.Type, rr.Data)
	if err != nil {
		return domain.ResourceRecord{}, 0, malformed("%s RDATA: %v", rr.Type, err)
	}
	return rr, off + rdLength, nil
}

// rdataNamePrefixes maps name-bearing RDATA types to the fixed byte
// runs preceding each embedded name. Types absent from the map carry no
// names and are copied verbatim.
var rdataNamePrefixes = map[domain.RRType][]int{
	domain.RRTypeNS:    {0},
	domain.RRTypeCNAME: {0},
	domain.RRTypeSOA:   {0, 0},
	domain.RRTypePTR:   {0},
	domain.RRTypeMX:    {2},
	domain.RRTypeSRV:   {6},
	domain.RRTypeRRSIG: {18},
	domain.RRTypeNSEC:  {0},
}

// rebuildRDATA copies the RDATA region, resolving compression pointers
// in embedded names so the result stands alone. Compressed names in
// RDATA are forbidden for senders of most of these types but older
// implementations emit them, so the decoder accepts them everywhere.
func (d *decoder) rebuildRDATA(t domain.RRType, start, end int) ([]byte, error) {
	prefixes, ok := rdataNamePrefixes[t]
	if !ok {
		return append([]byte(nil), d.data[start:end]...), nil
	}
	out := make([]byte, 0, end-start)
	pos := start
	for _, p := range prefixes {
		if pos+p > end {
			return nil, malformed("%s RDATA too short", t)
		}
		out = append(out, d.data[pos:pos+p]...)
		pos += p
		labels, next, err := d.readLabels(pos)
		if err != nil {
			return nil, err
		}
		if next > end {
			return nil, malformed("name in %s RDATA crosses the RDATA boundary", t)
		}
		// Raw labels keep the rebuild exact even when a label carries a
		// literal dot octet.
		for _, label := range labels {
			out = append(out, byte(len(label)))
			out = append(out, label...)
		}
		out = append(out, 0)
		pos = next
	}
	return append(out, d.data[pos:end]...), nil
}
