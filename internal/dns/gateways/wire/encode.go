package wire

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// maxMessageSize is the largest message the codec will produce or accept,
// the limit imposed by the two-octet length framing of DNS over TCP.
const maxMessageSize = 65535

// compressionLimit is the highest offset a 14-bit compression pointer
// can reference.
const compressionLimit = 0x3FFF

// header flag bit positions within the second header word.
const (
	flagQR = 1 << 15
	flagAA = 1 << 10
	flagTC = 1 << 9
	flagRD = 1 << 8
	flagRA = 1 << 7
	flagAD = 1 << 5
	flagCD = 1 << 4
)

// encoder accumulates a wire-format message and tracks name suffix
// offsets for compression.
type encoder struct {
	buf     []byte
	offsets map[string]int
}

// EncodeMessage serializes msg into RFC 1035 wire format.
func (c *messageCodec) EncodeMessage(msg domain.Message) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	e := &encoder{
		buf:     make([]byte, 0, 512),
		offsets: make(map[string]int),
	}
	e.putHeader(msg)
	for _, q := range msg.Questions {
		if err := e.putQuestion(q); err != nil {
			return nil, err
		}
	}
	for _, section := range [][]domain.ResourceRecord{msg.Answers, msg.Authority, msg.Additional} {
		for _, rr := range section {
			if err := e.putRecord(rr); err != nil {
				return nil, err
			}
		}
	}
	if len(e.buf) > maxMessageSize {
		return nil, fmt.Errorf("message size %d exceeds %d bytes", len(e.buf), maxMessageSize)
	}
	c.logger.Debug(map[string]any{
		"id":    msg.Header.ID,
		"bytes": len(e.buf),
	}, "Encoded DNS message")
	return e.buf, nil
}

func (e *encoder) putHeader(msg domain.Message) {
	h := msg.Header
	var flags uint16
	if h.Response {
		flags |= flagQR
	}
	flags |= uint16(h.OpCode&0xF) << 11
	if h.Authoritative {
		flags |= flagAA
	}
	if h.Truncated {
		flags |= flagTC
	}
	if h.RecursionDesired {
		flags |= flagRD
	}
	if h.RecursionAvailable {
		flags |= flagRA
	}
	if h.AuthenticData {
		flags |= flagAD
	}
	if h.CheckingDisabled {
		flags |= flagCD
	}
	flags |= uint16(h.RCode) & 0xF

	e.buf = binary.BigEndian.AppendUint16(e.buf, h.ID)
	e.buf = binary.BigEndian.AppendUint16(e.buf, flags)
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(msg.Questions)))
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(msg.Answers)))
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(msg.Authority)))
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(msg.Additional)))
}

func (e *encoder) putQuestion(q domain.Question) error {
	if err := e.putName(q.Name); err != nil {
		return err
	}
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(q.Type))
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(q.Class))
	return nil
}

func (e *encoder) putRecord(rr domain.ResourceRecord) error {
	if err := e.putName(rr.Name); err != nil {
		return err
	}
	data := rr.Data
	if data == nil && rr.Text != "" {
		var err error
		data, err = rrdata.Encode(rr.Type, rr.Text)
		if err != nil {
			return fmt.Errorf("encoding %s RDATA for %s: %w", rr.Type, rr.Name, err)
		}
	}
	if len(data) > maxMessageSize {
		return fmt.Errorf("RDATA for %s exceeds %d bytes", rr.Name, maxMessageSize)
	}
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(rr.Type))
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(rr.Class))
	e.buf = binary.BigEndian.AppendUint32(e.buf, rr.TTL)
	e.buf = binary.BigEndian.AppendUint16(e.buf, uint16(len(data)))
	e.buf = append(e.buf, data...)
	return nil
}

// putName writes name with RFC 1035 compression: the longest previously
// written suffix is replaced by a pointer, and every new suffix below the
// pointer offset limit is recorded for later reuse.
func (e *encoder) putName(name string) error {
	name = domain.CanonicalName(name)
	if err := validateWireName(name); err != nil {
		return err
	}
	for name != "" {
		if off, ok := e.offsets[name]; ok {
			e.buf = append(e.buf, 0xC0|byte(off>>8), byte(off))
			return nil
		}
		if len(e.buf) <= compressionLimit {
			e.offsets[name] = len(e.buf)
		}
		label := name
		if i := strings.IndexByte(name, '.'); i >= 0 {
			label = name[:i]
			name = name[i+1:]
		} else {
			name = ""
		}
		e.buf = append(e.buf, byte(len(label)))
		e.buf = append(e.buf, label...)
	}
	e.buf = append(e.buf, 0)
	return nil
}

// validateWireName checks label and total length limits. The empty
// string is the root name.
func validateWireName(name string) error {
	if name == "" {
		return nil
	}
	if len(name)+2 > domain.MaxNameLength {
		return fmt.Errorf("name too long: %s", name)
	}
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			return fmt.Errorf("empty label in name: %s", name)
		}
		if len(label) > domain.MaxLabelLength {
			return fmt.Errorf("label too long: %s", label)
		}
	}
	return nil
}
