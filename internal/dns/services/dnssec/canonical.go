package dnssec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// AppendCanonicalName appends the RFC 4034 section 6.2 canonical wire
// form of a name: uncompressed, length-prefixed labels, ASCII
// lowercased.
func AppendCanonicalName(dst []byte, name string) []byte {
	for _, label := range domain.NameLabels(domain.CanonicalName(name)) {
		dst = append(dst, byte(len(label)))
		dst = append(dst, label...)
	}
	return append(dst, 0)
}

// rdataDowncaseTypes is the RFC 6840 section 5.1 set of types whose
// RDATA names are lowercased in canonical form. Each entry lists the
// fixed byte runs preceding the embedded names, mirroring the wire
// decoder's layout table.
var rdataDowncaseTypes = map[domain.RRType][]int{
	domain.RRTypeNS:    {0},
	domain.RRTypeCNAME: {0},
	domain.RRTypeSOA:   {0, 0},
	domain.RRTypePTR:   {0},
	domain.RRTypeMX:    {2},
	domain.RRTypeSRV:   {6},
}

// CanonicalRDATA returns the canonical form of uncompressed RDATA:
// identical bytes except that embedded names of the RFC 6840 downcase
// set are ASCII lowercased.
func CanonicalRDATA(t domain.RRType, data []byte) ([]byte, error) {
	prefixes, ok := rdataDowncaseTypes[t]
	if !ok {
		return data, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	pos := 0
	for _, p := range prefixes {
		pos += p
		for pos < len(out) {
			l := int(out[pos])
			if l == 0 {
				pos++
				break
			}
			if l > domain.MaxLabelLength || pos+1+l > len(out) {
				return nil, fmt.Errorf("%w: name in %s RDATA", domain.ErrMalformed, t)
			}
			for i := pos + 1; i <= pos+l; i++ {
				if out[i] >= 'A' && out[i] <= 'Z' {
					out[i] += 'a' - 'A'
				}
			}
			pos += 1 + l
		}
	}
	return out, nil
}

// CompareCanonicalNames orders two names per RFC 4034 section 6.1:
// label by label from the rightmost, each compared as lowercased byte
// strings, shorter name first on a shared prefix. The result is a total
// order over all names.
func CompareCanonicalNames(a, b string) int {
	la := domain.NameLabels(domain.CanonicalName(a))
	lb := domain.NameLabels(domain.CanonicalName(b))
	for i := 1; i <= len(la) && i <= len(lb); i++ {
		if c := bytes.Compare([]byte(la[len(la)-i]), []byte(lb[len(lb)-i])); c != 0 {
			return c
		}
	}
	switch {
	case len(la) < len(lb):
		return -1
	case len(la) > len(lb):
		return 1
	default:
		return 0
	}
}

// canonicalRecordData returns the canonical RDATA of every record in
// the set, sorted ascending as unsigned byte strings with duplicates
// removed (RFC 4034 section 6.3).
func canonicalRecordData(set domain.RRset) ([][]byte, error) {
	out := make([][]byte, 0, len(set.Records))
	for _, rr := range set.Records {
		data := rr.Data
		if data == nil && rr.Text != "" {
			var err error
			data, err = rrdata.Encode(rr.Type, rr.Text)
			if err != nil {
				return nil, err
			}
		}
		canon, err := CanonicalRDATA(rr.Type, data)
		if err != nil {
			return nil, err
		}
		out = append(out, canon)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i], out[j]) < 0 })
	dedup := out[:0]
	for i, d := range out {
		if i == 0 || !bytes.Equal(d, out[i-1]) {
			dedup = append(dedup, d)
		}
	}
	return dedup, nil
}

// SignedData assembles the RFC 4034 section 3.1.8.1 signature input:
// the RRSIG RDATA with the signature field removed, followed by the
// RRset in canonical form. The owner name is lowercased and the TTL
// replaced by the RRSIG original TTL. Wildcard expansion is undone by
// truncating the owner to the label count the RRSIG declares.
func SignedData(sig domain.RRSIG, set domain.RRset) ([]byte, error) {
	buf, err := rrdata.AppendRRSIGData(nil, sig)
	if err != nil {
		return nil, err
	}
	owner := domain.CanonicalName(set.Name)
	labels := domain.NameLabels(owner)
	if int(sig.Labels) > len(labels) {
		return nil, fmt.Errorf("%w: RRSIG label count %d exceeds owner labels %d", domain.ErrMalformed, sig.Labels, len(labels))
	}
	if int(sig.Labels) < len(labels) {
		// Wildcard-expanded owner: sign "*" plus the rightmost labels.
		owner = "*"
		for _, l := range labels[len(labels)-int(sig.Labels):] {
			owner += "." + l
		}
	}
	records, err := canonicalRecordData(set)
	if err != nil {
		return nil, err
	}
	ownerWire := AppendCanonicalName(nil, owner)
	for _, data := range records {
		buf = append(buf, ownerWire...)
		buf = binary.BigEndian.AppendUint16(buf, uint16(set.Type))
		buf = binary.BigEndian.AppendUint16(buf, uint16(set.Class))
		buf = binary.BigEndian.AppendUint32(buf, sig.OriginalTTL)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(data)))
		buf = append(buf, data...)
	}
	return buf, nil
}

// DigestInput builds the RFC 4034 section 5.1.4 DS hash input for a
// DNSKEY owned by zone: canonical owner name followed by the DNSKEY
// RDATA.
func DigestInput(zone string, key domain.DNSKEY) []byte {
	out := AppendCanonicalName(nil, zone)
	return rrdata.AppendDNSKEY(out, key)
}
