package domain

import "fmt"

// ResourceRecord represents a DNS resource record (RR). Data always holds
// the wire-encoded RDATA, which round-trips verbatim for types this
// library has no dedicated handling for. Text is an optional
// human-readable rendering supplied by the rrdata package.
type ResourceRecord struct {
	Name  string
	Type  RRType
	Class RRClass
	TTL   uint32
	Data  []byte
	Text  string
}

// NewResourceRecord constructs a ResourceRecord and validates its fields.
// The owner name is stored in canonical form.
func NewResourceRecord(name string, rrtype RRType, class RRClass, ttl uint32, data []byte, text string) (ResourceRecord, error) {
	rr := ResourceRecord{
		Name:  CanonicalName(name),
		Type:  rrtype,
		Class: class,
		TTL:   ttl,
		Data:  data,
		Text:  text,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// Validate checks whether the ResourceRecord fields are valid.
// Unknown record types are accepted; they carry opaque RDATA.
func (rr ResourceRecord) Validate() error {
	// The empty canonical name is the root; everything else must fit
	// the wire-format name bounds.
	if rr.Name != "" {
		if err := ValidateName(rr.Name); err != nil {
			return fmt.Errorf("invalid record name: %w", err)
		}
	}
	if rr.Type == 0 {
		return fmt.Errorf("record type must not be zero")
	}
	if rr.Class == 0 {
		return fmt.Errorf("record class must not be zero")
	}
	if len(rr.Data) > 65535 {
		return fmt.Errorf("record data exceeds 65535 octets: %d", len(rr.Data))
	}
	return nil
}

// Key returns a grouping key derived from the record's owner name, type,
// and class, identifying the RRset the record belongs to.
func (rr ResourceRecord) Key() string {
	return rrsetKey(rr.Name, rr.Type, rr.Class)
}

func rrsetKey(name string, t RRType, c RRClass) string {
	return CanonicalName(name) + "|" + t.String() + "|" + c.String()
}
