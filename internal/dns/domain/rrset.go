package domain

import "fmt"

// RRset is the set of all resource records sharing an owner name, type,
// and class. In canonical form all members share one TTL; NewRRset
// normalizes to the smallest TTL seen, per RFC 2181 section 5.2.
type RRset struct {
	Name    string
	Type    RRType
	Class   RRClass
	TTL     uint32
	Records []ResourceRecord
}

// NewRRset builds an RRset from records that must all share the same
// owner name, type, and class.
func NewRRset(records []ResourceRecord) (RRset, error) {
	if len(records) == 0 {
		return RRset{}, fmt.Errorf("rrset must contain at least one record")
	}
	first := records[0]
	set := RRset{
		Name:    CanonicalName(first.Name),
		Type:    first.Type,
		Class:   first.Class,
		TTL:     first.TTL,
		Records: records,
	}
	for _, rr := range records[1:] {
		if rr.Key() != first.Key() {
			return RRset{}, fmt.Errorf("record %s %s does not belong to rrset %s %s",
				rr.Name, rr.Type, first.Name, first.Type)
		}
		if rr.TTL < set.TTL {
			set.TTL = rr.TTL
		}
	}
	return set, nil
}

// GroupRRsets partitions records into RRsets keyed by (owner, type,
// class), preserving first-seen order of the sets.
func GroupRRsets(records []ResourceRecord) []RRset {
	var order []string
	byKey := make(map[string][]ResourceRecord)
	for _, rr := range records {
		k := rr.Key()
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], rr)
	}
	sets := make([]RRset, 0, len(order))
	for _, k := range order {
		set, err := NewRRset(byKey[k])
		if err != nil {
			continue // unreachable: groups are homogeneous by construction
		}
		sets = append(sets, set)
	}
	return sets
}

// Key returns the grouping key of the RRset.
func (s RRset) Key() string {
	return rrsetKey(s.Name, s.Type, s.Class)
}
