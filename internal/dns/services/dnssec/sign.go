package dnssec

import (
	"fmt"
	"sort"
	"time"

	"github.com/haukened/dnscore/internal/dns/common/clock"
	"github.com/haukened/dnscore/internal/dns/common/log"
	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// ZoneKey pairs a private signing key with the zone it signs and the
// DNSKEY flags it is published under.
type ZoneKey struct {
	Zone  string
	Key   SigningKey
	Flags uint16
}

// DNSKEY returns the public DNSKEY record fields for the key.
func (z ZoneKey) DNSKEY() domain.DNSKEY {
	return domain.DNSKEY{
		Flags:     z.Flags,
		Protocol:  3,
		Algorithm: z.Key.Algorithm(),
		PublicKey: z.Key.PublicKey(),
	}
}

// KeyTag returns the RFC 4034 appendix B tag of the published key.
func (z ZoneKey) KeyTag() uint16 {
	return z.DNSKEY().KeyTag()
}

// DNSKEYRecord returns the key as a publishable resource record.
func (z ZoneKey) DNSKEYRecord(ttl uint32) domain.ResourceRecord {
	return domain.ResourceRecord{
		Name:  domain.CanonicalName(z.Zone),
		Type:  domain.RRTypeDNSKEY,
		Class: domain.RRClassIN,
		TTL:   ttl,
		Data:  rrdata.AppendDNSKEY(nil, z.DNSKEY()),
	}
}

// DS returns the delegation digest of the key for publication in the
// parent zone.
func (z ZoneKey) DS(digester Digester, dt domain.DigestType) (domain.DS, error) {
	digest, err := digester.Digest(dt, DigestInput(z.Zone, z.DNSKEY()))
	if err != nil {
		return domain.DS{}, err
	}
	return domain.DS{
		KeyTag:     z.KeyTag(),
		Algorithm:  z.Key.Algorithm(),
		DigestType: dt,
		Digest:     digest,
	}, nil
}

// Signer produces RRSIG records over canonical RRsets and signs whole
// zones.
type Signer struct {
	clock  clock.Clock
	logger log.Logger
}

// NewSigner wires a Signer. clk and logger may be nil.
func NewSigner(clk clock.Clock, logger log.Logger) *Signer {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Signer{clock: clk, logger: logger}
}

// Window returns an inception/expiration pair centered on the signer's
// clock: inception backdated by skew, expiration after lifetime.
func (s *Signer) Window(skew, lifetime time.Duration) (uint32, uint32) {
	now := s.clock.Now()
	return uint32(now.Add(-skew).Unix()), uint32(now.Add(lifetime).Unix())
}

// ownerLabelCount returns the RRSIG label count of an owner name: the
// number of labels excluding the root and a leading wildcard.
func ownerLabelCount(name string) uint8 {
	labels := domain.NameLabels(domain.CanonicalName(name))
	if len(labels) > 0 && labels[0] == "*" {
		labels = labels[1:]
	}
	return uint8(len(labels))
}

// SignRRset signs one RRset with key, producing the RRSIG over the
// RFC 4034 canonical signed data.
func (s *Signer) SignRRset(set domain.RRset, key ZoneKey, inception, expiration uint32) (domain.RRSIG, error) {
	zone := domain.CanonicalName(key.Zone)
	if !domain.IsSubdomain(zone, set.Name) {
		return domain.RRSIG{}, fmt.Errorf("owner %q is not within zone %q", set.Name, key.Zone)
	}
	sig := domain.RRSIG{
		TypeCovered: set.Type,
		Algorithm:   key.Key.Algorithm(),
		Labels:      ownerLabelCount(set.Name),
		OriginalTTL: set.TTL,
		Expiration:  expiration,
		Inception:   inception,
		KeyTag:      key.KeyTag(),
		SignerName:  zone,
	}
	signed, err := SignedData(sig, set)
	if err != nil {
		return domain.RRSIG{}, err
	}
	sig.Signature, err = key.Key.Sign(signed)
	if err != nil {
		return domain.RRSIG{}, fmt.Errorf("signing %s %s: %w", set.Name, set.Type, err)
	}
	return sig, nil
}

// RRSIGRecord wraps a signature in a resource record owned by the
// signed set's name.
func RRSIGRecord(set domain.RRset, sig domain.RRSIG) (domain.ResourceRecord, error) {
	data, err := rrdata.AppendRRSIG(nil, sig)
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	return domain.ResourceRecord{
		Name:  domain.CanonicalName(set.Name),
		Type:  domain.RRTypeRRSIG,
		Class: set.Class,
		TTL:   set.TTL,
		Data:  data,
	}, nil
}

// SignZone signs every RRset of a zone's records, skipping existing
// RRSIGs and anything occluded below a zone cut: at a delegation only
// the DS set is signed, and names under the cut (glue) are not signed
// at all. The returned slice holds only the new RRSIG records.
func (s *Signer) SignZone(records []domain.ResourceRecord, key ZoneKey, inception, expiration uint32) ([]domain.ResourceRecord, error) {
	apex := domain.CanonicalName(key.Zone)
	cuts := zoneCuts(records, apex)
	var out []domain.ResourceRecord
	for _, set := range domain.GroupRRsets(records) {
		if set.Type == domain.RRTypeRRSIG {
			continue
		}
		if occluded(cuts, apex, set.Name) {
			continue
		}
		if atCut(cuts, set.Name) && set.Type != domain.RRTypeDS && set.Type != domain.RRTypeNSEC {
			// Delegation NS sets and glue belong to the child.
			continue
		}
		sig, err := s.SignRRset(set, key, inception, expiration)
		if err != nil {
			return nil, err
		}
		rr, err := RRSIGRecord(set, sig)
		if err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	s.logger.Info(map[string]any{
		"zone":       key.Zone,
		"signatures": len(out),
	}, "Signed zone")
	return out, nil
}

// zoneCuts returns the delegation points of the zone: every name below
// the apex owning an NS RRset.
func zoneCuts(records []domain.ResourceRecord, apex string) map[string]bool {
	cuts := make(map[string]bool)
	for _, rr := range records {
		name := domain.CanonicalName(rr.Name)
		if rr.Type == domain.RRTypeNS && name != apex {
			cuts[name] = true
		}
	}
	return cuts
}

func atCut(cuts map[string]bool, name string) bool {
	return cuts[domain.CanonicalName(name)]
}

// occluded reports whether name sits strictly below a zone cut.
func occluded(cuts map[string]bool, apex, name string) bool {
	name = domain.CanonicalName(name)
	for cut := range cuts {
		if name != cut && domain.IsSubdomain(cut, name) {
			return true
		}
	}
	return false
}

// NSECChain builds the NSEC records linking every authoritative name of
// the zone in canonical order, the last wrapping to the apex. Each NSEC
// lists the types present at its owner plus RRSIG and NSEC itself.
func NSECChain(records []domain.ResourceRecord, zone string, ttl uint32) ([]domain.ResourceRecord, error) {
	apex := domain.CanonicalName(zone)
	cuts := zoneCuts(records, apex)

	types := make(map[string]map[domain.RRType]bool)
	for _, rr := range records {
		name := domain.CanonicalName(rr.Name)
		if !domain.IsSubdomain(apex, name) || occluded(cuts, apex, name) {
			continue
		}
		if types[name] == nil {
			types[name] = make(map[domain.RRType]bool)
		}
		types[name][rr.Type] = true
	}
	if types[apex] == nil {
		return nil, fmt.Errorf("zone %q has no records at its apex", zone)
	}

	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sortCanonical(names)

	out := make([]domain.ResourceRecord, 0, len(names))
	for i, name := range names {
		next := names[(i+1)%len(names)]
		nsec := domain.NSEC{NextName: next}
		for t := range types[name] {
			nsec.Types = append(nsec.Types, t)
		}
		nsec.Types = append(nsec.Types, domain.RRTypeRRSIG, domain.RRTypeNSEC)
		data, err := rrdata.AppendNSEC(nil, nsec)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ResourceRecord{
			Name:  name,
			Type:  domain.RRTypeNSEC,
			Class: domain.RRClassIN,
			TTL:   ttl,
			Data:  data,
		})
	}
	return out, nil
}

// sortCanonical sorts names in the RFC 4034 section 6.1 order.
func sortCanonical(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return CompareCanonicalNames(names[i], names[j]) < 0
	})
}
