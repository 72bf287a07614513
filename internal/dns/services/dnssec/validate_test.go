package dnssec

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/dnscore/internal/dns/common/clock"
	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
	"github.com/haukened/dnscore/internal/dns/gateways/crypto"
)

func mustNSECRecord(t *testing.T, owner string, nsec domain.NSEC) domain.ResourceRecord {
	t.Helper()
	data, err := rrdata.AppendNSEC(nil, nsec)
	require.NoError(t, err)
	return domain.ResourceRecord{
		Name: owner, Type: domain.RRTypeNSEC, Class: domain.RRClassIN,
		TTL: 3600, Data: data,
	}
}

func mustRRSIGRecord(t *testing.T, set domain.RRset, sig domain.RRSIG) domain.ResourceRecord {
	t.Helper()
	rr, err := RRSIGRecord(set, sig)
	require.NoError(t, err)
	return rr
}

const (
	fixedNow  = 1700000000
	inception = fixedNow - 86400
	expires   = fixedNow + 86400
)

type stubSource struct {
	m map[string]LookupResult
}

func (s *stubSource) Lookup(_ context.Context, name string, t domain.RRType) (LookupResult, error) {
	return s.m[domain.CanonicalName(name)+"|"+t.String()], nil
}

type stubAnchors struct {
	m map[string][]domain.TrustAnchor
}

func (s *stubAnchors) Anchors(_ context.Context, zone string) ([]domain.TrustAnchor, error) {
	return s.m[domain.CanonicalName(zone)], nil
}

// world is a miniature signed namespace: an anchored parent zone with a
// signed child, an unsigned (insecure) delegation, and helpers to add
// leaf RRsets.
type world struct {
	t         *testing.T
	signer    *Signer
	source    *stubSource
	anchors   *stubAnchors
	parentKey ZoneKey
	childKey  ZoneKey
	validator *Validator
}

func (w *world) sign(set domain.RRset, key ZoneKey) []domain.RRSIG {
	w.t.Helper()
	sig, err := w.signer.SignRRset(set, key, inception, expires)
	require.NoError(w.t, err)
	return []domain.RRSIG{sig}
}

func (w *world) addZoneKeys(key ZoneKey) {
	w.t.Helper()
	rr := key.DNSKEYRecord(3600)
	set, err := domain.NewRRset([]domain.ResourceRecord{rr})
	require.NoError(w.t, err)
	w.source.m[domain.CanonicalName(key.Zone)+"|DNSKEY"] = LookupResult{
		Records:    set.Records,
		Signatures: w.sign(set, key),
	}
}

func (w *world) addDS(child ZoneKey, parent ZoneKey) {
	w.t.Helper()
	ds, err := child.DS(crypto.NewDigester(), domain.DigestSHA256)
	require.NoError(w.t, err)
	rr := domain.ResourceRecord{
		Name: domain.CanonicalName(child.Zone), Type: domain.RRTypeDS,
		Class: domain.RRClassIN, TTL: 3600,
	}
	rr.Data = rrdata.AppendDS(nil, ds)
	set, err := domain.NewRRset([]domain.ResourceRecord{rr})
	require.NoError(w.t, err)
	w.source.m[domain.CanonicalName(child.Zone)+"|DS"] = LookupResult{
		Records:    set.Records,
		Signatures: w.sign(set, parent),
	}
}

func (w *world) aSet(name string, last byte) domain.RRset {
	w.t.Helper()
	set, err := domain.NewRRset([]domain.ResourceRecord{{
		Name: name, Type: domain.RRTypeA, Class: domain.RRClassIN,
		TTL: 300, Data: []byte{192, 0, 2, last},
	}})
	require.NoError(w.t, err)
	return set
}

func newWorld(t *testing.T) *world {
	t.Helper()
	parentSigner, err := crypto.GenerateSigner(domain.AlgED25519)
	require.NoError(t, err)
	childSigner, err := crypto.GenerateSigner(domain.AlgECDSAP256SHA256)
	require.NoError(t, err)

	w := &world{
		t:         t,
		signer:    NewSigner(clock.NewMockClock(time.Unix(fixedNow, 0)), nil),
		source:    &stubSource{m: make(map[string]LookupResult)},
		anchors:   &stubAnchors{m: make(map[string][]domain.TrustAnchor)},
		parentKey: ZoneKey{Zone: "example.com", Key: parentSigner, Flags: domain.DNSKEYFlagZone | domain.DNSKEYFlagSEP},
		childKey:  ZoneKey{Zone: "sub.example.com", Key: childSigner, Flags: domain.DNSKEYFlagZone | domain.DNSKEYFlagSEP},
	}

	w.addZoneKeys(w.parentKey)
	w.addZoneKeys(w.childKey)
	w.addDS(w.childKey, w.parentKey)

	anchorDS, err := w.parentKey.DS(crypto.NewDigester(), domain.DigestSHA256)
	require.NoError(t, err)
	w.anchors.m["example.com"] = []domain.TrustAnchor{{Zone: "example.com", DS: &anchorDS}}

	w.validator = NewValidator(
		w.source, w.anchors, crypto.NewVerifier(), crypto.NewDigester(), nil,
		clock.NewMockClock(time.Unix(fixedNow, 0)), nil, ValidatorOptions{},
	)
	return w
}

func TestValidateRRset_SelfConsistency(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("www.example.com", 1)
	sigs := w.sign(set, w.parentKey)

	outcome, err := w.validator.ValidateRRset(context.Background(), set, sigs)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeValid, outcome)
}

func TestValidateRRset_ChildZoneChain(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("host.sub.example.com", 2)
	sigs := w.sign(set, w.childKey)

	outcome, err := w.validator.ValidateRRset(context.Background(), set, sigs)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeValid, outcome)
}

func TestValidateRRset_TamperedSignature(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("www.example.com", 1)
	sigs := w.sign(set, w.parentKey)
	sigs[0].Signature[0] ^= 0x01

	outcome, err := w.validator.ValidateRRset(context.Background(), set, sigs)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBogus, outcome)
}

func TestValidateRRset_TamperedData(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("www.example.com", 1)
	sigs := w.sign(set, w.parentKey)
	set.Records[0].Data[3] ^= 0x01

	outcome, err := w.validator.ValidateRRset(context.Background(), set, sigs)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBogus, outcome)
}

func TestValidateRRset_ExpiredSignature(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("www.example.com", 1)
	sig, err := w.signer.SignRRset(set, w.parentKey, inception-720*3600, inception)
	require.NoError(t, err)

	outcome, err := w.validator.ValidateRRset(context.Background(), set, []domain.RRSIG{sig})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBogus, outcome)
}

func TestValidateRRset_ClockSkewTolerance(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("www.example.com", 1)
	// Expired five minutes ago.
	sig, err := w.signer.SignRRset(set, w.parentKey, inception, fixedNow-300)
	require.NoError(t, err)

	outcome, err := w.validator.ValidateRRset(context.Background(), set, []domain.RRSIG{sig})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBogus, outcome)

	tolerant := NewValidator(
		w.source, w.anchors, crypto.NewVerifier(), crypto.NewDigester(), nil,
		clock.NewMockClock(time.Unix(fixedNow, 0)), nil,
		ValidatorOptions{ClockSkew: 10 * time.Minute},
	)
	outcome, err = tolerant.ValidateRRset(context.Background(), set, []domain.RRSIG{sig})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeValid, outcome)
}

func TestValidateRRset_NoAnchor(t *testing.T) {
	w := newWorld(t)
	set, err := domain.NewRRset([]domain.ResourceRecord{{
		Name: "example.org", Type: domain.RRTypeA, Class: domain.RRClassIN,
		TTL: 300, Data: []byte{192, 0, 2, 1},
	}})
	require.NoError(t, err)
	orgKeySigner, err := crypto.GenerateSigner(domain.AlgED25519)
	require.NoError(t, err)
	orgKey := ZoneKey{Zone: "example.org", Key: orgKeySigner, Flags: domain.DNSKEYFlagZone}
	w.addZoneKeys(orgKey)

	outcome, err := w.validator.ValidateRRset(context.Background(), set, w.sign(set, orgKey))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeIndeterminate, outcome)
}

func TestValidateRRset_InsecureDelegation(t *testing.T) {
	w := newWorld(t)
	// unsigned.example.com is delegated without a DS; an NSEC at the
	// delegation point, signed by the parent, proves it.
	nsec := domain.NSEC{NextName: "www.example.com", Types: []domain.RRType{domain.RRTypeNS}}
	nsecRR := mustNSECRecord(t, "unsigned.example.com", nsec)
	nsecSet, err := domain.NewRRset([]domain.ResourceRecord{nsecRR})
	require.NoError(t, err)
	nsecSigRR := mustRRSIGRecord(t, nsecSet, w.sign(nsecSet, w.parentKey)[0])
	w.source.m["unsigned.example.com|DS"] = LookupResult{
		Denial: []domain.ResourceRecord{nsecRR, nsecSigRR},
	}

	// A record inside the unsigned child, no signatures at all.
	set := w.aSet("host.unsigned.example.com", 3)
	outcome, err := w.validator.ValidateRRset(context.Background(), set, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInsecure, outcome)
}

func TestValidateRRset_UnsignedInSignedZone(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("www.example.com", 1)

	outcome, err := w.validator.ValidateRRset(context.Background(), set, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBogus, outcome)
}

func TestValidateRRset_MissingDSProof(t *testing.T) {
	w := newWorld(t)
	// DS lookup for the name returns nothing, with no denial records.
	set := w.aSet("host.mystery.example.com", 4)
	mysterySigner, err := crypto.GenerateSigner(domain.AlgED25519)
	require.NoError(t, err)
	mysteryKey := ZoneKey{Zone: "mystery.example.com", Key: mysterySigner, Flags: domain.DNSKEYFlagZone}
	w.addZoneKeys(mysteryKey)

	outcome, err := w.validator.ValidateRRset(context.Background(), set, w.sign(set, mysteryKey))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeBogus, outcome)
}

func TestValidateRRset_AnyOneValidSignature(t *testing.T) {
	w := newWorld(t)
	set := w.aSet("www.example.com", 1)
	good := w.sign(set, w.parentKey)[0]
	bad := good
	bad.Signature = append([]byte(nil), good.Signature...)
	bad.Signature[0] ^= 0xFF

	outcome, err := w.validator.ValidateRRset(context.Background(), set, []domain.RRSIG{bad, good})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeValid, outcome)
}

func TestValidateRRset_OutcomeCached(t *testing.T) {
	w := newWorld(t)
	cache := &recordingCache{m: make(map[string]domain.ValidationOutcome)}
	v := NewValidator(
		w.source, w.anchors, crypto.NewVerifier(), crypto.NewDigester(), cache,
		clock.NewMockClock(time.Unix(fixedNow, 0)), nil, ValidatorOptions{},
	)
	set := w.aSet("www.example.com", 1)
	_, err := v.ValidateRRset(context.Background(), set, w.sign(set, w.parentKey))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeValid, cache.m["example.com"])
}

type recordingCache struct {
	m map[string]domain.ValidationOutcome
}

func (c *recordingCache) Get(zone string) (domain.ValidationOutcome, bool) {
	o, ok := c.m[zone]
	return o, ok
}

func (c *recordingCache) Put(zone string, o domain.ValidationOutcome) { c.m[zone] = o }

func TestSerialLess_Wraparound(t *testing.T) {
	assert.True(t, serialLess(10, 20))
	assert.False(t, serialLess(20, 10))
	assert.False(t, serialLess(7, 7))
	// Near the 32-bit wrap, 0xFFFFFFF0 precedes 0x10.
	assert.True(t, serialLess(0xFFFFFFF0, 0x10))
	assert.False(t, serialLess(0x10, 0xFFFFFFF0))
}
