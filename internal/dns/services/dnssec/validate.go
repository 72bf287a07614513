package dnssec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/haukened/dnscore/internal/dns/common/clock"
	"github.com/haukened/dnscore/internal/dns/common/log"
	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// Validator walks RRSIG/DNSKEY/DS chains from a target RRset up to a
// configured trust anchor and reports one of the four DNSSEC outcomes.
// All lookups go through the injected RRsetSource; the validator never
// fetches anything itself.
type Validator struct {
	source             RRsetSource
	anchors            AnchorSource
	verifier           Verifier
	digester           Digester
	cache              OutcomeCache
	clock              clock.Clock
	logger             log.Logger
	clockSkew          uint32
	maxChainDepth      int
	maxNSEC3Iterations uint16
}

// ValidatorOptions tunes the validation engine. Zero values select the
// defaults.
type ValidatorOptions struct {
	// ClockSkew widens the RRSIG validity window on both ends.
	ClockSkew time.Duration
	// MaxChainDepth bounds the number of zone cuts between a trust
	// anchor and the target. Default 16.
	MaxChainDepth int
	// MaxNSEC3Iterations caps the NSEC3 iteration count the engine is
	// willing to hash. Records beyond the cap are ignored as proofs.
	// Default 150.
	MaxNSEC3Iterations uint16
}

// NewValidator wires a Validator from its collaborators. cache and
// logger may be nil.
func NewValidator(source RRsetSource, anchors AnchorSource, verifier Verifier, digester Digester, cache OutcomeCache, clk clock.Clock, logger log.Logger, opts ValidatorOptions) *Validator {
	if cache == nil {
		cache = nopCache{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if opts.MaxChainDepth <= 0 {
		opts.MaxChainDepth = 16
	}
	if opts.MaxNSEC3Iterations == 0 {
		opts.MaxNSEC3Iterations = 150
	}
	return &Validator{
		source:             source,
		anchors:            anchors,
		verifier:           verifier,
		digester:           digester,
		cache:              cache,
		clock:              clk,
		logger:             logger,
		clockSkew:          uint32(opts.ClockSkew / time.Second),
		maxChainDepth:      opts.MaxChainDepth,
		maxNSEC3Iterations: opts.MaxNSEC3Iterations,
	}
}

type nopCache struct{}

func (nopCache) Get(string) (domain.ValidationOutcome, bool) { return 0, false }
func (nopCache) Put(string, domain.ValidationOutcome)        {}

// chainState memoizes one validation call: validated zone keys, zone
// outcomes, and a visited set guarding against adversarial cycles.
type chainState struct {
	keys     map[string][]domain.DNSKEY
	outcomes map[string]domain.ValidationOutcome
	visited  map[string]bool
}

func newChainState() *chainState {
	return &chainState{
		keys:     make(map[string][]domain.DNSKEY),
		outcomes: make(map[string]domain.ValidationOutcome),
		visited:  make(map[string]bool),
	}
}

// serialLess reports a < b in RFC 1982 serial-number arithmetic.
func serialLess(a, b uint32) bool {
	d := b - a
	return d != 0 && d < 1<<31
}

// windowValid reports whether now falls inside the RRSIG validity
// window, widened by the configured clock skew.
func (v *Validator) windowValid(sig domain.RRSIG, now uint32) bool {
	inception := sig.Inception - v.clockSkew
	expiration := sig.Expiration + v.clockSkew
	return !serialLess(now, inception) && !serialLess(expiration, now)
}

func (v *Validator) now() uint32 {
	return uint32(v.clock.Now().Unix())
}

// verifyAttempt is the per-candidate bookkeeping of the any-one-valid
// rule.
type verifyAttempt struct {
	verified       bool
	sawSupported   bool
	sawUnsupported bool
	sawWindowMiss  bool
	sawCryptoError bool
}

// verifyWithKeys tries every signature over set against the given zone
// keys and records what happened. Failures never abort the loop; per
// the validation contract the RRset is valid if any one covering
// signature verifies.
func (v *Validator) verifyWithKeys(set domain.RRset, sigs []domain.RRSIG, keys []domain.DNSKEY, zone string, now uint32, a *verifyAttempt) {
	for _, sig := range sigs {
		if sig.TypeCovered != set.Type || !domain.NamesEqual(sig.SignerName, zone) {
			continue
		}
		if !v.windowValid(sig, now) {
			a.sawWindowMiss = true
			continue
		}
		signed, err := SignedData(sig, set)
		if err != nil {
			a.sawCryptoError = true
			continue
		}
		for _, key := range keys {
			if key.KeyTag() != sig.KeyTag || key.Algorithm != sig.Algorithm {
				continue
			}
			if !key.IsZoneKey() || key.Protocol != 3 {
				continue
			}
			err := v.verifier.Verify(key.Algorithm, key.PublicKey, signed, sig.Signature)
			switch {
			case err == nil:
				a.verified = true
				a.sawSupported = true
				return
			case errors.Is(err, domain.ErrUnsupportedAlgorithm):
				// Not a failure; remaining candidates are still tried.
				a.sawUnsupported = true
			default:
				a.sawSupported = true
				a.sawCryptoError = true
			}
		}
	}
}

// ValidateRRset reports the DNSSEC outcome for an RRset and its
// covering signatures. Only malformed input yields an error; every
// verification result maps onto one of the four outcomes.
func (v *Validator) ValidateRRset(ctx context.Context, set domain.RRset, sigs []domain.RRSIG) (domain.ValidationOutcome, error) {
	st := newChainState()
	now := v.now()
	owner := domain.CanonicalName(set.Name)

	if len(sigs) == 0 {
		// Unsigned data: secure only if the enclosing zone is provably
		// unsigned.
		_, outcome, err := v.chainKeys(ctx, st, owner)
		if err != nil {
			return domain.OutcomeIndeterminate, err
		}
		switch outcome {
		case domain.OutcomeInsecure:
			return domain.OutcomeInsecure, nil
		case domain.OutcomeValid:
			// Signed zone, unsigned RRset.
			return domain.OutcomeBogus, nil
		default:
			return outcome, nil
		}
	}

	attempt := &verifyAttempt{}
	var sawBogus, sawInsecure, sawIndeterminate, sawValidChain bool
	for _, zone := range signerZones(sigs) {
		if !domain.IsSubdomain(zone, owner) {
			sawBogus = true
			continue
		}
		keys, outcome, err := v.chainKeys(ctx, st, zone)
		if err != nil {
			return domain.OutcomeIndeterminate, err
		}
		switch outcome {
		case domain.OutcomeValid:
			sawValidChain = true
			v.verifyWithKeys(set, sigs, keys, zone, now, attempt)
			if attempt.verified {
				v.logger.Debug(map[string]any{
					"name": set.Name,
					"type": set.Type.String(),
					"zone": zone,
				}, "RRset validated")
				return domain.OutcomeValid, nil
			}
		case domain.OutcomeBogus:
			sawBogus = true
		case domain.OutcomeInsecure:
			sawInsecure = true
		case domain.OutcomeIndeterminate:
			sawIndeterminate = true
		}
	}

	switch {
	case sawBogus || attempt.sawCryptoError || attempt.sawWindowMiss:
		return domain.OutcomeBogus, nil
	case attempt.sawUnsupported && !attempt.sawSupported:
		// Every attempted signature used an algorithm this validator
		// does not implement; the data is treated as unsigned
		// (RFC 6840 section 5.2).
		return domain.OutcomeInsecure, nil
	case sawValidChain:
		// The chain held but no signature matched a zone key.
		return domain.OutcomeBogus, nil
	case sawInsecure:
		return domain.OutcomeInsecure, nil
	case sawIndeterminate:
		return domain.OutcomeIndeterminate, nil
	default:
		return domain.OutcomeBogus, nil
	}
}

// signerZones returns the distinct signer names of sigs in first-seen
// order.
func signerZones(sigs []domain.RRSIG) []string {
	seen := make(map[string]bool, len(sigs))
	var out []string
	for _, sig := range sigs {
		zone := domain.CanonicalName(sig.SignerName)
		if !seen[zone] {
			seen[zone] = true
			out = append(out, zone)
		}
	}
	return out
}

// chainKeys returns the validated DNSKEY set of zone, walking down from
// the nearest anchored ancestor, one DS-linked zone cut at a time. The
// outcome describes the chain: Valid keys, an Insecure (provably
// unsigned) zone, a Bogus break, or Indeterminate when no anchor covers
// the zone.
func (v *Validator) chainKeys(ctx context.Context, st *chainState, zone string) ([]domain.DNSKEY, domain.ValidationOutcome, error) {
	zone = domain.CanonicalName(zone)
	if outcome, ok := st.outcomes[zone]; ok {
		return st.keys[zone], outcome, nil
	}
	if outcome, ok := v.cache.Get(zone); ok && outcome != domain.OutcomeValid {
		return nil, outcome, nil
	}
	keys, outcome, err := v.walkChain(ctx, st, zone)
	if err != nil {
		return nil, domain.OutcomeIndeterminate, err
	}
	st.keys[zone] = keys
	st.outcomes[zone] = outcome
	v.cache.Put(zone, outcome)
	return keys, outcome, nil
}

func (v *Validator) walkChain(ctx context.Context, st *chainState, zone string) ([]domain.DNSKEY, domain.ValidationOutcome, error) {
	anchorZone, anchors, err := v.nearestAnchor(ctx, zone)
	if err != nil {
		return nil, 0, err
	}
	if anchors == nil {
		return nil, domain.OutcomeIndeterminate, nil
	}

	now := v.now()
	keys, outcome, err := v.anchoredKeys(ctx, st, anchorZone, anchors, now)
	if err != nil || outcome != domain.OutcomeValid {
		return nil, outcome, err
	}

	path := descentPath(anchorZone, zone)
	if len(path) > v.maxChainDepth {
		return nil, domain.OutcomeBogus, nil
	}
	current, currentKeys := anchorZone, keys
	for _, next := range path {
		newKeys, outcome, err := v.descend(ctx, st, current, currentKeys, next, now)
		if err != nil || outcome != domain.OutcomeValid {
			return nil, outcome, err
		}
		if newKeys == nil {
			// No zone cut at next; the enclosing zone continues.
			continue
		}
		current, currentKeys = next, newKeys
		st.keys[next] = newKeys
		st.outcomes[next] = domain.OutcomeValid
	}
	return currentKeys, domain.OutcomeValid, nil
}

// nearestAnchor finds the closest ancestor of zone, including zone
// itself and the root, with configured trust anchors.
func (v *Validator) nearestAnchor(ctx context.Context, zone string) (string, []domain.TrustAnchor, error) {
	for {
		anchors, err := v.anchors.Anchors(ctx, zone)
		if err != nil {
			return "", nil, fmt.Errorf("loading trust anchors for %q: %w", zone, err)
		}
		if len(anchors) > 0 {
			return zone, anchors, nil
		}
		if zone == "" {
			return "", nil, nil
		}
		zone = domain.ParentName(zone)
	}
}

// descentPath lists the names from just below anchor down to zone,
// left-trimming one label at a time.
func descentPath(anchor, zone string) []string {
	var path []string
	for z := zone; z != anchor; z = domain.ParentName(z) {
		path = append(path, z)
		if z == "" {
			break
		}
	}
	// Reverse into top-down order.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// anchoredKeys fetches and validates the DNSKEY RRset of the anchor
// zone: some key must match an anchor (DS digest or literal DNSKEY) and
// the RRset's self-signature must verify under that key.
func (v *Validator) anchoredKeys(ctx context.Context, st *chainState, zone string, anchors []domain.TrustAnchor, now uint32) ([]domain.DNSKEY, domain.ValidationOutcome, error) {
	keySet, keys, sigs, err := v.lookupKeys(ctx, zone)
	if err != nil {
		return nil, 0, err
	}
	if len(keys) == 0 {
		return nil, domain.OutcomeBogus, nil
	}
	var entryKeys []domain.DNSKEY
	for _, anchor := range anchors {
		for _, key := range keys {
			if st.visited[visitKey(zone, domain.RRTypeDNSKEY, key.KeyTag())] {
				continue
			}
			if v.anchorMatches(anchor, zone, key) {
				entryKeys = append(entryKeys, key)
			}
		}
	}
	if len(entryKeys) == 0 {
		v.logger.Warn(map[string]any{"zone": zone}, "No DNSKEY matches a configured trust anchor")
		return nil, domain.OutcomeBogus, nil
	}
	for _, key := range entryKeys {
		st.visited[visitKey(zone, domain.RRTypeDNSKEY, key.KeyTag())] = true
	}
	attempt := &verifyAttempt{}
	v.verifyWithKeys(keySet, sigs, entryKeys, zone, now, attempt)
	if !attempt.verified {
		return nil, unverifiedOutcome(attempt), nil
	}
	return keys, domain.OutcomeValid, nil
}

// unverifiedOutcome classifies a failed verification pass: a zone whose
// signatures use only algorithms this validator does not implement is
// treated as unsigned (RFC 6840 section 5.2), anything else is Bogus.
func unverifiedOutcome(a *verifyAttempt) domain.ValidationOutcome {
	if !a.sawSupported && !a.sawCryptoError && !a.sawWindowMiss {
		return domain.OutcomeInsecure
	}
	return domain.OutcomeBogus
}

func visitKey(name string, t domain.RRType, keyTag uint16) string {
	return fmt.Sprintf("%s|%s|%d", name, t, keyTag)
}

// anchorMatches reports whether key satisfies the anchor: byte-equal
// for DNSKEY anchors, digest-equal for DS anchors.
func (v *Validator) anchorMatches(anchor domain.TrustAnchor, zone string, key domain.DNSKEY) bool {
	if anchor.Key != nil {
		return key.Algorithm == anchor.Key.Algorithm &&
			key.Flags == anchor.Key.Flags &&
			bytes.Equal(key.PublicKey, anchor.Key.PublicKey)
	}
	if anchor.DS == nil {
		return false
	}
	return v.dsMatches(*anchor.DS, zone, key)
}

// dsMatches reports whether ds commits to key at zone.
func (v *Validator) dsMatches(ds domain.DS, zone string, key domain.DNSKEY) bool {
	if ds.KeyTag != key.KeyTag() || ds.Algorithm != key.Algorithm {
		return false
	}
	digest, err := v.digester.Digest(ds.DigestType, DigestInput(zone, key))
	if err != nil {
		return false
	}
	return bytes.Equal(digest, ds.Digest)
}

// lookupKeys fetches the DNSKEY RRset of zone and parses it.
func (v *Validator) lookupKeys(ctx context.Context, zone string) (domain.RRset, []domain.DNSKEY, []domain.RRSIG, error) {
	res, err := v.source.Lookup(ctx, zone, domain.RRTypeDNSKEY)
	if err != nil {
		return domain.RRset{}, nil, nil, fmt.Errorf("fetching DNSKEY for %q: %w", zone, err)
	}
	if len(res.Records) == 0 {
		return domain.RRset{}, nil, nil, nil
	}
	set, err := domain.NewRRset(res.Records)
	if err != nil {
		return domain.RRset{}, nil, nil, fmt.Errorf("%w: DNSKEY RRset for %q: %v", domain.ErrMalformed, zone, err)
	}
	keys := make([]domain.DNSKEY, 0, len(set.Records))
	for _, rr := range set.Records {
		key, err := rrdata.ParseDNSKEY(rr.Data)
		if err != nil {
			return domain.RRset{}, nil, nil, fmt.Errorf("%w: DNSKEY for %q: %v", domain.ErrMalformed, zone, err)
		}
		keys = append(keys, key)
	}
	return set, keys, res.Signatures, nil
}

// descend crosses one label boundary below current. It returns the new
// zone's validated keys when next is a signed zone cut, nil keys with a
// Valid outcome when next has no DS (an empty non-terminal or an
// in-zone name), Insecure for a provably unsigned delegation, and Bogus
// when the proof fails.
func (v *Validator) descend(ctx context.Context, st *chainState, current string, currentKeys []domain.DNSKEY, next string, now uint32) ([]domain.DNSKEY, domain.ValidationOutcome, error) {
	res, err := v.source.Lookup(ctx, next, domain.RRTypeDS)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching DS for %q: %w", next, err)
	}
	if len(res.Records) == 0 {
		proof, err := v.checkDenial(res.Denial, next, domain.RRTypeDS, currentKeys, current, now)
		if err != nil {
			return nil, 0, err
		}
		switch {
		case !proof.proven:
			return nil, domain.OutcomeBogus, nil
		case proof.delegation:
			v.logger.Debug(map[string]any{"zone": next}, "Authenticated unsigned delegation")
			return nil, domain.OutcomeInsecure, nil
		default:
			return nil, domain.OutcomeValid, nil
		}
	}

	dsSet, err := domain.NewRRset(res.Records)
	if err != nil || dsSet.Type != domain.RRTypeDS {
		return nil, domain.OutcomeBogus, nil
	}
	attempt := &verifyAttempt{}
	v.verifyWithKeys(dsSet, res.Signatures, currentKeys, current, now, attempt)
	if !attempt.verified {
		return nil, domain.OutcomeBogus, nil
	}

	dsRecords := make([]domain.DS, 0, len(dsSet.Records))
	for _, rr := range dsSet.Records {
		ds, err := rrdata.ParseDS(rr.Data)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: DS for %q: %v", domain.ErrMalformed, next, err)
		}
		dsRecords = append(dsRecords, ds)
	}

	keySet, keys, keySigs, err := v.lookupKeys(ctx, next)
	if err != nil {
		return nil, 0, err
	}
	if len(keys) == 0 {
		return nil, domain.OutcomeBogus, nil
	}
	var entryKeys []domain.DNSKEY
	for _, ds := range dsRecords {
		for _, key := range keys {
			if st.visited[visitKey(next, domain.RRTypeDNSKEY, key.KeyTag())] {
				continue
			}
			if v.dsMatches(ds, next, key) {
				st.visited[visitKey(next, domain.RRTypeDNSKEY, key.KeyTag())] = true
				entryKeys = append(entryKeys, key)
			}
		}
	}
	if len(entryKeys) == 0 {
		for _, ds := range dsRecords {
			if v.algorithmSupported(ds.Algorithm) {
				return nil, domain.OutcomeBogus, nil
			}
		}
		// Every DS at the cut uses an algorithm this validator cannot
		// check; the child is treated as unsigned.
		return nil, domain.OutcomeInsecure, nil
	}
	attempt = &verifyAttempt{}
	v.verifyWithKeys(keySet, keySigs, entryKeys, next, now, attempt)
	if !attempt.verified {
		return nil, unverifiedOutcome(attempt), nil
	}
	return keys, domain.OutcomeValid, nil
}

// algorithmSupported probes the verifier for alg. The crypto backend
// reports unknown algorithms before touching key material, so nil
// inputs are safe.
func (v *Validator) algorithmSupported(alg domain.Algorithm) bool {
	return !errors.Is(v.verifier.Verify(alg, nil, nil, nil), domain.ErrUnsupportedAlgorithm)
}
