package dnssec

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/base32"
	"strings"

	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

var base32Hex = base32.HexEncoding.WithPadding(base32.NoPadding)

// NSECCovers reports whether name falls strictly between owner and next
// in canonical order. The last NSEC of a zone wraps: its next name is
// the apex, ordered before the owner, and then everything after owner
// is covered. An NSEC whose owner equals its next name is alone in the
// zone and covers every other name.
func NSECCovers(owner, next, name string) bool {
	ownerCmp := CompareCanonicalNames(owner, name)
	nextCmp := CompareCanonicalNames(name, next)
	wrapped := CompareCanonicalNames(next, owner) <= 0
	if wrapped {
		return ownerCmp < 0 || nextCmp < 0
	}
	return ownerCmp < 0 && nextCmp < 0
}

// NSEC3Hash computes the RFC 5155 section 5 hashed owner name of name:
// iterations+1 rounds of SHA-1 over the canonical wire name, each round
// salted.
func NSEC3Hash(name string, salt []byte, iterations uint16) []byte {
	x := AppendCanonicalName(nil, name)
	digest := sha1.Sum(append(x, salt...))
	for i := uint16(0); i < iterations; i++ {
		digest = sha1.Sum(append(digest[:], salt...))
	}
	return digest[:]
}

// denialProof is the result of evaluating NSEC/NSEC3 records against a
// queried (name, type). delegation reports that the proof shows an
// unsigned delegation, which makes everything below it Insecure rather
// than Bogus.
type denialProof struct {
	proven     bool
	delegation bool
}

// checkDenial verifies that the denial records authenticate the absence
// of (name, qtype). Each NSEC/NSEC3 RRset must carry an RRSIG that
// verifies under the zone keys before it counts as proof.
func (v *Validator) checkDenial(denial []domain.ResourceRecord, name string, qtype domain.RRType, keys []domain.DNSKEY, zone string, now uint32) (denialProof, error) {
	name = domain.CanonicalName(name)
	sigsByKey := make(map[string][]domain.RRSIG)
	for _, rr := range denial {
		if rr.Type != domain.RRTypeRRSIG {
			continue
		}
		sig, err := rrdata.ParseRRSIG(rr.Data)
		if err != nil {
			continue
		}
		key := domain.CanonicalName(rr.Name) + "|" + sig.TypeCovered.String()
		sigsByKey[key] = append(sigsByKey[key], sig)
	}

	for _, set := range domain.GroupRRsets(denial) {
		if set.Type != domain.RRTypeNSEC && set.Type != domain.RRTypeNSEC3 {
			continue
		}
		sigs := sigsByKey[domain.CanonicalName(set.Name)+"|"+set.Type.String()]
		attempt := &verifyAttempt{}
		v.verifyWithKeys(set, sigs, keys, zone, now, attempt)
		if !attempt.verified {
			continue
		}
		for _, rr := range set.Records {
			var proof denialProof
			if set.Type == domain.RRTypeNSEC {
				nsec, err := rrdata.ParseNSEC(rr.Data)
				if err != nil {
					continue
				}
				proof = evalNSEC(rr.Name, nsec, name, qtype)
			} else {
				n3, err := rrdata.ParseNSEC3(rr.Data)
				if err != nil || n3.HashAlgorithm != 1 || n3.Iterations > v.maxNSEC3Iterations {
					continue
				}
				proof = evalNSEC3(rr.Name, n3, name, qtype)
			}
			if proof.proven {
				return proof, nil
			}
		}
	}
	return denialProof{}, nil
}

// evalNSEC checks one verified NSEC record against the queried name and
// type.
func evalNSEC(owner string, nsec domain.NSEC, name string, qtype domain.RRType) denialProof {
	if domain.NamesEqual(owner, name) {
		// The name exists; the bitmap must show the type absent.
		if nsec.HasType(qtype) {
			return denialProof{}
		}
		return denialProof{
			proven:     true,
			delegation: nsec.HasType(domain.RRTypeNS) && !nsec.HasType(domain.RRTypeSOA),
		}
	}
	if NSECCovers(owner, nsec.NextName, name) {
		return denialProof{proven: true}
	}
	return denialProof{}
}

// evalNSEC3 checks one verified NSEC3 record. The record's zone is the
// parent of its hashed owner name.
func evalNSEC3(owner string, n3 domain.NSEC3, name string, qtype domain.RRType) denialProof {
	ownerLabels := domain.NameLabels(owner)
	if len(ownerLabels) == 0 {
		return denialProof{}
	}
	hash := NSEC3Hash(name, n3.Salt, n3.Iterations)
	hashLabel := base32Hex.EncodeToString(hash)
	if strings.EqualFold(ownerLabels[0], hashLabel) {
		if n3.HasType(qtype) {
			return denialProof{}
		}
		return denialProof{
			proven:     true,
			delegation: n3.HasType(domain.RRTypeNS) && !n3.HasType(domain.RRTypeSOA),
		}
	}
	ownerHash, err := base32Hex.DecodeString(strings.ToUpper(ownerLabels[0]))
	if err != nil {
		return denialProof{}
	}
	if nsec3Covers(ownerHash, n3.NextHashed, hash) {
		// An opt-out span can hide an unsigned delegation.
		return denialProof{proven: true, delegation: n3.OptOut()}
	}
	return denialProof{}
}

// nsec3Covers reports whether hash falls strictly between owner and
// next, with the same wraparound rule as NSEC but over hash bytes.
func nsec3Covers(owner, next, hash []byte) bool {
	ownerCmp := bytes.Compare(owner, hash)
	nextCmp := bytes.Compare(hash, next)
	if bytes.Compare(next, owner) <= 0 {
		return ownerCmp < 0 || nextCmp < 0
	}
	return ownerCmp < 0 && nextCmp < 0
}

// ValidateDenial reports whether the denial records prove that
// (name, qtype) does not exist, chaining the proving records' own
// signatures to a trust anchor. Valid means the absence is
// authenticated.
func (v *Validator) ValidateDenial(ctx context.Context, name string, qtype domain.RRType, denial []domain.ResourceRecord) (domain.ValidationOutcome, error) {
	st := newChainState()
	now := v.now()

	var sigs []domain.RRSIG
	for _, rr := range denial {
		if rr.Type != domain.RRTypeRRSIG {
			continue
		}
		if sig, err := rrdata.ParseRRSIG(rr.Data); err == nil {
			sigs = append(sigs, sig)
		}
	}
	if len(sigs) == 0 {
		return domain.OutcomeIndeterminate, nil
	}

	sawInsecure := false
	sawIndeterminate := false
	for _, zone := range signerZones(sigs) {
		keys, outcome, err := v.chainKeys(ctx, st, zone)
		if err != nil {
			return domain.OutcomeIndeterminate, err
		}
		switch outcome {
		case domain.OutcomeValid:
			proof, err := v.checkDenial(denial, name, qtype, keys, zone, now)
			if err != nil {
				return domain.OutcomeIndeterminate, err
			}
			if proof.proven {
				return domain.OutcomeValid, nil
			}
		case domain.OutcomeInsecure:
			sawInsecure = true
		case domain.OutcomeIndeterminate:
			sawIndeterminate = true
		}
	}
	switch {
	case sawInsecure:
		return domain.OutcomeInsecure, nil
	case sawIndeterminate:
		return domain.OutcomeIndeterminate, nil
	default:
		return domain.OutcomeBogus, nil
	}
}
