package domain

import "fmt"

// Algorithm identifies a DNSSEC signing algorithm (RFC 4034 appendix A.1
// and successors).
type Algorithm uint8

// DNSSEC algorithm numbers
const (
	AlgRSASHA1         Algorithm = 5  // RSA/SHA-1 (deprecated)
	AlgRSASHA256       Algorithm = 8  // RSA/SHA-256
	AlgRSASHA512       Algorithm = 10 // RSA/SHA-512
	AlgECDSAP256SHA256 Algorithm = 13 // ECDSA P-256/SHA-256
	AlgECDSAP384SHA384 Algorithm = 14 // ECDSA P-384/SHA-384
	AlgED25519         Algorithm = 15 // Ed25519
)

// String returns the mnemonic for the algorithm number.
func (a Algorithm) String() string {
	switch a {
	case AlgRSASHA1:
		return "RSASHA1"
	case AlgRSASHA256:
		return "RSASHA256"
	case AlgRSASHA512:
		return "RSASHA512"
	case AlgECDSAP256SHA256:
		return "ECDSAP256SHA256"
	case AlgECDSAP384SHA384:
		return "ECDSAP384SHA384"
	case AlgED25519:
		return "ED25519"
	default:
		return fmt.Sprintf("ALG%d", uint8(a))
	}
}

// DigestType identifies a DS digest algorithm (RFC 4034 appendix A.2).
type DigestType uint8

// DS digest type numbers
const (
	DigestSHA1   DigestType = 1
	DigestSHA256 DigestType = 2
	DigestSHA384 DigestType = 4
)

// DNSKEY flag bits
const (
	DNSKEYFlagZone uint16 = 0x0100 // ZONE - key may sign zone data
	DNSKEYFlagSEP  uint16 = 0x0001 // SEP - secure entry point (key-signing key)
)

// RRSIG holds the fields of an RRSIG record (RFC 4034 section 3).
// Expiration and Inception are 32-bit timestamps compared with
// serial-number arithmetic.
type RRSIG struct {
	TypeCovered RRType
	Algorithm   Algorithm
	Labels      uint8
	OriginalTTL uint32
	Expiration  uint32
	Inception   uint32
	KeyTag      uint16
	SignerName  string
	Signature   []byte
}

// DNSKEY holds the fields of a DNSKEY record (RFC 4034 section 2).
type DNSKEY struct {
	Flags     uint16
	Protocol  uint8
	Algorithm Algorithm
	PublicKey []byte
}

// IsZoneKey reports whether the ZONE flag bit is set.
func (k DNSKEY) IsZoneKey() bool { return k.Flags&DNSKEYFlagZone != 0 }

// IsSEP reports whether the SEP flag bit is set (conventionally a KSK).
func (k DNSKEY) IsSEP() bool { return k.Flags&DNSKEYFlagSEP != 0 }

// KeyTag computes the key tag over the DNSKEY RDATA per RFC 4034
// appendix B: a ones-complement-style 16-bit checksum with the carry
// folded back in once.
func (k DNSKEY) KeyTag() uint16 {
	rdata := make([]byte, 0, 4+len(k.PublicKey))
	rdata = append(rdata, byte(k.Flags>>8), byte(k.Flags))
	rdata = append(rdata, k.Protocol, byte(k.Algorithm))
	rdata = append(rdata, k.PublicKey...)

	var ac uint32
	for i, b := range rdata {
		if i&1 == 1 {
			ac += uint32(b)
		} else {
			ac += uint32(b) << 8
		}
	}
	ac += (ac >> 16) & 0xFFFF
	return uint16(ac & 0xFFFF)
}

// DS holds the fields of a DS record (RFC 4034 section 5), linking a
// child zone's DNSKEY to its parent's signed delegation.
type DS struct {
	KeyTag     uint16
	Algorithm  Algorithm
	DigestType DigestType
	Digest     []byte
}

// NSEC holds the fields of an NSEC record (RFC 4034 section 4).
type NSEC struct {
	NextName string
	Types    []RRType
}

// HasType reports whether the NSEC type bitmap includes t.
func (n NSEC) HasType(t RRType) bool {
	for _, have := range n.Types {
		if have == t {
			return true
		}
	}
	return false
}

// NSEC3 holds the fields of an NSEC3 record (RFC 5155 section 3).
type NSEC3 struct {
	HashAlgorithm uint8
	Flags         uint8
	Iterations    uint16
	Salt          []byte
	NextHashed    []byte
	Types         []RRType
}

// OptOut reports whether the opt-out flag is set, meaning the record may
// span unsigned delegations.
func (n NSEC3) OptOut() bool { return n.Flags&0x01 != 0 }

// HasType reports whether the NSEC3 type bitmap includes t.
func (n NSEC3) HasType(t RRType) bool {
	for _, have := range n.Types {
		if have == t {
			return true
		}
	}
	return false
}

// ValidationOutcome is the reportable result of DNSSEC validation. All
// four outcomes are results, not errors; only malformed input produces
// an error.
type ValidationOutcome uint8

// DNSSEC validation outcomes
const (
	OutcomeIndeterminate ValidationOutcome = iota // no trust anchor covers the name, or proof incomplete
	OutcomeValid                                  // a covering signature verified and its chain reached an anchor
	OutcomeBogus                                  // signatures present but none verified, or the chain broke
	OutcomeInsecure                               // zone provably unsigned via authenticated denial
)

// String returns the textual representation of the outcome.
func (o ValidationOutcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeBogus:
		return "bogus"
	case OutcomeInsecure:
		return "insecure"
	default:
		return "indeterminate"
	}
}
