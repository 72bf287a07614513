package domain

import "fmt"

// RRType represents a DNS resource record type (e.g. A, AAAA, MX).
// See IANA DNS Parameters for assigned codes.
type RRType uint16

// DNS Resource Record Type constants
const (
	RRTypeA          RRType = 1   // A - IPv4 address
	RRTypeNS         RRType = 2   // NS - Name server
	RRTypeCNAME      RRType = 5   // CNAME - Canonical name
	RRTypeSOA        RRType = 6   // SOA - Start of authority
	RRTypePTR        RRType = 12  // PTR - Pointer
	RRTypeMX         RRType = 15  // MX - Mail exchange
	RRTypeTXT        RRType = 16  // TXT - Text
	RRTypeAAAA       RRType = 28  // AAAA - IPv6 address
	RRTypeSRV        RRType = 33  // SRV - Service
	RRTypeOPT        RRType = 41  // OPT - EDNS option
	RRTypeDS         RRType = 43  // DS - Delegation signer
	RRTypeRRSIG      RRType = 46  // RRSIG - Resource record signature
	RRTypeNSEC       RRType = 47  // NSEC - Next secure
	RRTypeDNSKEY     RRType = 48  // DNSKEY - DNS key
	RRTypeNSEC3      RRType = 50  // NSEC3 - Hashed next secure
	RRTypeNSEC3PARAM RRType = 51  // NSEC3PARAM - NSEC3 parameters
	RRTypeTLSA       RRType = 52  // TLSA - TLS association
	RRTypeTSIG       RRType = 250 // TSIG - Transaction signature
	RRTypeANY        RRType = 255 // ANY - Any type (query only)
	RRTypeCAA        RRType = 257 // CAA - Certificate authority authorization
)

// IsKnown returns true if the RRType has dedicated handling in this
// library. Unknown types still round-trip through the codec as opaque
// RDATA, so this is informational, not a validity check.
func (t RRType) IsKnown() bool {
	switch t {
	case RRTypeA, RRTypeNS, RRTypeCNAME, RRTypeSOA, RRTypePTR, RRTypeMX, RRTypeTXT,
		RRTypeAAAA, RRTypeSRV, RRTypeOPT, RRTypeDS, RRTypeRRSIG, RRTypeNSEC,
		RRTypeDNSKEY, RRTypeNSEC3, RRTypeNSEC3PARAM, RRTypeTLSA, RRTypeTSIG,
		RRTypeANY, RRTypeCAA:
		return true
	default:
		return false
	}
}

// String returns the textual representation of the RRType.
// For unknown types, it returns the RFC 3597 "TYPE<value>" form.
func (t RRType) String() string {
	switch t {
	case RRTypeA:
		return "A"
	case RRTypeNS:
		return "NS"
	case RRTypeCNAME:
		return "CNAME"
	case RRTypeSOA:
		return "SOA"
	case RRTypePTR:
		return "PTR"
	case RRTypeMX:
		return "MX"
	case RRTypeTXT:
		return "TXT"
	case RRTypeAAAA:
		return "AAAA"
	case RRTypeSRV:
		return "SRV"
	case RRTypeOPT:
		return "OPT"
	case RRTypeDS:
		return "DS"
	case RRTypeRRSIG:
		return "RRSIG"
	case RRTypeNSEC:
		return "NSEC"
	case RRTypeDNSKEY:
		return "DNSKEY"
	case RRTypeNSEC3:
		return "NSEC3"
	case RRTypeNSEC3PARAM:
		return "NSEC3PARAM"
	case RRTypeTLSA:
		return "TLSA"
	case RRTypeTSIG:
		return "TSIG"
	case RRTypeANY:
		return "ANY"
	case RRTypeCAA:
		return "CAA"
	default:
		return fmt.Sprintf("TYPE%d", uint16(t))
	}
}

// RRTypeFromString converts a record type string to its corresponding RRType value.
func RRTypeFromString(s string) RRType {
	switch s {
	case "A":
		return RRTypeA
	case "NS":
		return RRTypeNS
	case "CNAME":
		return RRTypeCNAME
	case "SOA":
		return RRTypeSOA
	case "PTR":
		return RRTypePTR
	case "MX":
		return RRTypeMX
	case "TXT":
		return RRTypeTXT
	case "AAAA":
		return RRTypeAAAA
	case "SRV":
		return RRTypeSRV
	case "OPT":
		return RRTypeOPT
	case "DS":
		return RRTypeDS
	case "RRSIG":
		return RRTypeRRSIG
	case "NSEC":
		return RRTypeNSEC
	case "DNSKEY":
		return RRTypeDNSKEY
	case "NSEC3":
		return RRTypeNSEC3
	case "NSEC3PARAM":
		return RRTypeNSEC3PARAM
	case "TLSA":
		return RRTypeTLSA
	case "TSIG":
		return RRTypeTSIG
	case "ANY":
		return RRTypeANY
	case "CAA":
		return RRTypeCAA
	default:
		return 0 // invalid/unknown
	}
}
