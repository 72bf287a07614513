package domain

import "fmt"

// RCode represents a DNS response code indicating the result of a query.
// Values above 15 are extended codes carried in OPT or TSIG records.
type RCode uint16

// DNS response code constants
const (
	RCodeNoError  RCode = 0  // NOERROR - No error
	RCodeFormErr  RCode = 1  // FORMERR - Format error
	RCodeServFail RCode = 2  // SERVFAIL - Server failure
	RCodeNXDomain RCode = 3  // NXDOMAIN - Non-existent domain
	RCodeNotImp   RCode = 4  // NOTIMP - Not implemented
	RCodeRefused  RCode = 5  // REFUSED - Query refused
	RCodeYXDomain RCode = 6  // YXDOMAIN - Name exists when it should not
	RCodeYXRRSet  RCode = 7  // YXRRSET - RRset exists when it should not
	RCodeNXRRSet  RCode = 8  // NXRRSET - RRset that should exist does not
	RCodeNotAuth  RCode = 9  // NOTAUTH - Not authorized
	RCodeNotZone  RCode = 10 // NOTZONE - Name not in zone
	RCodeBadSig   RCode = 16 // BADSIG - TSIG signature failure
	RCodeBadKey   RCode = 17 // BADKEY - TSIG key not recognized
	RCodeBadTime  RCode = 18 // BADTIME - TSIG signature out of time window
)

// IsValid returns true if the RCode is within the supported response code range.
func (r RCode) IsValid() bool {
	return r <= RCodeNotZone || (r >= RCodeBadSig && r <= RCodeBadTime)
}

// String returns the textual representation of the RCode.
func (r RCode) String() string {
	switch r {
	case RCodeNoError:
		return "NOERROR"
	case RCodeFormErr:
		return "FORMERR"
	case RCodeServFail:
		return "SERVFAIL"
	case RCodeNXDomain:
		return "NXDOMAIN"
	case RCodeNotImp:
		return "NOTIMP"
	case RCodeRefused:
		return "REFUSED"
	case RCodeYXDomain:
		return "YXDOMAIN"
	case RCodeYXRRSet:
		return "YXRRSET"
	case RCodeNXRRSet:
		return "NXRRSET"
	case RCodeNotAuth:
		return "NOTAUTH"
	case RCodeNotZone:
		return "NOTZONE"
	case RCodeBadSig:
		return "BADSIG"
	case RCodeBadKey:
		return "BADKEY"
	case RCodeBadTime:
		return "BADTIME"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint16(r))
	}
}

// ParseRCode converts a string name to an RCode value.
func ParseRCode(s string) RCode {
	switch s {
	case "NOERROR":
		return RCodeNoError
	case "FORMERR":
		return RCodeFormErr
	case "SERVFAIL":
		return RCodeServFail
	case "NXDOMAIN":
		return RCodeNXDomain
	case "NOTIMP":
		return RCodeNotImp
	case "REFUSED":
		return RCodeRefused
	case "YXDOMAIN":
		return RCodeYXDomain
	case "YXRRSET":
		return RCodeYXRRSet
	case "NXRRSET":
		return RCodeNXRRSet
	case "NOTAUTH":
		return RCodeNotAuth
	case "NOTZONE":
		return RCodeNotZone
	case "BADSIG":
		return RCodeBadSig
	case "BADKEY":
		return RCodeBadKey
	case "BADTIME":
		return RCodeBadTime
	default:
		return RCodeNoError
	}
}
