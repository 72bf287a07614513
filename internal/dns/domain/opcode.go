package domain

import "fmt"

// OpCode represents a DNS message operation code.
type OpCode uint8

// DNS operation code constants
const (
	OpCodeQuery  OpCode = 0 // QUERY - Standard query
	OpCodeIQuery OpCode = 1 // IQUERY - Inverse query (obsolete)
	OpCodeStatus OpCode = 2 // STATUS - Server status request
	OpCodeNotify OpCode = 4 // NOTIFY - Zone change notification
	OpCodeUpdate OpCode = 5 // UPDATE - Dynamic update
)

// IsValid returns true if the OpCode is one of the assigned operation codes.
func (o OpCode) IsValid() bool {
	switch o {
	case OpCodeQuery, OpCodeIQuery, OpCodeStatus, OpCodeNotify, OpCodeUpdate:
		return true
	default:
		return false
	}
}

// String returns the textual representation of the OpCode.
func (o OpCode) String() string {
	switch o {
	case OpCodeQuery:
		return "QUERY"
	case OpCodeIQuery:
		return "IQUERY"
	case OpCodeStatus:
		return "STATUS"
	case OpCodeNotify:
		return "NOTIFY"
	case OpCodeUpdate:
		return "UPDATE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(o))
	}
}
