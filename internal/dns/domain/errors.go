package domain

import "errors"

// Sentinel errors shared across the codec and the signing engines.
// Callers match them with errors.Is.
var (
	// ErrMalformed marks structurally invalid wire bytes. Decoding
	// aborts; nothing partial is returned.
	ErrMalformed = errors.New("malformed DNS message")

	// ErrUnsupportedAlgorithm marks a recognized structure carrying an
	// algorithm number this library cannot process. It is not fatal to a
	// whole message: other signatures may still be tried.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// TSIG verification failures. Always surfaced, never silently ignored.
	ErrBadSignature = errors.New("tsig: bad signature")
	ErrBadKey       = errors.New("tsig: bad key")
	ErrBadTime      = errors.New("tsig: signature outside time window")
)
