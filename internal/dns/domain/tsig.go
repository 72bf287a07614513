package domain

// TSIG algorithm names (RFC 8945 section 6) in canonical form.
const (
	TSIGHMACMD5    = "hmac-md5.sig-alg.reg.int"
	TSIGHMACSHA1   = "hmac-sha1"
	TSIGHMACSHA256 = "hmac-sha256"
	TSIGHMACSHA512 = "hmac-sha512"
)

// TSIG holds the fields of a TSIG record (RFC 8945 section 4.2). The
// owner name of the record is the key name; it is carried on the
// enclosing ResourceRecord, not here.
type TSIG struct {
	AlgorithmName string
	TimeSigned    uint64 // 48-bit seconds since the Unix epoch
	Fudge         uint16 // permitted clock skew in seconds
	MAC           []byte
	OriginalID    uint16
	Error         RCode
	OtherData     []byte // holds the server clock on BADTIME
}

// TSIGKey is a shared secret used to sign and verify transactions.
// Secret bytes are read-only to this library; secure erasure after use
// is the caller's responsibility.
type TSIGKey struct {
	Name      string
	Algorithm string
	Secret    []byte
}
