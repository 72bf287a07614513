// Package tsig signs and verifies DNS transactions with shared-secret
// HMACs per RFC 8945. The engine works on finished wire messages: Sign
// appends the TSIG record to an encoded message, Verify strips and
// checks it.
package tsig

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"time"

	"github.com/haukened/dnscore/internal/dns/common/clock"
	"github.com/haukened/dnscore/internal/dns/common/log"
	"github.com/haukened/dnscore/internal/dns/domain"
	"github.com/haukened/dnscore/internal/dns/gateways/wire"
)

// DefaultFudge is the permitted clock skew written into signed
// records when the engine is not configured otherwise (RFC 8945
// section 10 recommends 300 seconds).
const DefaultFudge = 300 * time.Second

// Keyring resolves TSIG key names to shared secrets.
type Keyring interface {
	// TSIGKey returns the key for a canonical key name. The second
	// return is false when the name is unknown.
	TSIGKey(name string) (domain.TSIGKey, bool)
}

// Engine signs and verifies messages against a clock.
type Engine struct {
	clock  clock.Clock
	logger log.Logger
	fudge  uint16
}

// Options tunes the engine. Zero values select the defaults.
type Options struct {
	// Fudge is the clock-skew allowance stamped into signed records.
	Fudge time.Duration
}

// NewEngine wires an Engine. clk and logger may be nil.
func NewEngine(clk clock.Clock, logger log.Logger, opts Options) *Engine {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if opts.Fudge <= 0 {
		opts.Fudge = DefaultFudge
	}
	return &Engine{
		clock:  clk,
		logger: logger,
		fudge:  uint16(opts.Fudge / time.Second),
	}
}

func (e *Engine) now48() uint64 {
	return uint64(e.clock.Now().Unix()) & 0xFFFFFFFFFFFF
}

// Sign appends a TSIG record to a finished wire message. The MAC
// covers the whole message followed by the TSIG variables.
func (e *Engine) Sign(data []byte, key domain.TSIGKey) ([]byte, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: message shorter than header", domain.ErrMalformed)
	}
	ts := domain.TSIG{
		AlgorithmName: domain.CanonicalName(key.Algorithm),
		TimeSigned:    e.now48(),
		Fudge:         e.fudge,
		OriginalID:    binary.BigEndian.Uint16(data[0:2]),
	}
	return e.signWith(data, key, ts)
}

// SignBadTime signs a BADTIME error response. Per RFC 8945 section
// 5.2.3 the record echoes the client's signing time and carries the
// server's clock in the other-data field.
func (e *Engine) SignBadTime(data []byte, key domain.TSIGKey, clientTime uint64) ([]byte, error) {
	if len(data) < 12 {
		return nil, fmt.Errorf("%w: message shorter than header", domain.ErrMalformed)
	}
	other := make([]byte, 6)
	put48(other, e.now48())
	ts := domain.TSIG{
		AlgorithmName: domain.CanonicalName(key.Algorithm),
		TimeSigned:    clientTime,
		Fudge:         e.fudge,
		OriginalID:    binary.BigEndian.Uint16(data[0:2]),
		Error:         domain.RCodeBadTime,
		OtherData:     other,
	}
	return e.signWith(data, key, ts)
}

func (e *Engine) signWith(data []byte, key domain.TSIGKey, ts domain.TSIG) ([]byte, error) {
	mac, err := computeMAC(key, data, ts)
	if err != nil {
		return nil, err
	}
	ts.MAC = mac
	signed, err := wire.AppendTSIGRR(data, key.Name, ts)
	if err != nil {
		return nil, err
	}
	e.logger.Debug(map[string]any{
		"key":       key.Name,
		"algorithm": ts.AlgorithmName,
	}, "Signed message")
	return signed, nil
}

// Verify strips and checks the TSIG record of a signed message,
// returning the canonical key name that signed it. Checks run in the
// RFC 8945 section 5.2 order: key, then MAC, then time. A message
// without a TSIG record yields wire.ErrNoTSIG.
func (e *Engine) Verify(data []byte, keyring Keyring) (string, error) {
	unsigned, keyName, ts, err := wire.StripTSIG(data)
	if err != nil {
		return "", err
	}
	key, ok := keyring.TSIGKey(keyName)
	if !ok || !domain.NamesEqual(key.Algorithm, ts.AlgorithmName) {
		return keyName, fmt.Errorf("%w: %s (%s)", domain.ErrBadKey, keyName, ts.AlgorithmName)
	}

	// The MAC was computed before the TSIG record existed, over the
	// message as it carried the original ID.
	binary.BigEndian.PutUint16(unsigned[0:2], ts.OriginalID)
	want, err := computeMAC(key, unsigned, ts)
	if err != nil {
		return keyName, err
	}
	if !hmac.Equal(want, ts.MAC) {
		return keyName, fmt.Errorf("%w: key %s", domain.ErrBadSignature, keyName)
	}

	now := int64(e.now48())
	if diff := now - int64(ts.TimeSigned); diff > int64(ts.Fudge) || -diff > int64(ts.Fudge) {
		return keyName, fmt.Errorf("%w: signed %ds from now, fudge %ds",
			domain.ErrBadTime, now-int64(ts.TimeSigned), ts.Fudge)
	}
	e.logger.Debug(map[string]any{"key": keyName}, "Verified message")
	return keyName, nil
}

// computeMAC digests the message followed by the TSIG variables of
// RFC 8945 section 4.3.3: owner, class, TTL, algorithm, time, fudge,
// error, and other data. The MAC and original ID fields are excluded;
// the ID is covered through the message header.
func computeMAC(key domain.TSIGKey, message []byte, ts domain.TSIG) ([]byte, error) {
	h, err := newHMAC(key.Algorithm, key.Secret)
	if err != nil {
		return nil, err
	}
	h.Write(message)
	h.Write(wireName(key.Name))
	var fixed [8]byte
	binary.BigEndian.PutUint16(fixed[0:2], uint16(domain.RRClassANY))
	binary.BigEndian.PutUint32(fixed[2:6], 0)
	h.Write(fixed[0:6])
	h.Write(wireName(ts.AlgorithmName))
	var times [8]byte
	put48(times[0:6], ts.TimeSigned)
	binary.BigEndian.PutUint16(times[6:8], ts.Fudge)
	h.Write(times[:])
	binary.BigEndian.PutUint16(fixed[0:2], uint16(ts.Error))
	binary.BigEndian.PutUint16(fixed[2:4], uint16(len(ts.OtherData)))
	h.Write(fixed[0:4])
	h.Write(ts.OtherData)
	return h.Sum(nil), nil
}

// newHMAC maps a TSIG algorithm name to its keyed hash. Unknown
// algorithms are a key error per RFC 8945 section 5.2.1.
func newHMAC(algorithm string, secret []byte) (hash.Hash, error) {
	var fn func() hash.Hash
	switch domain.CanonicalName(algorithm) {
	case domain.TSIGHMACMD5:
		fn = md5.New
	case domain.TSIGHMACSHA1:
		fn = sha1.New
	case domain.TSIGHMACSHA256:
		fn = sha256.New
	case domain.TSIGHMACSHA512:
		fn = sha512.New
	default:
		return nil, fmt.Errorf("%w: algorithm %q", domain.ErrBadKey, algorithm)
	}
	return hmac.New(fn, secret), nil
}

// wireName writes a canonical name as uncompressed length-prefixed
// labels, the form the TSIG variables require.
func wireName(name string) []byte {
	name = domain.CanonicalName(name)
	if name == "" {
		return []byte{0}
	}
	out := make([]byte, 0, len(name)+2)
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			out = append(out, byte(i-start))
			out = append(out, name[start:i]...)
			start = i + 1
		}
	}
	return append(out, 0)
}

func put48(dst []byte, v uint64) {
	dst[0] = byte(v >> 40)
	dst[1] = byte(v >> 32)
	dst[2] = byte(v >> 24)
	dst[3] = byte(v >> 16)
	dst[4] = byte(v >> 8)
	dst[5] = byte(v)
}
