package keystore

import (
	"fmt"

	"github.com/haukened/dnscore/internal/dns/common/rrdata"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// Anchor value layout: one form byte followed by the record's RDATA
// wire form.
const (
	formDS     = 1
	formDNSKEY = 2
)

func encodeAnchor(a domain.TrustAnchor) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if a.DS != nil {
		return rrdata.AppendDS([]byte{formDS}, *a.DS), nil
	}
	return rrdata.AppendDNSKEY([]byte{formDNSKEY}, *a.Key), nil
}

func decodeAnchor(zone string, b []byte) (domain.TrustAnchor, error) {
	if len(b) < 1 {
		return domain.TrustAnchor{}, fmt.Errorf("empty anchor value for zone %q", zone)
	}
	a := domain.TrustAnchor{Zone: zone}
	switch b[0] {
	case formDS:
		ds, err := rrdata.ParseDS(b[1:])
		if err != nil {
			return domain.TrustAnchor{}, fmt.Errorf("anchor for zone %q: %w", zone, err)
		}
		a.DS = &ds
	case formDNSKEY:
		key, err := rrdata.ParseDNSKEY(b[1:])
		if err != nil {
			return domain.TrustAnchor{}, fmt.Errorf("anchor for zone %q: %w", zone, err)
		}
		a.Key = &key
	default:
		return domain.TrustAnchor{}, fmt.Errorf("unknown anchor form %d for zone %q", b[0], zone)
	}
	return a, nil
}

// TSIG value layout: one algorithm-name length byte, the name, then the
// secret bytes.
func encodeTSIGKey(key domain.TSIGKey) ([]byte, error) {
	alg := domain.CanonicalName(key.Algorithm)
	if alg == "" || len(alg) > 255 {
		return nil, fmt.Errorf("invalid TSIG algorithm name %q", key.Algorithm)
	}
	if len(key.Secret) == 0 {
		return nil, fmt.Errorf("TSIG key %q has no secret", key.Name)
	}
	out := make([]byte, 0, 1+len(alg)+len(key.Secret))
	out = append(out, byte(len(alg)))
	out = append(out, alg...)
	return append(out, key.Secret...), nil
}

func decodeTSIGKey(name string, b []byte) (domain.TSIGKey, error) {
	if len(b) < 2 || int(b[0])+1 > len(b) {
		return domain.TSIGKey{}, fmt.Errorf("corrupt TSIG value for key %q", name)
	}
	algLen := int(b[0])
	return domain.TSIGKey{
		Name:      name,
		Algorithm: string(b[1 : 1+algLen]),
		Secret:    append([]byte(nil), b[1+algLen:]...),
	}, nil
}
