// Package rrdata converts record RDATA between its wire form and a
// human-readable presentation form, with a per-type registry and an
// opaque RFC 3597 fallback for types without dedicated handling.
package rrdata

import (
	"fmt"
	"net"
	"strings"

	"github.com/haukened/dnscore/internal/dns/domain"
)

// codec pairs the type-specific RDATA conversion functions.
type codec struct {
	encode func(string) ([]byte, error) // presentation -> wire
	decode func([]byte) (string, error) // wire -> presentation
}

// registry maps record types with dedicated handling to their codec.
// Types absent here round-trip losslessly through the opaque form.
var registry = map[domain.RRType]codec{
	domain.RRTypeA:      {encodeAData, decodeAData},
	domain.RRTypeNS:     {encodeNSData, decodeNSData},
	domain.RRTypeCNAME:  {encodeCNAMEData, decodeCNAMEData},
	domain.RRTypeSOA:    {encodeSOAData, decodeSOAData},
	domain.RRTypePTR:    {encodePTRData, decodePTRData},
	domain.RRTypeMX:     {encodeMXData, decodeMXData},
	domain.RRTypeTXT:    {encodeTXTData, decodeTXTData},
	domain.RRTypeAAAA:   {encodeAAAAData, decodeAAAAData},
	domain.RRTypeSRV:    {encodeSRVData, decodeSRVData},
	domain.RRTypeDS:     {encodeDSData, decodeDSData},
	domain.RRTypeRRSIG:  {encodeRRSIGData, decodeRRSIGData},
	domain.RRTypeNSEC:   {encodeNSECData, decodeNSECData},
	domain.RRTypeDNSKEY: {encodeDNSKEYData, decodeDNSKEYData},
	domain.RRTypeNSEC3:  {encodeNSEC3Data, decodeNSEC3Data},
	domain.RRTypeTSIG:   {encodeTSIGData, decodeTSIGData},
	domain.RRTypeCAA:    {encodeCAAData, decodeCAAData},
}

// encodeDomainName encodes a domain name into wire format
// (length-prefixed labels ending in the root label). Used by the many
// record types that embed names in their RDATA.
func encodeDomainName(name string) ([]byte, error) {
	if err := validateOrRoot(name); err != nil {
		return nil, err
	}
	var encoded []byte
	for _, label := range domain.NameLabels(name) {
		encoded = append(encoded, byte(len(label)))
		encoded = append(encoded, label...)
	}
	encoded = append(encoded, 0) // root label
	return encoded, nil
}

// validateOrRoot accepts the root name (empty or ".") that
// domain.ValidateName rejects, since RDATA fields may carry it.
func validateOrRoot(name string) error {
	if name == "" || name == "." {
		return nil
	}
	return domain.ValidateName(name)
}

// decodeDomainName decodes an uncompressed wire-format name, returning
// the name and the number of bytes consumed. Compression pointers are
// not valid here; the wire codec resolves them before RDATA reaches
// this package.
func decodeDomainName(b []byte) (string, int, error) {
	var labels []string
	i := 0
	for {
		if i >= len(b) {
			return "", 0, fmt.Errorf("truncated domain name")
		}
		labelLen := int(b[i])
		i++
		if labelLen == 0 {
			break
		}
		if labelLen > domain.MaxLabelLength {
			return "", 0, fmt.Errorf("label length %d exceeds %d", labelLen, domain.MaxLabelLength)
		}
		if i+labelLen > len(b) {
			return "", 0, fmt.Errorf("truncated label")
		}
		labels = append(labels, string(b[i:i+labelLen]))
		i += labelLen
	}
	if i > domain.MaxNameLength {
		return "", 0, fmt.Errorf("encoded name exceeds %d octets", domain.MaxNameLength)
	}
	return strings.Join(labels, "."), i, nil
}

// presentationName renders a name for presentation text, using "." for
// the root so the field is never empty.
func presentationName(name string) string {
	if name == "" {
		return "."
	}
	return name
}

// isIPv4 checks whether the provided net.IP address is an IPv4 address.
func isIPv4(ip net.IP) bool {
	return ip != nil && ip.To4() != nil
}

// isIPv6 checks whether the provided net.IP is a valid IPv6 address.
// It returns true if the IP is not nil, has a valid 16-byte representation,
// and does not have a valid 4-byte IPv4 representation.
func isIPv6(ip net.IP) bool {
	return ip != nil && ip.To16() != nil && ip.To4() == nil
}
