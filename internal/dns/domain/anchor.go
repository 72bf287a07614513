package domain

import "fmt"

// TrustAnchor is an externally configured point of trust for a zone,
// supplied either as a DS digest or as a full DNSKEY. Exactly one of
// the two forms is set.
type TrustAnchor struct {
	Zone string
	DS   *DS
	Key  *DNSKEY
}

// Validate checks that the anchor names a zone and carries exactly one
// of the two trust forms.
func (a TrustAnchor) Validate() error {
	if a.Zone != "" {
		if err := ValidateName(a.Zone); err != nil {
			return fmt.Errorf("invalid anchor zone: %w", err)
		}
	}
	if (a.DS == nil) == (a.Key == nil) {
		return fmt.Errorf("trust anchor must carry exactly one of DS or DNSKEY")
	}
	return nil
}

// KeyTag returns the key tag the anchor pins.
func (a TrustAnchor) KeyTag() uint16 {
	if a.DS != nil {
		return a.DS.KeyTag
	}
	if a.Key != nil {
		return a.Key.KeyTag()
	}
	return 0
}
