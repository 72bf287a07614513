package domain

import (
	"fmt"
	"strings"
)

// DNS name size limits from RFC 1035 section 2.3.4.
const (
	MaxLabelLength = 63
	// MaxNameLength is the maximum length of a name in wire form,
	// including label length octets and the root label.
	MaxNameLength = 255
)

// ValidateName checks that a domain name fits the wire-format bounds:
// every label is 1-63 octets and the encoded form (length octets plus
// the terminating root label) is at most 255 octets.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	wireLen := 1 // root label
	for _, label := range NameLabels(name) {
		if label == "" {
			return fmt.Errorf("empty label in name: %s", name)
		}
		if len(label) > MaxLabelLength {
			return fmt.Errorf("label exceeds %d octets: %s", MaxLabelLength, label)
		}
		wireLen += 1 + len(label)
	}
	if wireLen > MaxNameLength {
		return fmt.Errorf("encoded name exceeds %d octets: %s", MaxNameLength, name)
	}
	return nil
}

// NameLabels splits a domain name into its labels. The root name
// (empty string or ".") has no labels.
func NameLabels(name string) []string {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return nil
	}
	return strings.Split(name, ".")
}

// NamesEqual reports whether two domain names match, ignoring ASCII case
// and any trailing dot.
func NamesEqual(a, b string) bool {
	return CanonicalName(a) == CanonicalName(b)
}

// ParentName returns the name with its leftmost label removed. The parent
// of a single-label name is the root, represented as the empty string.
func ParentName(name string) string {
	labels := NameLabels(name)
	if len(labels) <= 1 {
		return ""
	}
	return strings.Join(labels[1:], ".")
}

// IsSubdomain reports whether child is equal to, or beneath, parent.
// The root (empty string) is a parent of every name.
func IsSubdomain(parent, child string) bool {
	parent = CanonicalName(parent)
	child = CanonicalName(child)
	if parent == "" || parent == child {
		return true
	}
	return strings.HasSuffix(child, "."+parent)
}

// CanonicalName returns a DNS name in the form used for matching and
// map keys: lowercased, trimmed of surrounding whitespace, no trailing dot.
func CanonicalName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	for strings.HasSuffix(name, ".") {
		name = strings.TrimSuffix(name, ".")
	}
	return name
}
