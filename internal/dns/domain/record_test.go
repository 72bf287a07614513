package domain

import (
	"testing"
)

func TestNewResourceRecord(t *testing.T) {
	tests := []struct {
		name         string
		recordName   string
		rrtype       RRType
		class        RRClass
		ttl          uint32
		data         []byte
		expectError  bool
		expectedName string
	}{
		{
			name:         "valid A record",
			recordName:   "example.com.",
			rrtype:       RRTypeA,
			class:        RRClassIN,
			ttl:          300,
			data:         []byte{192, 0, 2, 1},
			expectError:  false,
			expectedName: "example.com",
		},
		{
			name:         "name gets canonicalized",
			recordName:   "EXAMPLE.COM",
			rrtype:       RRTypeA,
			class:        RRClassIN,
			ttl:          300,
			data:         []byte{192, 0, 2, 1},
			expectError:  false,
			expectedName: "example.com",
		},
		{
			name:         "unknown type is accepted as opaque",
			recordName:   "example.com",
			rrtype:       RRType(4095),
			class:        RRClassIN,
			ttl:          60,
			data:         []byte{0xDE, 0xAD},
			expectError:  false,
			expectedName: "example.com",
		},
		{
			name:         "root owner name",
			recordName:   ".",
			rrtype:       RRTypeDNSKEY,
			class:        RRClassIN,
			ttl:          300,
			data:         []byte{0x01, 0x01, 3, 8, 0xAB},
			expectError:  false,
			expectedName: "",
		},
		{
			name:        "zero type",
			recordName:  "example.com",
			rrtype:      0,
			class:       RRClassIN,
			ttl:         300,
			data:        []byte{192, 0, 2, 1},
			expectError: true,
		},
		{
			name:        "zero class",
			recordName:  "example.com",
			rrtype:      RRTypeA,
			class:       0,
			ttl:         300,
			data:        []byte{192, 0, 2, 1},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, err := NewResourceRecord(tt.recordName, tt.rrtype, tt.class, tt.ttl, tt.data, "")
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error, got record %+v", rr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rr.Name != tt.expectedName {
				t.Errorf("Name = %q, want %q", rr.Name, tt.expectedName)
			}
			if rr.TTL != tt.ttl {
				t.Errorf("TTL = %d, want %d", rr.TTL, tt.ttl)
			}
		})
	}
}

func TestResourceRecordKey(t *testing.T) {
	a, _ := NewResourceRecord("Example.com.", RRTypeA, RRClassIN, 300, []byte{192, 0, 2, 1}, "")
	b, _ := NewResourceRecord("example.COM", RRTypeA, RRClassIN, 600, []byte{192, 0, 2, 2}, "")
	c, _ := NewResourceRecord("example.com", RRTypeNS, RRClassIN, 300, []byte{2, 'n', 's', 0}, "")

	if a.Key() != b.Key() {
		t.Errorf("records differing only in TTL/data should share a key: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() == c.Key() {
		t.Errorf("records of different type should not share a key: %q", a.Key())
	}
}
