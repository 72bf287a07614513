package rrdata

// encodePTRData encodes a PTR record string into its binary representation.
func encodePTRData(data string) ([]byte, error) {
	// data = "host.example.com"
	return encodeDomainName(data)
}

// decodePTRData decodes a PTR record's RDATA into the pointed-to name.
func decodePTRData(b []byte) (string, error) {
	name, _, err := decodeDomainName(b)
	return name, err
}
