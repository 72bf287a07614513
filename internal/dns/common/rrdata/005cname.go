package rrdata

// encodeCNAMEData encodes a CNAME record string into its binary representation.
func encodeCNAMEData(data string) ([]byte, error) {
	// data = "cname.example.com"
	return encodeDomainName(data)
}

// decodeCNAMEData decodes a CNAME record's RDATA into the target name.
func decodeCNAMEData(b []byte) (string, error) {
	name, _, err := decodeDomainName(b)
	return name, err
}
