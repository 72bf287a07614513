package domain

import "fmt"

// Header holds the fixed 12-byte DNS message header fields. Section
// counts are not stored; they are derived from the Message section
// slices on encode and checked against the declared counts on decode.
type Header struct {
	ID                 uint16
	OpCode             OpCode
	Response           bool
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	AuthenticData      bool
	CheckingDisabled   bool
	RCode              RCode
}

// Message represents a full DNS message: header, question section, and
// the answer, authority, and additional record sections.
type Message struct {
	Header     Header
	Questions  []Question
	Answers    []ResourceRecord
	Authority  []ResourceRecord
	Additional []ResourceRecord
}

// Validate checks the message sections for encodability: every question
// and record must itself be valid, and no section may exceed the 16-bit
// count field.
func (m Message) Validate() error {
	if len(m.Questions) > 65535 {
		return fmt.Errorf("too many questions: %d", len(m.Questions))
	}
	for i, q := range m.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	sections := []struct {
		name string
		rrs  []ResourceRecord
	}{
		{"answer", m.Answers},
		{"authority", m.Authority},
		{"additional", m.Additional},
	}
	for _, s := range sections {
		if len(s.rrs) > 65535 {
			return fmt.Errorf("too many %s records: %d", s.name, len(s.rrs))
		}
		for i, rr := range s.rrs {
			if err := rr.Validate(); err != nil {
				return fmt.Errorf("%s record %d: %w", s.name, i, err)
			}
		}
	}
	return nil
}

// Records returns all resource records of the message in section order.
func (m Message) Records() []ResourceRecord {
	out := make([]ResourceRecord, 0, len(m.Answers)+len(m.Authority)+len(m.Additional))
	out = append(out, m.Answers...)
	out = append(out, m.Authority...)
	out = append(out, m.Additional...)
	return out
}
