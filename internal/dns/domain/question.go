package domain

import "fmt"

// Question represents a single entry in the question section of a DNS message.
type Question struct {
	Name  string
	Type  RRType
	Class RRClass
}

// NewQuestion constructs a Question and validates its fields.
// The name is stored in canonical form.
func NewQuestion(name string, rrtype RRType, class RRClass) (Question, error) {
	q := Question{
		Name:  CanonicalName(name),
		Type:  rrtype,
		Class: class,
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks whether the Question fields are structurally valid.
func (q Question) Validate() error {
	// The empty canonical name queries the root.
	if q.Name != "" {
		if err := ValidateName(q.Name); err != nil {
			return fmt.Errorf("invalid question name: %w", err)
		}
	}
	if q.Type == 0 {
		return fmt.Errorf("question type must not be zero")
	}
	if q.Class == 0 {
		return fmt.Errorf("question class must not be zero")
	}
	return nil
}
