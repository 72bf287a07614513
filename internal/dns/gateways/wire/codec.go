// Package wire encodes and decodes complete DNS messages in the RFC 1035
// wire format: header, question section, and the three resource record
// sections, with name compression on encode and pointer-safe
// decompression on decode.
package wire

import (
	"github.com/haukened/dnscore/internal/dns/common/log"
	"github.com/haukened/dnscore/internal/dns/domain"
)

// MessageCodec converts between domain.Message and the binary wire format.
type MessageCodec interface {
	// EncodeMessage serializes a full message. Records carrying raw Data
	// are written as-is; records with only presentation Text have their
	// RDATA built from it.
	EncodeMessage(msg domain.Message) ([]byte, error)

	// DecodeMessage parses a full message. Compression pointers inside
	// owner names and name-bearing RDATA are resolved, so every record
	// in the result is self-contained.
	DecodeMessage(data []byte) (domain.Message, error)

	// EncodeQuery builds a standard recursive query for a single question.
	EncodeQuery(id uint16, q domain.Question) ([]byte, error)

	// DecodeQuery parses a query message carrying exactly one question.
	DecodeQuery(data []byte) (uint16, domain.Question, error)
}

type messageCodec struct {
	logger log.Logger
}

// NewCodec returns a MessageCodec that logs through the provided logger.
func NewCodec(logger log.Logger) *messageCodec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &messageCodec{logger: logger}
}

// EncodeQuery builds a standard query message with RD set.
func (c *messageCodec) EncodeQuery(id uint16, q domain.Question) ([]byte, error) {
	return c.EncodeMessage(domain.Message{
		Header: domain.Header{
			ID:               id,
			OpCode:           domain.OpCodeQuery,
			RecursionDesired: true,
		},
		Questions: []domain.Question{q},
	})
}

// DecodeQuery parses a query and returns its ID and single question.
func (c *messageCodec) DecodeQuery(data []byte) (uint16, domain.Question, error) {
	msg, err := c.DecodeMessage(data)
	if err != nil {
		return 0, domain.Question{}, err
	}
	if msg.Header.Response {
		return 0, domain.Question{}, malformed("expected a query, got a response")
	}
	if len(msg.Questions) != 1 {
		return 0, domain.Question{}, malformed("expected exactly one question, got %d", len(msg.Questions))
	}
	return msg.Header.ID, msg.Questions[0], nil
}
