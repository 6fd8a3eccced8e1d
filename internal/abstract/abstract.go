// Package abstract turns free-text clinical notes into structured records by
// delegating to a hosted completion model over the OpenRouter API.
package abstract

import (
	"context"
	"errors"
	"fmt"

	"github.com/zkjiang/autoabstract/internal/record"
	"github.com/zkjiang/autoabstract/internal/schema"
)

// Extractor is the primary interface for note abstraction. fields selects the
// schema: nil or empty uses the built-in Injury Surveillance schema, anything
// else generates a custom schema from the field list.
type Extractor interface {
	Extract(ctx context.Context, note string, fields []schema.Field) (*record.Record, error)
}

// ErrEmptyResponse is returned when the service responded successfully but
// carried no usable completion text.
var ErrEmptyResponse = errors.New("empty or invalid response from model")

// StatusError is a non-success HTTP status from the completion service. The
// raw body is kept for diagnostics; the call is not retried.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("OpenRouter API error: %d - %s", e.Code, e.Body)
}

// ParseError is completion text that did not parse as JSON after
// fence-stripping. It propagates the decoder's diagnostic.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model output is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
