package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts structured letter generation providers.
type Client interface {
	GenerateLetter(ctx context.Context, input GenerateInput) (json.RawMessage, error)
}

// GenerateInput captures one structured-generation request.
type GenerateInput struct {
	JobText    string
	CVText     string
	Language   string
	Tone       string
	Length     string
	TargetRole string

	// MaxOutputTokens bounds the response size. The caller owns the retry
	// policy for budget overruns.
	MaxOutputTokens int

	// SchemaName and Schema define the required response shape.
	SchemaName string
	Schema     json.RawMessage
}

// ErrTruncated signals a response cut off by MaxOutputTokens before the
// structured output completed.
var ErrTruncated = errors.New("generation truncated by token budget")

// ErrTimeout signals a generation aborted by the configured deadline.
var ErrTimeout = errors.New("generation request timeout")
