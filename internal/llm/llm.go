package llm

import (
	"context"
	"errors"
)

// Client sends one instruction/input pair to a completion provider and
// returns the generated text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single two-message completion: a fixed instruction block and
// the user material it applies to.
type Request struct {
	System      string
	User        string
	Temperature *float32
}

// Named is implemented by clients that can report the model they call.
type Named interface {
	Model() string
}

var (
	// ErrEmptyCompletion is returned when the provider answers with no text.
	ErrEmptyCompletion = errors.New("completion returned empty content")
	// ErrMissingAPIKey is returned when a provider is constructed without a key.
	ErrMissingAPIKey = errors.New("api key is required")
)

// Temperature returns a pointer suitable for Request.Temperature.
func Temperature(v float32) *float32 {
	return &v
}

// ModelOf returns the client's model name, or "" if it does not expose one.
func ModelOf(c Client) string {
	if n, ok := c.(Named); ok {
		return n.Model()
	}
	return ""
}
