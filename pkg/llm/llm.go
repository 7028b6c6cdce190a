// Package llm provides completion clients for the language models used by the
// query router. The router only needs single-shot text completion; structure
// is recovered from raw text downstream.
package llm

import (
	"context"
	"errors"
)

// Client is the interface for a text-completion oracle.
type Client interface {
	// Complete sends a prompt and returns the raw response text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrConnectivity marks connection-level failures reaching the completion
// service. These are the only failures worth retrying; everything else is a
// semantic failure that a retry of the same prompt will reproduce.
var ErrConnectivity = errors.New("completion service unreachable")

// IsConnectivity reports whether err is a connectivity-class failure.
func IsConnectivity(err error) bool {
	return errors.Is(err, ErrConnectivity)
}
