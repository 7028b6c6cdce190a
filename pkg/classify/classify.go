// Package classify implements single-label classification on top of an
// unreliable completion service. Connectivity failures are retried with
// exponential backoff; semantic failures (empty or out-of-domain output) fail
// fast, since replaying the same prompt against the same model reproduces the
// same bad output.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/watchtowerhq/watchtower/pkg/llm"
)

var (
	// ErrEmptyResponse indicates the completion service returned an empty
	// string. Not retried: an empty completion is a deterministic
	// service-side problem, not network flakiness.
	ErrEmptyResponse = errors.New("empty classification response")

	// ErrInvalidLabel indicates the response did not resolve to any allowed
	// label after normalization and extraction. Not retried.
	ErrInvalidLabel = errors.New("invalid classification label")
)

const (
	maxRetries       = 3
	defaultRetryUnit = time.Second
)

// Classifier performs resilient single-label classification.
type Classifier struct {
	llm       llm.Client
	log       *slog.Logger
	retryUnit time.Duration
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRetryUnit overrides the base backoff delay. Tests use a short unit.
func WithRetryUnit(d time.Duration) Option {
	return func(c *Classifier) { c.retryUnit = d }
}

// New creates a Classifier around the given completion client.
func New(client llm.Client, log *slog.Logger, opts ...Option) *Classifier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Classifier{
		llm:       client,
		log:       log,
		retryUnit: defaultRetryUnit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify sends the prompt to the completion service and resolves the
// response to exactly one of the allowed labels. Labels are matched after
// trimming and uppercasing; when the response is longer than the longest
// allowed label, the first label contained in it (in enumeration order) wins.
func (c *Classifier) Classify(ctx context.Context, prompt string, labels []string) (string, error) {
	var result string

	bo := backoff.WithContext(backoff.WithMaxRetries(&backoff.ExponentialBackOff{
		InitialInterval:     c.retryUnit,
		Multiplier:          2,
		RandomizationFactor: 0,
		MaxInterval:         c.retryUnit * 8,
		Clock:               backoff.SystemClock,
		Stop:                backoff.Stop,
	}, maxRetries), ctx)

	attempt := 0
	op := func() error {
		attempt++
		raw, err := c.llm.Complete(ctx, prompt)
		if err != nil {
			if llm.IsConnectivity(err) {
				c.log.Warn("classification attempt failed, retrying", "attempt", attempt, "error", err)
				return err
			}
			return backoff.Permanent(err)
		}

		label, err := resolveLabel(raw, labels)
		if err != nil {
			return backoff.Permanent(err)
		}
		result = label
		return nil
	}

	if err := backoff.Retry(op, bo); err != nil {
		if llm.IsConnectivity(err) {
			c.log.Error("classification failed after retries", "attempts", attempt, "error", err)
			return "", fmt.Errorf("classification failed after %d attempts: %w", attempt, err)
		}
		return "", err
	}

	c.log.Debug("classification resolved", "label", result, "attempts", attempt)
	return result, nil
}

// resolveLabel normalizes raw completion output and validates it against the
// allowed label set.
func resolveLabel(raw string, labels []string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	if normalized == "" {
		return "", ErrEmptyResponse
	}

	if len(normalized) > extractionThreshold(labels) {
		// The model wrapped the label in prose; take the first allowed label
		// that appears, in enumeration order.
		for _, l := range labels {
			if strings.Contains(normalized, l) {
				normalized = l
				break
			}
		}
	}

	for _, l := range labels {
		if normalized == l {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: %q not in %v", ErrInvalidLabel, truncate(normalized, 80), labels)
}

// extractionThreshold is the longest allowed label; anything longer than an
// exact label triggers substring extraction.
func extractionThreshold(labels []string) int {
	longest := 0
	for _, l := range labels {
		if len(l) > longest {
			longest = len(l)
		}
	}
	return longest
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
