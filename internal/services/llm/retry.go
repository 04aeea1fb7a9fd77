package llm

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"google.golang.org/genai"
)

// RateLimitRetryConfig defines how provider calls are retried after a rate limit error.
// Other errors are returned immediately: a half-streamed generation is not resumable.
type RateLimitRetryConfig struct {
	// MaxRetries is the maximum number of retries after the first call (default: 3)
	MaxRetries int

	// InitialBackoff is the wait before the first retry when the API suggests none (default: 30s)
	InitialBackoff time.Duration

	// MaxBackoff caps every wait (default: 90s)
	MaxBackoff time.Duration

	// BackoffMultiplier is applied to the backoff on each retry (default: 1.5)
	BackoffMultiplier float64
}

// Default rate limit retry constants
const (
	DefaultRateLimitRetries  = 3
	DefaultInitialBackoff    = 30 * time.Second
	DefaultMaxBackoff        = 90 * time.Second
	DefaultBackoffMultiplier = 1.5
)

// NewDefaultRetryConfig returns the default rate limit retry configuration
func NewDefaultRetryConfig() *RateLimitRetryConfig {
	return &RateLimitRetryConfig{
		MaxRetries:        DefaultRateLimitRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
	}
}

// IsRateLimitError checks if an error is a provider rate limit or overload error.
// Typed API errors are matched by status (429, 529); other errors by the
// RESOURCE_EXHAUSTED, rate_limit_error and overloaded_error markers.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	var claudeErr *anthropic.Error
	if errors.As(err, &claudeErr) {
		return claudeErr.StatusCode == http.StatusTooManyRequests || claudeErr.StatusCode == 529
	}
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code == http.StatusTooManyRequests
	}

	errStr := err.Error()
	return strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate_limit_error") ||
		strings.Contains(errStr, "overloaded_error") ||
		strings.Contains(errStr, "429 Too Many Requests")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from an error.
// Returns 0 if no delay is found in the error message.
//
// Example error message:
// "Error 429, Message: ... Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// CalculateBackoff computes the backoff duration for a given attempt (0-based).
// If apiDelay > 0 it is used as the base plus a small buffer, otherwise InitialBackoff.
// The result is capped at MaxBackoff.
func (c *RateLimitRetryConfig) CalculateBackoff(attempt int, apiDelay time.Duration) time.Duration {
	base := c.InitialBackoff
	if apiDelay > 0 {
		base = apiDelay + 5*time.Second
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= c.BackoffMultiplier
	}

	backoff := time.Duration(float64(base) * multiplier)
	if c.MaxBackoff > 0 && backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}

	return backoff
}
