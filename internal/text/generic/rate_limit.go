package generic

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/misc"
)

// Header names used by OpenAI compatible vendors
const (
	OpenAIRemainingTokensHeader = "x-ratelimit-remaining-tokens"
	OpenAIResetTokensHeader     = "x-ratelimit-reset-tokens"
)

// lowWaterMark is the amount of remaining tokens at which requests start to
// wait for the reset
const lowWaterMark = 50

// RateLimiter is a vendor agnostic limiter for input tokens.
// It parses rate limit headers and pauses requests when the limit is hit.
// The zero value, and a nil limiter, never limits. Safe for concurrent use.
type RateLimiter struct {
	mu sync.Mutex

	remainingHeader string
	resetHeader     string

	remainingTokens int
	resetTokens     time.Time

	debug bool
}

// NewRateLimiter creates a new limiter using the provided header names.
func NewRateLimiter(remainingHeader, resetHeader string) *RateLimiter {
	rl := &RateLimiter{
		remainingHeader: strings.ToLower(remainingHeader),
		resetHeader:     strings.ToLower(resetHeader),
	}
	if misc.Truthy(os.Getenv("DEBUG")) || misc.Truthy(os.Getenv("DEBUG_RATE_LIMIT")) {
		rl.debug = true
	}
	return rl
}

// UpdateFromHeaders extracts rate limit information from an HTTP response.
// Previous values are reset to avoid stale data. An error is returned if
// the headers are missing or malformed.
func (r *RateLimiter) UpdateFromHeaders(h http.Header) error {
	if r == nil || r.remainingHeader == "" || r.resetHeader == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.remainingTokens = 0
	r.resetTokens = time.Time{}

	remStr := h.Get(r.remainingHeader)
	if remStr == "" {
		return fmt.Errorf("missing header '%s'", r.remainingHeader)
	}
	rem, err := strconv.Atoi(remStr)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", r.remainingHeader, err)
	}
	r.remainingTokens = rem

	resetStr := h.Get(r.resetHeader)
	if resetStr == "" {
		return fmt.Errorf("missing header '%s'", r.resetHeader)
	}
	reset, err := parseReset(resetStr)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", r.resetHeader, err)
	}
	r.resetTokens = reset
	if r.debug {
		ancli.PrintOK(fmt.Sprintf("rate limit: %v tokens remaining, reset at: %v\n", r.remainingTokens, r.resetTokens))
	}
	return nil
}

// parseReset accepts a duration ("2s"), unix seconds or fractional seconds
func parseReset(s string) (time.Time, error) {
	if dur, err := time.ParseDuration(s); err == nil {
		return time.Now().Add(dur), nil
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(ts, 0), nil
	}
	if sec, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Now().Add(time.Duration(sec * float64(time.Second))), nil
	}
	return time.Time{}, fmt.Errorf("unknown reset format: '%v'", s)
}

// WaitIfNeeded pauses execution when close to the rate limit, or until ctx
// is done.
func (r *RateLimiter) WaitIfNeeded(ctx context.Context) {
	if r == nil || r.remainingHeader == "" {
		return
	}
	remaining, reset := r.Limits()
	if remaining > lowWaterMark || reset.IsZero() {
		return
	}

	waitDuration := time.Until(reset)
	if waitDuration <= 0 {
		return
	}
	ancli.PrintWarn(fmt.Sprintf("rate limit reached, waiting %v\n", waitDuration.Round(time.Second)))
	timer := time.NewTimer(waitDuration)
	select {
	case <-ctx.Done():
		timer.Stop()
	case <-timer.C:
	}
}

// Limits returns the remaining tokens and the reset time from the latest
// response.
func (r *RateLimiter) Limits() (int, time.Time) {
	if r == nil {
		return 0, time.Time{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remainingTokens, r.resetTokens
}
