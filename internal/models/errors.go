package models

import (
	"fmt"
	"time"
)

// ErrRateLimit is returned by services which have hit the rate limit of
// the vendor.
type ErrRateLimit struct {
	ResetAt         time.Time
	MaxInputTokens  int
	TokensRemaining int
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited, reset at: %v, input tokens used: %v, tokens remaining: %v",
		e.ResetAt.Format(time.RFC3339), e.MaxInputTokens, e.TokensRemaining)
}

func NewRateLimitError(resetAt time.Time, maxInputTokens, tokensRemaining int) error {
	return &ErrRateLimit{
		ResetAt:         resetAt,
		MaxInputTokens:  maxInputTokens,
		TokensRemaining: tokensRemaining,
	}
}
