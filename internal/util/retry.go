// ABOUTME: Retry utilities for inference backend calls
// ABOUTME: Exponential backoff with jitter, capped to keep passes bounded
package util

import (
	"math/rand/v2"
	"time"
)

// maxBackoff caps a single retry delay
const maxBackoff = 30 * time.Second

// CalculateBackoff returns the delay before the given retry attempt: the base
// delay doubled per attempt, capped at maxBackoff, with up to 25% jitter in
// either direction.
func CalculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	// Clamp the shift so the multiplication cannot overflow
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay << uint(attempt)
	if backoff > maxBackoff || backoff < 0 {
		backoff = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}
