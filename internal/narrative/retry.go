package narrative

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

const (
	retryAttempts    = 3
	retryBaseBackoff = 500 * time.Millisecond
	retryMaxBackoff  = 8 * time.Second
)

// withRetry runs one annotation API call with exponential backoff and
// jitter. Annotation is best-effort, so every error is treated as retryable
// except context cancellation.
func withRetry(ctx context.Context, key string, fn func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt >= retryAttempts-1 {
			break
		}

		zap.L().Warn("narrative: retrying annotation",
			zap.String("ingredient", key),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(retryBackoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", lastErr
		case <-timer.C:
		}
	}
	return "", lastErr
}

func retryBackoff(attempt int) time.Duration {
	delay := float64(retryBaseBackoff) * math.Pow(2, float64(attempt))
	if delay > float64(retryMaxBackoff) {
		delay = float64(retryMaxBackoff)
	}
	// Jitter of up to ±25% keeps concurrent annotators from retrying in
	// lockstep.
	delay += (rand.Float64()*2 - 1) * delay * 0.25
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay)
}
