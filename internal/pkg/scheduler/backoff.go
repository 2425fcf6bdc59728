package scheduler

import "time"

const (
	// BackoffBase is the first retry delay.
	BackoffBase = 30 * time.Second

	// BackoffCap bounds the delay growth.
	BackoffCap = time.Hour

	// MaxAttempts is how many publish attempts an entry gets before it is
	// abandoned.
	MaxAttempts = 3
)

// Backoff returns the delay before retry number attempts, doubling per
// attempt and capped. attempts counts the publish attempt that just failed,
// so the first retry waits base*2.
func Backoff(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	d := BackoffBase
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= BackoffCap {
			return BackoffCap
		}
	}
	return d
}
