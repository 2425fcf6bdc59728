package publish

import (
	"errors"
	"fmt"
)

// RetryableError marks a publish failure as transient so the dispatcher
// reschedules the entry instead of abandoning it.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as transient.
func Retryable(err error) error {
	return &RetryableError{Err: err}
}

// Retryablef formats a transient error.
func Retryablef(format string, args ...interface{}) error {
	return &RetryableError{Err: fmt.Errorf(format, args...)}
}

// IsRetryable reports whether err should be retried with backoff.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// classifyStatus maps an API response status to transient or permanent.
// Rate limits and server-side failures retry; everything else in the 4xx
// range means the request itself is bad and retrying cannot help.
func classifyStatus(platform string, status int, body string) error {
	msg := fmt.Errorf("%s: status=%d body=%s", platform, status, body)
	if status == 429 || status >= 500 {
		return Retryable(msg)
	}
	return msg
}
