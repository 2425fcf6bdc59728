package scheduler

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTargetPlatforms rejects a submission with an empty platform set.
	ErrNoTargetPlatforms = errors.New("post has no target platforms")

	// ErrEmptyContent rejects a text-bearing submission without content.
	ErrEmptyContent = errors.New("post content is empty")

	// ErrEntryNotCancellable is returned when the entry already left the
	// pending state.
	ErrEntryNotCancellable = errors.New("entry is not pending")

	// ErrNotFound is returned when the referenced post or entry does not
	// exist or belongs to someone else.
	ErrNotFound = errors.New("not found")
)

// ValidationError names the platform whose constraints a submission broke.
// One failing platform aborts the whole submission.
type ValidationError struct {
	Platform string
	Reason   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Platform, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Reason }
