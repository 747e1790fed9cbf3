package tweepy

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("tweepy: not found")

// ErrMissingBaseURL is returned when no Mastodon server is configured.
var ErrMissingBaseURL = errors.New("tweepy: api base url is required")

// NotFoundError reports a user or status that does not exist on the server,
// or a call that did not identify one at all.
type NotFoundError struct {
	Resource string
	Key      string
	Err      error
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("tweepy: %s not found", e.Resource)
	}
	return fmt.Sprintf("tweepy: %s %s not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Unwrap() error { return e.Err }
