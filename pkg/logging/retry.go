package logging

import (
	"time"
)

// Retry runs op up to attempts times with a fixed backoff between
// attempts, returning the last error if all attempts fail. It replaces
// ad-hoc sleep loops around transient failures such as log writes to
// network filesystems.
func Retry(attempts int, backoff time.Duration, op func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if err = op(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(backoff)
		}
	}
	return err
}
