package utils

import "fmt"

// RetryAttempts is the total number of attempts Retry makes before giving up.
const RetryAttempts = 3

// Retry runs f until it succeeds or RetryAttempts attempts have been made.
// onError runs after every failed attempt except the last, which lets callers
// reset broken state (e.g. restart a browser session) before the next try.
// The final error carries every attempt's error.
func Retry[T any](f func() (T, error), onError func()) (T, error) {
	var errs []error
	for i := 0; i < RetryAttempts; i++ {
		value, err := f()
		if err == nil {
			return value, nil
		}
		errs = append(errs, err)
		if i < RetryAttempts-1 {
			GetLogger().Warnf("Retrying because of error: %v", err)
			if onError != nil {
				onError()
			}
		}
	}
	var zero T
	return zero, fmt.Errorf("giving up after %d attempts: %v", RetryAttempts, errs)
}
