package core

import (
	"errors"
)

// ErrNotFound is a sentinel error for "not found" cases
var ErrNotFound = errors.New("not found")

// ErrInvalidWebhookURL is returned when a webhook URL does not use an http or https scheme
var ErrInvalidWebhookURL = errors.New("webhook URL must start with http:// or https://")

// IsNotFoundError checks if an error is a "not found" error
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound)
}
