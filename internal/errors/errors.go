// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ValidationError means a campaign start request was rejected before any
// side effect happened.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// NewValidation builds a ValidationError from a format string.
func NewValidation(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ErrCampaignRunning is returned when a second campaign is started while one
// is still draining.
var ErrCampaignRunning = errors.New("a campaign is already running")

// ErrCampaignInProgress is returned when the status is reset mid-run.
var ErrCampaignInProgress = errors.New("campaign is in progress")

// ErrNoTemplate is returned when every saved template body is empty.
var ErrNoTemplate = errors.New("no template available")

// ErrAccountNotFound is a sentinel error for unknown account IDs.
type ErrAccountNotFound struct {
	AccountID string
}

func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account with ID %s not found", e.AccountID)
}

// Helper constructor
func NewAccountNotFound(id string) error {
	return &ErrAccountNotFound{AccountID: id}
}
