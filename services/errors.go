package services

import (
	"errors"
	"fmt"

	"popularchoice/models"
)

var (
	// ErrInvalidCode means the game code is missing or not 6 characters.
	ErrInvalidCode = errors.New("invalid game code: must be 6 characters")

	// ErrSessionNotFound means no session exists for the code and no board
	// subscription justifies creating one.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError reports a host action whose fields are missing or
// malformed. The session is left untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// PhaseError reports a host action attempted from a phase that does not
// permit it. The session is left untouched.
type PhaseError struct {
	Action string
	Phase  models.Phase
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("action %q not allowed in phase %q", e.Action, e.Phase)
}
