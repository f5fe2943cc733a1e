package wizard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConsentRequired    = errors.New("please accept the terms and conditions")
	ErrInvalidTransition  = errors.New("wizard: invalid transition")
	ErrSubmissionInFlight = errors.New("wizard: a submission is already in progress")
	ErrDraftFrozen        = errors.New("wizard: application already submitted")
	ErrUnknownField       = errors.New("wizard: unknown field")
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string
	Label   string
	Message string
}

func (e FieldError) Error() string { return e.Message }

// ValidationError lists every failing field of a step check.
type ValidationError struct {
	Step   Step
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return fmt.Sprintf("%s: %s", e.Step, strings.Join(msgs, "; "))
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// PersistenceError is a failed persistence call. Message is the text shown
// to the applicant.
type PersistenceError struct {
	Message string
	Err     error
}

func (e *PersistenceError) Error() string { return e.Message }

func (e *PersistenceError) Unwrap() error { return e.Err }

// userMessager is implemented by collaborator errors whose text is meant for
// the applicant, such as a non-2xx response body.
type userMessager interface {
	UserMessage() string
}

// displayMessage returns the collaborator's reported text, or fallback for
// transport and other local failures.
func displayMessage(err error, fallback string) string {
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
