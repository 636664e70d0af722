package tracker

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind discriminates tracker failures the engine cares about.
type Kind int

const (
	// KindUnknown covers every failure with no special handling.
	KindUnknown Kind = iota
	// KindMissingLabel means issue creation failed because a requested
	// label does not exist on the target repository.
	KindMissingLabel
)

// Error is a structured tracker failure. Label is set for
// KindMissingLabel.
type Error struct {
	Kind  Kind
	Label string
	Op    string
	Err   error
}

func (e *Error) Error() string {
	if e.Kind == KindMissingLabel {
		return fmt.Sprintf("%s: could not add label: '%s' not found", e.Op, e.Label)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// missingLabelPattern matches the textual form of a missing-label failure,
// the contract the gh CLI established and old state files still carry.
var missingLabelPattern = regexp.MustCompile(`could not add label: '(.*?)' not found`)

// MissingLabelName extracts the missing label name from err, preferring
// the structured Kind and falling back to substring matching on the
// message for errors that arrive as free text.
func MissingLabelName(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var te *Error
	if errors.As(err, &te) && te.Kind == KindMissingLabel {
		return te.Label, true
	}
	if m := missingLabelPattern.FindStringSubmatch(err.Error()); m != nil {
		return m[1], true
	}
	return "", false
}
