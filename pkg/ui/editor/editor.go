// Package editor implements the editing collaborator of the edit command.
//
// An Editor receives a field set filled with defaults and suggestions and
// returns a finalized copy. It never mutates its input. Cancellation is
// reported as an error with code CANCELLED.
package editor

import (
	"strings"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/fields"
)

// Editor produces a finalized field set
type Editor interface {
	Edit(defaults *fields.Set) (*fields.Set, error)
}

// Func adapts a function to the Editor interface
type Func func(defaults *fields.Set) (*fields.Set, error)

// Edit calls f
func (f Func) Edit(defaults *fields.Set) (*fields.Set, error) {
	return f(defaults)
}

// Static applies fixed values without asking. Empty strings keep the
// defaults; it backs the non-interactive --name/--target flags.
type Static struct {
	Name   string
	Target string
}

// Edit returns defaults with the static values applied
func (s Static) Edit(defaults *fields.Set) (*fields.Set, error) {
	if defaults == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no fields to edit")
	}
	result := defaults.Clone()
	if name := strings.TrimSpace(s.Name); name != "" {
		result.OrigLink = name
	}
	if target := strings.TrimSpace(s.Target); target != "" {
		result.TargetRef = target
	}
	return result, nil
}

// Cancelled returns the error editors report when the user backs out
func Cancelled() error {
	return errors.New(errors.ErrCancelled, "edit cancelled")
}
