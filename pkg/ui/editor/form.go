package editor

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/lnedit/pkg/errors"
	"github.com/arthur-debert/lnedit/pkg/fields"
	"github.com/charmbracelet/huh"
)

// Form edits fields in an interactive terminal form
type Form struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

// NewForm creates a form editor. Accessible mode replaces the full-screen
// form with line prompts.
func NewForm(in io.Reader, out io.Writer, accessible bool) *Form {
	return &Form{in: in, out: out, accessible: accessible}
}

// Edit runs the form
func (f *Form) Edit(defaults *fields.Set) (*fields.Set, error) {
	if defaults == nil {
		return nil, errors.New(errors.ErrInvalidInput, "no fields to edit")
	}
	result := defaults.Clone()

	form := huh.NewForm(f.groups(defaults, result)...).
		WithAccessible(f.accessible).
		WithShowHelp(true)
	if f.in != nil {
		form = form.WithInput(f.in)
	}
	if f.out != nil {
		form = form.WithOutput(f.out)
	}

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return nil, Cancelled()
		}
		return nil, errors.Wrap(err, errors.ErrInternal, "editor failed")
	}

	result.OrigLink = strings.TrimSpace(result.OrigLink)
	result.TargetRef = strings.TrimSpace(result.TargetRef)
	return result, nil
}

// groups lays out the form; result receives the edited values
func (f *Form) groups(defaults, result *fields.Set) []*huh.Group {
	link := huh.NewGroup(
		huh.NewNote().
			Title("Current target").
			Description(describeCurrent(defaults)),
		huh.NewInput().
			Title("Link name").
			Value(&result.OrigLink).
			Validate(required("link name")),
		huh.NewInput().
			Title("Target").
			Description("Tab completes the suggestions below").
			Suggestions(defaults.Suggestions()).
			Value(&result.TargetRef).
			Validate(required("target")),
		huh.NewNote().
			Title("Suggestions").
			Description(describeSuggestions(defaults)),
	)

	options := huh.NewGroup(
		huh.NewConfirm().
			Title("Allow a target that doesn't exist?").
			Affirmative("Yes").
			Negative("No").
			Value(&result.AllowBroken),
		huh.NewConfirm().
			Title("Keep a backup of the old link?").
			Affirmative("Yes").
			Negative("No").
			Value(&result.SaveBackup),
		huh.NewConfirm().
			Title("Delete the original link if renamed?").
			Affirmative("Yes").
			Negative("No").
			Value(&result.DeleteOrig),
	)

	return []*huh.Group{link, options}
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}

func describeCurrent(s *fields.Set) string {
	if s.OrigReadlink == "" || s.OrigReadlink == s.TargetRef {
		return s.TargetRef
	}
	return fmt.Sprintf("%s\n(resolves to %s)", s.TargetRef, s.OrigReadlink)
}

func describeSuggestions(s *fields.Set) string {
	var lines []string
	for _, entry := range []struct{ label, value string }{
		{"absolute", s.SuggestionAbspath},
		{"relative", s.SuggestionRelpath},
		{"root", s.SuggestionUserroot},
	} {
		if entry.value != "" {
			lines = append(lines, fmt.Sprintf("%-9s %s", entry.label, entry.value))
		}
	}
	if len(lines) == 0 {
		return "none"
	}
	return strings.Join(lines, "\n")
}
