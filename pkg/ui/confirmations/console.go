// Package confirmations provides UI implementations for confirmation dialogs.
package confirmations

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/lnedit/pkg/errors"
)

var (
	yesAnswers = map[string]bool{"": true, "y": true, "ye": true, "yes": true}
	noAnswers  = map[string]bool{"n": true, "no": true}
)

// ConsoleDialog asks yes/no questions on a line-oriented terminal. An empty
// answer means yes; anything unrecognized asks again.
type ConsoleDialog struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsoleDialog creates a new console confirmation dialog
func NewConsoleDialog(in io.Reader, out io.Writer) *ConsoleDialog {
	return &ConsoleDialog{in: bufio.NewReader(in), out: out}
}

// Confirm shows prompt and waits for an answer. Running out of input is
// reported as ErrCancelled.
func (d *ConsoleDialog) Confirm(prompt string) (bool, error) {
	if _, err := fmt.Fprintf(d.out, "%s [Y/n] ", prompt); err != nil {
		return false, errors.Wrap(err, errors.ErrInternal, "failed to write prompt")
	}

	for {
		line, err := d.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				_, _ = fmt.Fprintln(d.out)
				return false, errors.New(errors.ErrCancelled, "no answer given")
			}
			return false, errors.Wrap(err, errors.ErrInternal, "failed to read user input")
		}

		answer := strings.ToLower(strings.TrimSpace(line))
		switch {
		case yesAnswers[answer]:
			return true, nil
		case noAnswers[answer]:
			return false, nil
		}

		if _, err := fmt.Fprint(d.out, "Please respond with 'yes' or 'no': "); err != nil {
			return false, errors.Wrap(err, errors.ErrInternal, "failed to write prompt")
		}
	}
}
