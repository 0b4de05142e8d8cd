package console

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/term"
)

// ErrNotTerminal is returned by ReadSecret when fd is not a terminal.
var ErrNotTerminal = errors.New("secret input requires a terminal")

// Test seams for the terminal calls.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ReadSecret prints prompt to w and reads one line from fd without echo.
// The caller owns the returned slice and should wipe it after use.
func ReadSecret(w io.Writer, prompt string, fd int) ([]byte, error) {
	if !isTerminal(fd) {
		return nil, ErrNotTerminal
	}
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	secret, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read secret: %w", err)
	}
	return secret, nil
}
