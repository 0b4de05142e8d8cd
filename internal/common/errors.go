// Package common defines shared constants and sentinel errors used across
// the knaughts client layers. Callers should use errors.Is to match these
// values; every layer wraps them with fmt.Errorf("...: %w", err).
package common

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Transport-level errors (connectivity, request deadline).
	ErrTransport = errors.New("transport error")

	// Backend errors (unexpected status from the record service).
	ErrBackend = errors.New("backend error")

	// Lookup errors. ErrEmptyList is deliberately distinct from ErrNotFound:
	// "you have zero notes" is not the same thing as "this note does not exist".
	ErrNotFound  = errors.New("not found")
	ErrEmptyList = errors.New("empty list")

	// Cryptographic boundary errors.
	ErrCrypto     = errors.New("crypto error")
	ErrEncryption = errors.New("encryption error")
	ErrDecryption = errors.New("decryption error")

	// Auth errors: fatal at startup, transient afterwards.
	ErrAuth          = errors.New("unauthorized")
	ErrAuthorization = errors.New("not the owner of this interaction")

	// Interaction errors.
	ErrSessionExpired = errors.New("session expired")
	ErrInvalidAction  = errors.New("invalid action")
	ErrInvalidInput   = errors.New("invalid input")

	// ErrInvalidNoteID is reported to users the same way as a missing note.
	ErrInvalidNoteID = fmt.Errorf("%w: invalid note id", ErrNotFound)
)

// StatusError reports a non-success HTTP status returned by the backend.
//
// It matches ErrBackend with errors.Is, and additionally ErrAuth for 401 and
// 403 responses, so callers can tell an expired credential from any other
// rejected request.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Code)
}

func (e *StatusError) Unwrap() []error {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return []error{ErrBackend, ErrAuth}
	}
	return []error{ErrBackend}
}

// NewStatusError returns a *StatusError for op and code.
func NewStatusError(op string, code int) error {
	return &StatusError{Op: op, Code: code}
}
