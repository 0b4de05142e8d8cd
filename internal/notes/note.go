// Package notes is the repository for user notes stored encrypted in the
// record backend.
package notes

import (
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/knaughts/internal/common"
)

const (
	// PageSize is the number of notes per listing page.
	PageSize = 3

	MaxTitleLen   = 30
	MaxContentLen = 500

	// IDLength is the length of backend record ids.
	IDLength = 15

	// DisplayLayout is how timestamps are shown to users.
	DisplayLayout = "2006-01-02 15:04"

	backendLayout = "2006-01-02 15:04:05.999999999Z07:00"
)

var idPattern = regexp.MustCompile(`^[a-z0-9]{15}$`)

// Note is a decrypted note. Created and Updated are display strings in UTC,
// or common.NullTimestamp when the backend value could not be parsed.
type Note struct {
	ID      string
	Title   string
	Content string
	Created string
	Updated string
}

type Page struct {
	Items       []Note
	CurrentPage int
	TotalPages  int
}

// ValidateID rejects anything that is not shaped like a record id.
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return common.ErrInvalidNoteID
	}
	return nil
}

func validateFields(title, content string) error {
	if n := utf8.RuneCountInString(title); n < 1 || n > MaxTitleLen {
		return fmt.Errorf("%w: title must be 1..%d characters", common.ErrInvalidInput, MaxTitleLen)
	}
	if n := utf8.RuneCountInString(content); n < 1 || n > MaxContentLen {
		return fmt.Errorf("%w: content must be 1..%d characters", common.ErrInvalidInput, MaxContentLen)
	}
	return nil
}

// displayTime converts a backend timestamp to DisplayLayout.
func displayTime(raw string) (string, error) {
	t, err := time.Parse(backendLayout, raw)
	if err != nil {
		return common.NullTimestamp, err
	}
	return t.UTC().Format(DisplayLayout), nil
}
