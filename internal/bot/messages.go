package bot

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/knaughts/internal/common"
)

type MessageKind int

const (
	MessageAbout MessageKind = iota + 1
	MessageNoteCreated
	MessageNoteDeleted
	MessageNotFound
	MessageNoNotes
	MessageFailed
	MessageTimedOut
	MessageCreateFailed
	MessageEditFailed
	MessageDeleteFailed
	MessageInvalidInput
)

// Message is a standalone reply. Image is a URL and may be empty.
type Message struct {
	Kind  MessageKind
	Title string
	Text  string
	Image string
}

// Images are the optional pictures attached to replies.
type Images struct {
	Logo     string
	Question string
	Sad      string
}

const retryHint = "Please try again. If the issue persists, ask in the support server."

func (r *Router) message(kind MessageKind) Message {
	m := Message{Kind: kind}
	switch kind {
	case MessageAbout:
		m.Title = "About Knaughts"
		m.Text = "Knaughts is a super-powered notes bot for Discord.\n\n" +
			"`/note` - Create a new note.\n" +
			"`/notes [id]` - View your notes. Provide an `id` to view a specific note.\n" +
			"`/about` - About Knaughts"
		m.Image = r.images.Logo
	case MessageNoteDeleted:
		m.Title = "Note deleted"
		m.Text = "Your note has been deleted."
	case MessageNotFound:
		m.Title = "Invalid note ID"
		m.Text = "The note ID you provided is invalid, please try again."
		m.Image = r.images.Question
	case MessageNoNotes:
		m.Title = "No notes found"
		m.Text = "You don't have any notes yet. Create one with `/note`."
		m.Image = r.images.Question
	case MessageFailed:
		m.Title = "Sorry, there was an error getting your notes."
		m.Text = retryHint
		m.Image = r.images.Sad
	case MessageTimedOut:
		m.Title = "⏰ Timeout"
		m.Text = "Request timed out, please execute the `/notes` command again to access your notes."
	case MessageCreateFailed:
		m.Title = "Sorry, there was an error creating your note."
		m.Text = retryHint
		m.Image = r.images.Sad
	case MessageEditFailed:
		m.Title = "Note failed to edit"
		m.Text = "Sorry, something went wrong. Please try to edit your note again."
		m.Image = r.images.Sad
	case MessageDeleteFailed:
		m.Title = "Note failed to delete"
		m.Text = "Sorry, something went wrong. Please try to delete your note again."
		m.Image = r.images.Sad
	case MessageInvalidInput:
		m.Title = "Invalid note"
		m.Text = "Titles must be 1 to 30 characters and content 1 to 500 characters."
	}
	return m
}

func (r *Router) created(id string) Message {
	return Message{Kind: MessageNoteCreated, Text: fmt.Sprintf("Your note has been created! Note ID: `%s`", id)}
}

// readFailure picks the reply for a failed read of notes.
func readFailure(err error) MessageKind {
	switch {
	case errors.Is(err, common.ErrEmptyList):
		return MessageNoNotes
	case errors.Is(err, common.ErrNotFound):
		return MessageNotFound
	default:
		return MessageFailed
	}
}

// writeFailure picks the reply for a failed create or update; fallback is
// used for anything that is not the user's fault.
func writeFailure(err error, fallback MessageKind) MessageKind {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return MessageInvalidInput
	case errors.Is(err, common.ErrNotFound):
		return MessageNotFound
	default:
		return fallback
	}
}
