package bot

import "context"

// Command names.
const (
	CommandNote  = "note"
	CommandNotes = "notes"
	CommandAbout = "about"

	// OptionID is the optional note id argument of /notes.
	OptionID = "id"
)

// Modal and input ids.
const (
	ModalCreate     = "k-notes-modal-create"
	ModalEditPrefix = "k-notes-modal-edit-"
	InputTitle      = "k-notes-title"
	InputContent    = "k-notes-content"
)

type Command struct {
	Name     string
	UserID   string
	UserName string
	Options  map[string]string
}

type ButtonClick struct {
	MessageID string
	UserID    string
	UserName  string
	CustomID  string
}

type ModalSubmit struct {
	ModalID string
	UserID  string
	Values  map[string]string
}

type GuildEvent struct {
	GuildID string
	Joined  bool
}

// Responder renders to the chat platform on behalf of the router.
type Responder interface {
	ShowModal(ctx context.Context, userID string, m Modal) error
	ShowNote(ctx context.Context, userID string, v NoteView) error
	// ShowNotesList posts a listing and returns the id of the rendered
	// message; later clicks on its buttons carry that id.
	ShowNotesList(ctx context.Context, userID string, v ListView) (string, error)
	EditList(ctx context.Context, messageID string, v ListView) error
	// ExpireList disables the listing's buttons and replaces it with m.
	ExpireList(ctx context.Context, messageID string, m Message) error
	ShowMessage(ctx context.Context, userID string, m Message) error
}

// Membership receives guild join and leave events.
type Membership interface {
	RecordJoin(guildID string)
	RecordLeave(guildID string)
}
