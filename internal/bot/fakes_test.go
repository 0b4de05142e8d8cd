package bot

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/notes"
)

type call struct {
	Method  string
	Target  string
	Modal   Modal
	Note    NoteView
	List    ListView
	Message Message
}

// recorder is a Responder that keeps every render.
type recorder struct {
	mu      sync.Mutex
	calls   []call
	nextID  int
	expired chan string
}

func newRecorder() *recorder {
	return &recorder{expired: make(chan string, 8)}
}

func (r *recorder) add(c call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
}

func (r *recorder) ShowModal(_ context.Context, userID string, m Modal) error {
	r.add(call{Method: "ShowModal", Target: userID, Modal: m})
	return nil
}

func (r *recorder) ShowNote(_ context.Context, userID string, v NoteView) error {
	r.add(call{Method: "ShowNote", Target: userID, Note: v})
	return nil
}

func (r *recorder) ShowNotesList(_ context.Context, userID string, v ListView) (string, error) {
	r.mu.Lock()
	r.nextID++
	id := fmt.Sprintf("msg-%d", r.nextID)
	r.mu.Unlock()
	r.add(call{Method: "ShowNotesList", Target: userID, List: v})
	return id, nil
}

func (r *recorder) EditList(_ context.Context, messageID string, v ListView) error {
	r.add(call{Method: "EditList", Target: messageID, List: v})
	return nil
}

func (r *recorder) ExpireList(_ context.Context, messageID string, m Message) error {
	r.add(call{Method: "ExpireList", Target: messageID, Message: m})
	r.expired <- messageID
	return nil
}

func (r *recorder) ShowMessage(_ context.Context, userID string, m Message) error {
	r.add(call{Method: "ShowMessage", Target: userID, Message: m})
	return nil
}

func (r *recorder) all() []call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]call(nil), r.calls...)
}

func (r *recorder) last() call {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return call{}
	}
	return r.calls[len(r.calls)-1]
}

// memRepo is an in-memory notes.Repository; notes are listed newest first.
type memRepo struct {
	mu       sync.Mutex
	seq      int
	byUser   map[string][]notes.Note
	listErr  error
	lists    int
	deleteOK bool
}

func newMemRepo() *memRepo {
	return &memRepo{byUser: make(map[string][]notes.Note), deleteOK: true}
}

func (m *memRepo) Create(_ context.Context, userID, title, content string) (string, error) {
	if title == "" || content == "" {
		return "", common.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	n := notes.Note{
		ID:      fmt.Sprintf("n%014d", m.seq),
		Title:   title,
		Content: content,
		Created: "2024-03-05 17:42",
		Updated: "2024-03-05 17:42",
	}
	m.byUser[userID] = append([]notes.Note{n}, m.byUser[userID]...)
	return n.ID, nil
}

func (m *memRepo) Update(_ context.Context, userID, noteID, title, content string) (notes.Note, error) {
	if err := notes.ValidateID(noteID); err != nil {
		return notes.Note{}, err
	}
	if title == "" || content == "" {
		return notes.Note{}, common.ErrInvalidInput
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, n := range m.byUser[userID] {
		if n.ID == noteID {
			n.Title, n.Content, n.Updated = title, content, "2024-03-06 09:00"
			m.byUser[userID][i] = n
			return n, nil
		}
	}
	return notes.Note{}, common.NewStatusError("update", 404)
}

func (m *memRepo) List(_ context.Context, userID string, page int) (notes.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return notes.Page{}, m.listErr
	}
	all := m.byUser[userID]
	total := (len(all) + notes.PageSize - 1) / notes.PageSize
	if page < 1 || page > total {
		return notes.Page{}, common.ErrEmptyList
	}
	end := min(page*notes.PageSize, len(all))
	return notes.Page{Items: all[(page-1)*notes.PageSize : end], CurrentPage: page, TotalPages: total}, nil
}

func (m *memRepo) Get(_ context.Context, noteID, userID string) (notes.Note, error) {
	if err := notes.ValidateID(noteID); err != nil {
		return notes.Note{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.byUser[userID] {
		if n.ID == noteID {
			return n, nil
		}
	}
	return notes.Note{}, common.ErrNotFound
}

func (m *memRepo) Delete(_ context.Context, noteID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.deleteOK {
		return false
	}
	list := m.byUser[userID]
	for i, n := range list {
		if n.ID == noteID {
			m.byUser[userID] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (m *memRepo) listCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists
}

type membership struct {
	mu     sync.Mutex
	events []string
}

func (m *membership) RecordJoin(guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "join:"+guildID)
}

func (m *membership) RecordLeave(guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "leave:"+guildID)
}
