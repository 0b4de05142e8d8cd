package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dmitrijs2005/knaughts/internal/bot"
	"github.com/google/uuid"
)

// Console renders bot output as text. It implements bot.Responder.
type Console struct {
	mu sync.Mutex
	w  io.Writer

	userID   string
	userName string

	// modal is the form waiting for a submit line.
	modal *bot.Modal
	// buttons maps a visible button id to the message showing it.
	buttons map[string]string
}

func New(w io.Writer, userID, userName string) *Console {
	return &Console{
		w:        w,
		userID:   userID,
		userName: userName,
		buttons:  make(map[string]string),
	}
}

func (c *Console) println(a ...any) {
	fmt.Fprintln(c.w, a...)
}

func (c *Console) printf(format string, a ...any) {
	fmt.Fprintf(c.w, format, a...)
}

func (c *Console) printButtons(messageID string, bs []bot.Button) {
	for _, b := range bs {
		if b.Disabled {
			continue
		}
		c.printf("  [%s] click %s\n", b.Label, b.ID)
		c.buttons[b.ID] = messageID
	}
}

// forget drops the buttons of messageID.
func (c *Console) forget(messageID string) {
	for id, msg := range c.buttons {
		if msg == messageID {
			delete(c.buttons, id)
		}
	}
}

func (c *Console) ShowModal(_ context.Context, _ string, m bot.Modal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.modal = &m
	c.printf("== %s ==\n", m.Title)
	for _, f := range m.Fields {
		c.printf("  %s (%d-%d chars)", f.Label, f.Min, f.Max)
		if f.Value != "" {
			c.printf(": %s", f.Value)
		}
		c.println()
	}
	c.println("  submit <title> | <content>")
	return nil
}

func (c *Console) ShowNote(_ context.Context, _ string, v bot.NoteView) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgID := uuid.NewString()
	c.printf("== %s ==\n", v.Title)
	c.println(v.Content)
	c.println(v.Footer)
	c.printButtons(msgID, v.Buttons)
	return nil
}

func (c *Console) ShowNotesList(_ context.Context, _ string, v bot.ListView) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgID := uuid.NewString()
	c.renderList(msgID, v)
	return msgID, nil
}

func (c *Console) EditList(_ context.Context, messageID string, v bot.ListView) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.forget(messageID)
	c.renderList(messageID, v)
	return nil
}

func (c *Console) renderList(messageID string, v bot.ListView) {
	c.printf("== %s ==\n", v.Title)
	for _, it := range v.Items {
		c.printf("  %s\n    %s\n", it.Name, it.Value)
	}
	c.printf("  %s\n", v.Footer)
	c.printButtons(messageID, v.Buttons)
}

func (c *Console) ExpireList(_ context.Context, messageID string, m bot.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.forget(messageID)
	c.printMessage(m)
	return nil
}

func (c *Console) ShowMessage(_ context.Context, _ string, m bot.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.printMessage(m)
	return nil
}

func (c *Console) printMessage(m bot.Message) {
	if m.Title != "" {
		c.printf("== %s ==\n", m.Title)
	}
	if m.Text != "" {
		c.println(m.Text)
	}
}

// messageFor returns the message that shows buttonID.
func (c *Console) messageFor(buttonID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buttons[buttonID]
}

// takeModal returns and clears the open form.
func (c *Console) takeModal() (bot.Modal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.modal == nil {
		return bot.Modal{}, false
	}
	m := *c.modal
	c.modal = nil
	return m, true
}

func (c *Console) identity() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID, c.userName
}

func (c *Console) setIdentity(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.userID, c.userName = id, name
}

// parseSubmit splits "title | content" at the first bar.
func parseSubmit(s string) (string, string, bool) {
	title, content, ok := strings.Cut(s, "|")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(title), strings.TrimSpace(content), true
}
