package bot

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/dmitrijs2005/knaughts/internal/notes"
	"github.com/dmitrijs2005/knaughts/internal/pagination"
)

const (
	previewTitleLen   = 10
	previewContentLen = 50

	labelPrev = "⬅️"
	labelNext = "➡️"
)

type Button struct {
	ID       string
	Label    string
	Disabled bool
}

type TextInput struct {
	ID          string
	Label       string
	Value       string
	Placeholder string
	Min, Max    int
	Long        bool
}

type Modal struct {
	ID     string
	Title  string
	Fields []TextInput
}

// ListItem is one note preview inside a listing.
type ListItem struct {
	Name  string
	Value string
}

type ListView struct {
	Title   string
	Items   []ListItem
	Buttons []Button
	Footer  string
}

type NoteView struct {
	ID      string
	Title   string
	Content string
	Footer  string
	Buttons []Button
}

// truncate cuts s to n runes and marks the cut.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

func createModal() Modal {
	return Modal{
		ID:    ModalCreate,
		Title: "Create a note",
		Fields: []TextInput{
			{ID: InputTitle, Label: "Title", Placeholder: "My new note", Min: 1, Max: notes.MaxTitleLen},
			{ID: InputContent, Label: "Note Content", Placeholder: "Write your notes here...", Min: 1, Max: notes.MaxContentLen, Long: true},
		},
	}
}

func editModal(n notes.Note) Modal {
	m := createModal()
	m.ID = ModalEditPrefix + n.ID
	m.Title = "Edit note"
	m.Fields[0].Value = n.Title
	m.Fields[1].Value = n.Content
	return m
}

func (r *Router) listView(userName, owner string, p notes.Page) ListView {
	v := ListView{
		Title:  fmt.Sprintf("`%s`'s Notes", userName),
		Footer: fmt.Sprintf("Page %d of %d", p.CurrentPage, p.TotalPages),
	}

	if p.CurrentPage > 1 {
		v.Buttons = append(v.Buttons, Button{ID: pagination.Prev(owner, p.CurrentPage).Encode(r.namespace), Label: labelPrev})
	}
	for i, n := range p.Items {
		pos := (p.CurrentPage-1)*notes.PageSize + i + 1
		v.Items = append(v.Items, ListItem{
			Name:  fmt.Sprintf("%d. %s ⎯ `%s`", pos, truncate(n.Title, previewTitleLen), n.ID),
			Value: "> " + truncate(n.Content, previewContentLen),
		})
		v.Buttons = append(v.Buttons, Button{ID: pagination.View(n.ID).Encode(r.namespace), Label: "#" + strconv.Itoa(pos)})
	}
	if p.CurrentPage < p.TotalPages {
		v.Buttons = append(v.Buttons, Button{ID: pagination.Next(owner, p.CurrentPage).Encode(r.namespace), Label: labelNext})
	}
	return v
}

func (r *Router) noteView(n notes.Note) NoteView {
	return NoteView{
		ID:      n.ID,
		Title:   n.Title,
		Content: n.Content,
		Footer:  fmt.Sprintf("Created: %s • Updated: %s", n.Created, n.Updated),
		Buttons: []Button{
			{ID: pagination.Edit(n.ID).Encode(r.namespace), Label: "Edit"},
			{ID: pagination.Delete(n.ID).Encode(r.namespace), Label: "Delete"},
		},
	}
}
