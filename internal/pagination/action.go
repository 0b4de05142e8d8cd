// Package pagination turns stateless button clicks into paged browsing of a
// user's notes.
//
// Buttons carry an Action serialized as
//
//	<namespace>.notes.<kind>.<subject>[.<page>]
//
// where subject is the owner's user id for next/prev (which also carry the
// target page) and the note id for view/edit/delete.
package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/knaughts/internal/common"
)

type Kind int

const (
	KindNext Kind = iota + 1
	KindPrev
	KindView
	KindEdit
	KindDelete
)

var kindNames = map[Kind]string{
	KindNext:   "next",
	KindPrev:   "prev",
	KindView:   "view",
	KindEdit:   "edit",
	KindDelete: "delete",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Paged reports whether actions of this kind carry a page number.
func (k Kind) Paged() bool {
	return k == KindNext || k == KindPrev
}

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

const resource = "notes"

type Action struct {
	Kind    Kind
	Subject string
	Page    int
}

func Next(owner string, page int) Action { return Action{Kind: KindNext, Subject: owner, Page: page} }
func Prev(owner string, page int) Action { return Action{Kind: KindPrev, Subject: owner, Page: page} }
func View(noteID string) Action          { return Action{Kind: KindView, Subject: noteID} }
func Edit(noteID string) Action          { return Action{Kind: KindEdit, Subject: noteID} }
func Delete(noteID string) Action        { return Action{Kind: KindDelete, Subject: noteID} }

// Encode renders the button id under namespace.
func (a Action) Encode(namespace string) string {
	id := namespace + "." + resource + "." + a.Kind.String() + "." + a.Subject
	if a.Kind.Paged() {
		id += "." + strconv.Itoa(a.Page)
	}
	return id
}

// Decode parses a button id produced by Encode. Ids from another namespace,
// unknown kinds and malformed pages all fail with common.ErrInvalidAction.
func Decode(namespace, id string) (Action, error) {
	parts := strings.Split(id, ".")
	if len(parts) < 4 || parts[0] != namespace || parts[1] != resource {
		return Action{}, fmt.Errorf("%w: %q", common.ErrInvalidAction, id)
	}

	kind, ok := parseKind(parts[2])
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown kind %q", common.ErrInvalidAction, parts[2])
	}

	a := Action{Kind: kind, Subject: parts[3]}
	if a.Subject == "" {
		return Action{}, fmt.Errorf("%w: empty subject in %q", common.ErrInvalidAction, id)
	}

	if !kind.Paged() {
		if len(parts) != 4 {
			return Action{}, fmt.Errorf("%w: %q", common.ErrInvalidAction, id)
		}
		return a, nil
	}

	if len(parts) != 5 {
		return Action{}, fmt.Errorf("%w: %s needs a page: %q", common.ErrInvalidAction, kind, id)
	}
	page, err := strconv.Atoi(parts[4])
	if err != nil || page < 1 || strconv.Itoa(page) != parts[4] {
		return Action{}, fmt.Errorf("%w: bad page in %q", common.ErrInvalidAction, id)
	}
	a.Page = page
	return a, nil
}
