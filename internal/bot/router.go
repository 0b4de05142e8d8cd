package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/dmitrijs2005/knaughts/internal/notes"
	"github.com/dmitrijs2005/knaughts/internal/pagination"
)

type Router struct {
	repo      notes.Repository
	servers   Membership
	out       Responder
	log       logging.Logger
	sessions  *pagination.Store
	namespace string
	timeout   time.Duration
	images    Images
}

type Option func(*Router)

// WithNamespace sets the prefix of button ids owned by this router.
func WithNamespace(ns string) Option {
	return func(r *Router) { r.namespace = ns }
}

// WithSessionTimeout sets how long a listing stays interactive.
func WithSessionTimeout(d time.Duration) Option {
	return func(r *Router) { r.timeout = d }
}

func WithImages(img Images) Option {
	return func(r *Router) { r.images = img }
}

func NewRouter(repo notes.Repository, servers Membership, out Responder, log logging.Logger, opts ...Option) *Router {
	r := &Router{
		repo:      repo,
		servers:   servers,
		out:       out,
		log:       log,
		sessions:  pagination.NewStore(),
		namespace: "knaughts",
		timeout:   pagination.DefaultTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Close expires every open listing without notifying users.
func (r *Router) Close() {
	r.sessions.CloseAll()
}

// HandleCommand runs a slash command.
func (r *Router) HandleCommand(ctx context.Context, c Command) error {
	switch c.Name {
	case CommandNote:
		return r.out.ShowModal(ctx, c.UserID, createModal())
	case CommandNotes:
		if id, ok := c.Options[OptionID]; ok && id != "" {
			return r.showNote(ctx, c.UserID, id)
		}
		return r.openList(ctx, c.UserID, c.UserName)
	case CommandAbout:
		return r.out.ShowMessage(ctx, c.UserID, r.message(MessageAbout))
	default:
		return fmt.Errorf("%w: unknown command %q", common.ErrInvalidAction, c.Name)
	}
}

func (r *Router) reply(ctx context.Context, userID string, kind MessageKind) error {
	return r.out.ShowMessage(ctx, userID, r.message(kind))
}

func (r *Router) showNote(ctx context.Context, userID, noteID string) error {
	if len(noteID) != notes.IDLength {
		return r.reply(ctx, userID, MessageNotFound)
	}

	n, err := r.repo.Get(ctx, noteID, userID)
	if err != nil {
		r.log.Warn(ctx, "get note failed", "user", userID, "note", noteID, "error", err)
		return r.reply(ctx, userID, readFailure(err))
	}
	return r.out.ShowNote(ctx, userID, r.noteView(n))
}

func (r *Router) openList(ctx context.Context, userID, userName string) error {
	fetch := func(ctx context.Context, page int) (notes.Page, error) {
		return r.repo.List(ctx, userID, page)
	}

	sess, err := pagination.Open(ctx, userID, fetch, r.timeout)
	if err != nil {
		if !errors.Is(err, common.ErrEmptyList) {
			r.log.Warn(ctx, "list notes failed", "user", userID, "error", err)
		}
		return r.reply(ctx, userID, readFailure(err))
	}

	msgID, err := r.out.ShowNotesList(ctx, userID, r.listView(userName, userID, sess.Snapshot().Page))
	if err != nil {
		sess.Close()
		return err
	}

	r.sessions.Put(msgID, sess)
	sess.Start(func() {
		r.sessions.Remove(msgID, sess)
		ctx := context.Background()
		if err := r.out.ExpireList(ctx, msgID, r.message(MessageTimedOut)); err != nil {
			r.log.Warn(ctx, "expire listing failed", "message", msgID, "error", err)
		}
		r.log.Debug(ctx, "listing expired", "message", msgID, "user", userID)
	})
	return nil
}

// HandleButton runs a button click. Clicks that do not belong to the
// clicking user, or that arrive for a listing that is gone, produce no
// reply and return an error matching common.ErrAuthorization or
// common.ErrSessionExpired.
func (r *Router) HandleButton(ctx context.Context, b ButtonClick) error {
	a, err := pagination.Decode(r.namespace, b.CustomID)
	if err != nil {
		return err
	}

	switch a.Kind {
	case pagination.KindNext, pagination.KindPrev:
		if a.Subject != b.UserID {
			return r.reject(ctx, b, a)
		}
		return r.turnPage(ctx, b, a)
	case pagination.KindView:
		return r.viewFromList(ctx, b, a.Subject)
	case pagination.KindEdit:
		n, err := r.repo.Get(ctx, a.Subject, b.UserID)
		if err != nil {
			r.log.Warn(ctx, "get note for edit failed", "user", b.UserID, "note", a.Subject, "error", err)
			return r.reply(ctx, b.UserID, writeFailure(err, MessageEditFailed))
		}
		return r.out.ShowModal(ctx, b.UserID, editModal(n))
	case pagination.KindDelete:
		if !r.repo.Delete(ctx, a.Subject, b.UserID) {
			return r.reply(ctx, b.UserID, MessageDeleteFailed)
		}
		return r.reply(ctx, b.UserID, MessageNoteDeleted)
	}
	return fmt.Errorf("%w: %v", common.ErrInvalidAction, a.Kind)
}

func (r *Router) reject(ctx context.Context, b ButtonClick, a pagination.Action) error {
	r.log.Debug(ctx, "dropped click from non-owner", "user", b.UserID, "kind", a.Kind.String(), "message", b.MessageID)
	return common.ErrAuthorization
}

// turnPage moves the listing one page. The page in the button id is the page
// the listing showed when the button was rendered; a click from an older
// render is stale and ignored.
func (r *Router) turnPage(ctx context.Context, b ButtonClick, a pagination.Action) error {
	sess, ok := r.sessions.Get(b.MessageID)
	if !ok {
		return common.ErrSessionExpired
	}
	if sess.Owner() != b.UserID {
		return r.reject(ctx, b, a)
	}

	snap := sess.Snapshot()
	if snap.State != pagination.Active {
		return common.ErrSessionExpired
	}
	if snap.Page.CurrentPage != a.Page {
		r.log.Debug(ctx, "dropped stale page click", "message", b.MessageID, "shown", snap.Page.CurrentPage, "clicked", a.Page)
		return nil
	}

	if a.Kind == pagination.KindNext {
		snap, err := sess.Next(ctx)
		return r.afterTurn(ctx, b, snap, err)
	}
	snap, err := sess.Prev(ctx)
	return r.afterTurn(ctx, b, snap, err)
}

func (r *Router) afterTurn(ctx context.Context, b ButtonClick, snap pagination.Snapshot, err error) error {
	switch {
	case errors.Is(err, common.ErrSessionExpired):
		return err
	case err != nil:
		r.log.Warn(ctx, "turn page failed", "user", b.UserID, "error", err)
		return r.reply(ctx, b.UserID, readFailure(err))
	}
	return r.out.EditList(ctx, b.MessageID, r.listView(b.UserName, snap.Owner, snap.Page))
}

// viewFromList leaves the listing for a single note.
func (r *Router) viewFromList(ctx context.Context, b ButtonClick, noteID string) error {
	sess, ok := r.sessions.Get(b.MessageID)
	if !ok {
		return common.ErrSessionExpired
	}
	if sess.Owner() != b.UserID {
		r.log.Debug(ctx, "dropped click from non-owner", "user", b.UserID, "kind", pagination.KindView.String(), "message", b.MessageID)
		return common.ErrAuthorization
	}
	if !sess.Active() {
		return common.ErrSessionExpired
	}

	n, err := r.repo.Get(ctx, noteID, b.UserID)
	if err != nil {
		r.log.Warn(ctx, "get note failed", "user", b.UserID, "note", noteID, "error", err)
		return r.reply(ctx, b.UserID, readFailure(err))
	}

	if !sess.Close() {
		return common.ErrSessionExpired
	}
	r.sessions.Remove(b.MessageID, sess)
	return r.out.ShowNote(ctx, b.UserID, r.noteView(n))
}

// HandleModal runs a modal submission.
func (r *Router) HandleModal(ctx context.Context, m ModalSubmit) error {
	title, content := m.Values[InputTitle], m.Values[InputContent]

	switch {
	case m.ModalID == ModalCreate:
		id, err := r.repo.Create(ctx, m.UserID, title, content)
		if err != nil {
			r.log.Warn(ctx, "create note failed", "user", m.UserID, "error", err)
			return r.reply(ctx, m.UserID, writeFailure(err, MessageCreateFailed))
		}
		return r.out.ShowMessage(ctx, m.UserID, r.created(id))

	case strings.HasPrefix(m.ModalID, ModalEditPrefix):
		noteID := strings.TrimPrefix(m.ModalID, ModalEditPrefix)
		n, err := r.repo.Update(ctx, m.UserID, noteID, title, content)
		if err != nil {
			r.log.Warn(ctx, "update note failed", "user", m.UserID, "note", noteID, "error", err)
			return r.reply(ctx, m.UserID, writeFailure(err, MessageEditFailed))
		}
		return r.out.ShowNote(ctx, m.UserID, r.noteView(n))
	}
	return fmt.Errorf("%w: unknown modal %q", common.ErrInvalidAction, m.ModalID)
}

// HandleGuild forwards a membership change to the server registry.
func (r *Router) HandleGuild(ctx context.Context, e GuildEvent) {
	r.log.Info(ctx, "guild membership changed", "guild", e.GuildID, "joined", e.Joined)
	if e.Joined {
		r.servers.RecordJoin(e.GuildID)
		return
	}
	r.servers.RecordLeave(e.GuildID)
}
