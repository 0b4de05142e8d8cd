package console

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/backend"
	"github.com/dmitrijs2005/knaughts/internal/bot"
	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/cryptox"
	"github.com/dmitrijs2005/knaughts/internal/fakepb"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/dmitrijs2005/knaughts/internal/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	commands []bot.Command
	clicks   []bot.ButtonClick
	modals   []bot.ModalSubmit
	guilds   []bot.GuildEvent
	err      error
}

func (f *fakeHandler) HandleCommand(_ context.Context, c bot.Command) error {
	f.commands = append(f.commands, c)
	return f.err
}

func (f *fakeHandler) HandleButton(_ context.Context, b bot.ButtonClick) error {
	f.clicks = append(f.clicks, b)
	return f.err
}

func (f *fakeHandler) HandleModal(_ context.Context, m bot.ModalSubmit) error {
	f.modals = append(f.modals, m)
	return f.err
}

func (f *fakeHandler) HandleGuild(_ context.Context, e bot.GuildEvent) {
	f.guilds = append(f.guilds, e)
}

func run(t *testing.T, c *Console, h Handler, script ...string) {
	t.Helper()
	in := strings.NewReader(strings.Join(script, "\n"))
	require.NoError(t, c.Run(context.Background(), in, h, logging.Nop()))
}

func TestRun_Dispatch(t *testing.T) {
	var out bytes.Buffer
	c := New(&out, "1001", "ana")
	h := &fakeHandler{}

	run(t, c, h,
		"/about",
		"/notes",
		"/notes abcdefghij12345",
		"",
		"user 2002 bob",
		"/note",
		"join g1",
		"leave g1",
		"leave",
		"foobar",
		"help",
		"exit",
		"/about",
	)

	require.Len(t, h.commands, 4)
	assert.Equal(t, bot.Command{Name: bot.CommandAbout, UserID: "1001", UserName: "ana"}, h.commands[0])
	assert.Nil(t, h.commands[1].Options)
	assert.Equal(t, "abcdefghij12345", h.commands[2].Options[bot.OptionID])
	assert.Equal(t, bot.Command{Name: bot.CommandNote, UserID: "2002", UserName: "bob"}, h.commands[3])

	assert.Equal(t, []bot.GuildEvent{{GuildID: "g1", Joined: true}, {GuildID: "g1"}}, h.guilds)
	assert.Contains(t, out.String(), "Usage: leave <guild>")
	assert.Contains(t, out.String(), "Unknown command: foobar")
	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRun_Submit(t *testing.T) {
	var out bytes.Buffer
	c := New(&out, "1001", "ana")
	h := &fakeHandler{}

	run(t, c, h, "submit a | b")
	assert.Empty(t, h.modals)
	assert.Contains(t, out.String(), "Nothing to submit.")

	require.NoError(t, c.ShowModal(context.Background(), "1001", bot.Modal{ID: bot.ModalCreate, Title: "Create a note"}))
	run(t, c, h, "submit no bar", "submit Groceries | milk | eggs", "submit again | x")

	require.Len(t, h.modals, 1)
	assert.Equal(t, bot.ModalSubmit{
		ModalID: bot.ModalCreate,
		UserID:  "1001",
		Values:  map[string]string{bot.InputTitle: "Groceries", bot.InputContent: "milk | eggs"},
	}, h.modals[0])
	assert.Contains(t, out.String(), "Usage: submit <title> | <content>")
}

func TestRun_ClickCarriesMessageID(t *testing.T) {
	var out bytes.Buffer
	c := New(&out, "1001", "ana")
	h := &fakeHandler{err: common.ErrSessionExpired}

	msgID, err := c.ShowNotesList(context.Background(), "1001", bot.ListView{
		Title:   "list",
		Buttons: []bot.Button{{ID: "knaughts.notes.next.1001.1", Label: "➡️"}},
	})
	require.NoError(t, err)

	run(t, c, h, "click knaughts.notes.next.1001.1", "click unknown")
	require.Len(t, h.clicks, 2)
	assert.Equal(t, msgID, h.clicks[0].MessageID)
	assert.Empty(t, h.clicks[1].MessageID)
}

func TestRun_InvalidActionReported(t *testing.T) {
	var out bytes.Buffer
	c := New(&out, "1001", "ana")
	h := &fakeHandler{err: common.ErrInvalidAction}

	run(t, c, h, "click x")
	assert.Contains(t, out.String(), "Unknown button or form.")
}

func TestRun_ContextCancel(t *testing.T) {
	c := New(&bytes.Buffer{}, "1001", "ana")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()

	err := c.Run(ctx, r, &fakeHandler{}, logging.Nop())
	assert.NoError(t, err)
}

func TestConsole_ListLifecycle(t *testing.T) {
	var out bytes.Buffer
	c := New(&out, "1001", "ana")
	ctx := context.Background()

	v := bot.ListView{
		Title:   "`ana`'s Notes",
		Items:   []bot.ListItem{{Name: "1. a ⎯ `id`", Value: "> b"}},
		Buttons: []bot.Button{{ID: "view-1", Label: "#1"}, {ID: "next-1", Label: "➡️"}},
		Footer:  "Page 1 of 2",
	}
	msgID, err := c.ShowNotesList(ctx, "1001", v)
	require.NoError(t, err)
	assert.Equal(t, msgID, c.messageFor("next-1"))
	assert.Contains(t, out.String(), "[➡️] click next-1")
	assert.Contains(t, out.String(), "Page 1 of 2")

	v.Buttons = []bot.Button{{ID: "prev-2", Label: "⬅️"}}
	require.NoError(t, c.EditList(ctx, msgID, v))
	assert.Empty(t, c.messageFor("next-1"))
	assert.Equal(t, msgID, c.messageFor("prev-2"))

	require.NoError(t, c.ExpireList(ctx, msgID, bot.Message{Title: "⏰ Timeout", Text: "again"}))
	assert.Empty(t, c.messageFor("prev-2"))
	assert.Contains(t, out.String(), "== ⏰ Timeout ==")
}

func TestParseSubmit(t *testing.T) {
	title, content, ok := parseSubmit(" a title |  body ")
	require.True(t, ok)
	assert.Equal(t, "a title", title)
	assert.Equal(t, "body", content)

	_, _, ok = parseSubmit("no separator")
	assert.False(t, ok)
}

func TestRun_EndToEnd(t *testing.T) {
	pb := fakepb.New("admin@example.com", "pw")
	t.Cleanup(pb.Close)

	raw := backend.NewClient(pb.URL, time.Second, logging.Nop())
	auth := backend.NewAuthSession(raw, backend.AuthConfig{
		Collection:      fakepb.AdminCollection,
		Identity:        "admin@example.com",
		Password:        "pw",
		RefreshInterval: time.Minute,
	}, logging.Nop())
	require.NoError(t, auth.Initialize(context.Background()))

	box, err := cryptox.NewBox(common.GenerateRandByteArray(cryptox.KeySize))
	require.NoError(t, err)
	repo := notes.NewRepository(raw.WithTokens(auth), box, logging.Nop())

	var out bytes.Buffer
	c := New(&out, "1001", "ana")
	router := bot.NewRouter(repo, nopMembership{}, c, logging.Nop())
	t.Cleanup(router.Close)

	run(t, c, router, "/note", "submit Groceries | milk and eggs", "/notes", "exit")

	text := out.String()
	assert.Contains(t, text, "== Create a note ==")
	assert.Contains(t, text, "Your note has been created! Note ID: `")
	assert.Contains(t, text, "== `ana`'s Notes ==")
	assert.Contains(t, text, "Groceries")
	assert.Contains(t, text, "> milk and eggs")
	assert.Equal(t, 1, pb.Count("notes"))
}

type nopMembership struct{}

func (nopMembership) RecordJoin(string)  {}
func (nopMembership) RecordLeave(string) {}
