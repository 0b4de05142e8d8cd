package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/knaughts/internal/bot"
	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/google/uuid"
)

// Handler is the part of the bot the console drives; *bot.Router satisfies it.
type Handler interface {
	HandleCommand(ctx context.Context, c bot.Command) error
	HandleButton(ctx context.Context, b bot.ButtonClick) error
	HandleModal(ctx context.Context, m bot.ModalSubmit) error
	HandleGuild(ctx context.Context, e bot.GuildEvent)
}

const helpText = "Commands: /note, /notes [id], /about, click <button-id>, submit <title> | <content>, user <id> [name], join <guild>, leave <guild>, exit"

// Run reads lines from in until EOF, "exit" or ctx cancellation.
func (c *Console) Run(ctx context.Context, in io.Reader, h Handler, log logging.Logger) error {
	lines := make(chan string)
	done := make(chan error, 1)

	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		done <- sc.Err()
	}()

	for {
		c.mu.Lock()
		c.printf("knaughts (%s)> ", c.userID)
		c.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			return err
		case line := <-lines:
			if !c.exec(ctx, line, h, log) {
				return nil
			}
		}
	}
}

// exec runs one line and reports whether the loop should continue.
func (c *Console) exec(ctx context.Context, line string, h Handler, log logging.Logger) bool {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	ctx = logging.WithInteraction(ctx, uuid.NewString())
	rest = strings.TrimSpace(rest)
	userID, userName := c.identity()

	var err error
	switch cmd {
	case "":
		return true

	case "/note":
		err = h.HandleCommand(ctx, bot.Command{Name: bot.CommandNote, UserID: userID, UserName: userName})

	case "/notes":
		var opts map[string]string
		if rest != "" {
			opts = map[string]string{bot.OptionID: rest}
		}
		err = h.HandleCommand(ctx, bot.Command{Name: bot.CommandNotes, UserID: userID, UserName: userName, Options: opts})

	case "/about":
		err = h.HandleCommand(ctx, bot.Command{Name: bot.CommandAbout, UserID: userID, UserName: userName})

	case "click":
		err = h.HandleButton(ctx, bot.ButtonClick{
			MessageID: c.messageFor(rest),
			UserID:    userID,
			UserName:  userName,
			CustomID:  rest,
		})

	case "submit":
		m, ok := c.takeModal()
		if !ok {
			c.say("Nothing to submit.")
			return true
		}
		title, content, ok := parseSubmit(rest)
		if !ok {
			c.say("Usage: submit <title> | <content>")
			c.mu.Lock()
			c.modal = &m
			c.mu.Unlock()
			return true
		}
		err = h.HandleModal(ctx, bot.ModalSubmit{
			ModalID: m.ID,
			UserID:  userID,
			Values:  map[string]string{bot.InputTitle: title, bot.InputContent: content},
		})

	case "user":
		id, name, _ := strings.Cut(rest, " ")
		if id == "" {
			c.say("Usage: user <id> [name]")
			return true
		}
		if name == "" {
			name = id
		}
		c.setIdentity(id, strings.TrimSpace(name))

	case "join", "leave":
		if rest == "" {
			c.say("Usage: " + cmd + " <guild>")
			return true
		}
		h.HandleGuild(ctx, bot.GuildEvent{GuildID: rest, Joined: cmd == "join"})

	case "help":
		c.say(helpText)

	case "exit", "quit":
		c.say("Bye!")
		return false

	default:
		c.say("Unknown command: " + cmd)
	}

	switch {
	case err == nil:
	case errors.Is(err, common.ErrAuthorization), errors.Is(err, common.ErrSessionExpired):
		log.Debug(ctx, "interaction dropped", "line", cmd, "error", err)
	case errors.Is(err, common.ErrInvalidAction):
		c.say("Unknown button or form.")
	default:
		log.Error(ctx, "interaction failed", "line", cmd, "error", err)
	}
	return true
}

func (c *Console) say(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.println(s)
}
