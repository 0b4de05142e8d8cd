// Package app wires configuration, the backend session, the notes bot and
// its transports, and runs them until shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/knaughts/internal/backend"
	"github.com/dmitrijs2005/knaughts/internal/bot"
	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/config"
	"github.com/dmitrijs2005/knaughts/internal/console"
	"github.com/dmitrijs2005/knaughts/internal/cryptox"
	"github.com/dmitrijs2005/knaughts/internal/health"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/dmitrijs2005/knaughts/internal/notes"
	"github.com/dmitrijs2005/knaughts/internal/servers"
	"golang.org/x/sync/errgroup"
)

// localUser is the identity the console starts as.
const localUser = "local"

// IO are the streams the app talks through.
type IO struct {
	In  io.Reader
	Out io.Writer
	Log io.Writer
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	io      IO
	auth    *backend.AuthSession
	servers *servers.Registry
	router  *bot.Router
	console *console.Console
	health  *health.Server
}

// NewApp validates c, turns secret into the note key, logs in to the
// backend and builds every component. secret is wiped. A non-nil error
// means the bot must not start.
func NewApp(ctx context.Context, c *config.Config, secret []byte, streams IO) (*App, error) {
	defer common.WipeByteArray(secret)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(c.LogFormat, c.Debug, streams.Log)
	if err != nil {
		return nil, err
	}

	key, err := cryptox.ParseKey(secret, []byte(c.KeySalt))
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	box, err := cryptox.NewBox(key)
	common.WipeByteArray(key)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	raw := backend.NewClient(c.BaseURL, c.RequestTimeout, logging.Module(logger, "backend"))
	auth := backend.NewAuthSession(raw, backend.AuthConfig{
		Collection:      c.AuthCollection,
		Identity:        c.Identity,
		Password:        c.Password,
		RefreshInterval: c.RefreshInterval,
	}, logging.Module(logger, "auth"))
	c.Password = ""

	if err := auth.Initialize(ctx); err != nil {
		return nil, err
	}

	client := raw.WithTokens(auth)
	registry := servers.NewRegistry(client, c.RequestTimeout, logging.Module(logger, "servers"))
	repo := notes.NewRepository(client, box, logging.Module(logger, "notes"))
	con := console.New(streams.Out, localUser, localUser)

	router := bot.NewRouter(repo, registry, con, logging.Module(logger, "bot"),
		bot.WithNamespace(c.ButtonNamespace),
		bot.WithSessionTimeout(c.SessionTimeout),
		bot.WithImages(bot.Images{Logo: c.ImageLogo, Question: c.ImageQuestion, Sad: c.ImageSad}),
	)

	a := &App{
		config:  c,
		logger:  logger,
		io:      streams,
		auth:    auth,
		servers: registry,
		router:  router,
		console: con,
	}
	if c.HealthAddr != "" {
		a.health = health.NewServer(c.HealthAddr, auth, 0, logging.Module(logger, "health"))
	}
	return a, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) func() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if _, ok := <-sigs; ok {
			cancelFunc()
		}
	}()
	return func() {
		signal.Stop(sigs)
		close(sigs)
	}
}

// Run blocks until the console exits, a signal arrives, ctx is cancelled
// or a component fails. Background membership updates are allowed to
// finish before it returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	stop := app.initSignalHandler(cancelFunc)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.auth.Run(gctx)
	})

	if app.health != nil {
		g.Go(func() error {
			return app.health.Run(gctx)
		})
	}

	g.Go(func() error {
		defer cancelFunc()
		return app.console.Run(gctx, app.io.In, app.router, logging.Module(app.logger, "console"))
	})

	err := g.Wait()

	app.router.Close()
	app.servers.Wait()
	app.logger.Info(context.Background(), "Stopped")

	if s, ok := app.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
