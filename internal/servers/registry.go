// Package servers tracks which guilds the bot is a member of.
//
// Updates are fire-and-forget: RecordJoin and RecordLeave return at once and
// the backend work runs in a detached goroutine whose outcome is only
// logged.
package servers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/backend"
	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/sethvargo/go-retry"
)

const recordsPath = "/api/collections/servers/records"

// Doer sends backend requests; *backend.Client implements it.
type Doer interface {
	Do(ctx context.Context, req backend.Request, out any) (int, error)
}

type Registry struct {
	client  Doer
	log     logging.Logger
	timeout time.Duration

	retries   uint64
	retryBase time.Duration

	wg sync.WaitGroup
}

type Option func(*Registry)

// WithRetry sets how many times a transport failure is retried and the
// initial backoff.
func WithRetry(retries uint64, base time.Duration) Option {
	return func(r *Registry) {
		r.retries = retries
		r.retryBase = base
	}
}

// NewRegistry returns a registry whose background tasks each get timeout to
// finish, retries included.
func NewRegistry(client Doer, timeout time.Duration, log logging.Logger, opts ...Option) *Registry {
	r := &Registry{
		client:    client,
		log:       log,
		timeout:   timeout,
		retries:   2,
		retryBase: 200 * time.Millisecond,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// RecordJoin marks guildID as joined.
func (r *Registry) RecordJoin(guildID string) {
	r.spawn("join", guildID, r.join)
}

// RecordLeave marks guildID as left.
func (r *Registry) RecordLeave(guildID string) {
	r.spawn("leave", guildID, r.leave)
}

// Wait blocks until all in-flight tasks have finished.
func (r *Registry) Wait() {
	r.wg.Wait()
}

func (r *Registry) spawn(op, guildID string, fn func(context.Context, string) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		b := retry.WithMaxRetries(r.retries, retry.NewExponential(r.retryBase))
		err := retry.Do(ctx, b, func(ctx context.Context) error {
			if err := fn(ctx, guildID); err != nil {
				if errors.Is(err, common.ErrTransport) {
					return retry.RetryableError(err)
				}
				return err
			}
			return nil
		})
		if err != nil {
			r.log.Error(ctx, "server membership update failed", "op", op, "guild", guildID, "error", err)
			return
		}
		r.log.Info(ctx, "server membership updated", "op", op, "guild", guildID)
	}()
}

type serverRecord struct {
	ID string `json:"id"`
}

type listResponse struct {
	Items []serverRecord `json:"items"`
}

func (r *Registry) join(ctx context.Context, guildID string) error {
	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPost,
		Path:   recordsPath,
		Parts:  map[string]string{"guild_id": guildID, "bot_in_server": "true"},
	}, nil)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	if status == http.StatusBadRequest {
		// already known from an earlier join
		return r.setMembership(ctx, guildID, true)
	}
	return backend.Check("create server", status)
}

func (r *Registry) leave(ctx context.Context, guildID string) error {
	return r.setMembership(ctx, guildID, false)
}

func (r *Registry) setMembership(ctx context.Context, guildID string, in bool) error {
	id, err := r.lookup(ctx, guildID)
	if err != nil {
		return err
	}

	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodPatch,
		Path:   recordsPath + "/" + id,
		Parts:  map[string]string{"bot_in_server": strconv.FormatBool(in)},
	}, nil)
	if err != nil {
		return fmt.Errorf("update server: %w", err)
	}
	return backend.Check("update server", status)
}

func (r *Registry) lookup(ctx context.Context, guildID string) (string, error) {
	var out listResponse
	status, err := r.client.Do(ctx, backend.Request{
		Method: http.MethodGet,
		Path:   recordsPath,
		Query: url.Values{
			"filter":  {backend.And(backend.Eq("guild_id", guildID))},
			"perPage": {"1"},
			"fields":  {"id"},
		},
	}, &out)
	if err != nil {
		return "", fmt.Errorf("find server: %w", err)
	}
	if err := backend.Check("find server", status); err != nil {
		return "", err
	}
	if len(out.Items) == 0 {
		return "", fmt.Errorf("find server %s: %w", guildID, common.ErrNotFound)
	}
	return out.Items[0].ID, nil
}
