package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// MaxRefreshFailures is the number of consecutive failed refreshes after
// which the session reports itself unhealthy. The token is still served.
const MaxRefreshFailures = 3

type AuthConfig struct {
	// Collection is the auth path prefix, e.g. "/api/admins".
	Collection      string
	Identity        string
	Password        string
	RefreshInterval time.Duration
}

type authResponse struct {
	Token string `json:"token"`
}

// AuthSession holds the bearer token shared by every backend call. Readers
// never block and always see a complete token; only Initialize and Refresh
// replace it.
type AuthSession struct {
	client *Client
	cfg    AuthConfig
	log    logging.Logger
	now    func() time.Time

	token    atomic.Pointer[string]
	failures atomic.Int32

	// serializes writers; readers go through token only
	mu sync.Mutex
}

func NewAuthSession(client *Client, cfg AuthConfig, log logging.Logger) *AuthSession {
	return &AuthSession{
		client: client,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// Initialize performs the password login. Any failure, including a non-200
// status, is returned wrapped in common.ErrAuth; the caller is expected to
// abort the process. The password is dropped from memory on success.
func (a *AuthSession) Initialize(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var resp authResponse
	status, err := a.client.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      a.cfg.Collection + "/auth-with-password",
		Form:      url.Values{"identity": {a.cfg.Identity}, "password": {a.cfg.Password}},
		Anonymous: true,
	}, &resp)
	if err != nil {
		return fmt.Errorf("%w: login: %w", common.ErrAuth, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: %w", common.ErrAuth, common.NewStatusError("login", status))
	}
	if resp.Token == "" {
		return fmt.Errorf("%w: login: empty token", common.ErrAuth)
	}

	a.store(resp.Token)
	a.cfg.Password = ""
	a.log.Info(ctx, "logged in", "identity", a.cfg.Identity)
	a.inspect(ctx, resp.Token)
	return nil
}

// Refresh exchanges the current token for a new one. On failure the old
// token stays in place and the failure counter grows.
func (a *AuthSession) Refresh(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.CurrentToken()
	if current == "" {
		return fmt.Errorf("%w: refresh before login", common.ErrAuth)
	}

	var resp authResponse
	status, err := a.client.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   a.cfg.Collection + "/auth-refresh",
		Bearer: current,
	}, &resp)
	if err == nil {
		err = Check("refresh", status)
	}
	if err == nil && resp.Token == "" {
		err = errors.New("refresh: empty token")
	}
	if err != nil {
		n := a.failures.Add(1)
		a.log.Warn(ctx, "token refresh failed, keeping previous token", "error", err, "consecutive_failures", n)
		return fmt.Errorf("%w: %w", common.ErrAuth, err)
	}

	a.store(resp.Token)
	a.failures.Store(0)
	a.log.Debug(ctx, "token refreshed")
	a.inspect(ctx, resp.Token)
	return nil
}

// Run refreshes the token every RefreshInterval until ctx is cancelled.
func (a *AuthSession) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_ = a.Refresh(ctx)
		}
	}
}

// CurrentToken returns the latest token, or "" before Initialize.
func (a *AuthSession) CurrentToken() string {
	if p := a.token.Load(); p != nil {
		return *p
	}
	return ""
}

// ConsecutiveFailures is the number of refreshes that failed since the last
// success.
func (a *AuthSession) ConsecutiveFailures() int {
	return int(a.failures.Load())
}

// Healthy reports whether a token is held and refreshes are not failing
// persistently.
func (a *AuthSession) Healthy() bool {
	return a.CurrentToken() != "" && a.ConsecutiveFailures() < MaxRefreshFailures
}

func (a *AuthSession) store(token string) {
	a.token.Store(&token)
}

// inspect logs when the token is due to expire. The signature is not
// checked: the backend is the authority, this is diagnostics only.
func (a *AuthSession) inspect(ctx context.Context, token string) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		a.log.Debug(ctx, "token is not a JWT, skipping expiry check")
		return
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return
	}

	ttl := exp.Sub(a.now())
	if ttl < a.cfg.RefreshInterval {
		a.log.Warn(ctx, "token expires before the next refresh", "expires_in", ttl, "refresh_interval", a.cfg.RefreshInterval)
		return
	}
	a.log.Debug(ctx, "token expiry", "expires_in", ttl)
}
