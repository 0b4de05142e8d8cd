package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/dmitrijs2005/knaughts/internal/notes"
)

// DefaultTimeout is how long a listing stays interactive after its last
// render.
const DefaultTimeout = 30 * time.Second

type State int

const (
	Active State = iota + 1
	Expired
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Fetcher loads one page of the owner's notes.
type Fetcher func(ctx context.Context, page int) (notes.Page, error)

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	Owner     string
	State     State
	Page      notes.Page
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Session is the state behind one rendered listing message. It is owned by
// a single user; callers check Owner before driving it.
//
// Transitions fetch outside the lock. A result that arrives after the
// session expired or was closed is discarded with common.ErrSessionExpired
// and leaves the state untouched.
type Session struct {
	owner   string
	fetch   Fetcher
	timeout time.Duration

	mu        sync.Mutex
	state     State
	page      notes.Page
	createdAt time.Time
	expiresAt time.Time
	timer     *time.Timer
	gen       uint64
	onExpire  func()
}

// Open fetches the first page and returns an active session. Nothing is
// created when the fetch fails, including the common.ErrEmptyList case.
// The inactivity timer starts with Start, once the listing is on screen.
func Open(ctx context.Context, owner string, fetch Fetcher, timeout time.Duration) (*Session, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	page, err := fetch(ctx, 1)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		owner:     owner,
		fetch:     fetch,
		timeout:   timeout,
		state:     Active,
		page:      page,
		createdAt: now,
		expiresAt: now.Add(timeout),
	}, nil
}

func (s *Session) Owner() string { return s.owner }

// Start arms the inactivity timer. onExpire runs once, on its own
// goroutine, if the timer fires while the session is still active.
func (s *Session) Start(onExpire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Active {
		return
	}
	s.onExpire = onExpire
	s.rearm()
}

// rearm must be called with s.mu held.
func (s *Session) rearm() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.expiresAt = time.Now().Add(s.timeout)
	s.timer = time.AfterFunc(s.timeout, func() { s.expire(gen) })
}

func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	if s.state != Active || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.state = Expired
	cb := s.onExpire
	s.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Active() bool {
	return s.State() == Active
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Owner:     s.owner,
		State:     s.state,
		Page:      s.page,
		CreatedAt: s.createdAt,
		ExpiresAt: s.expiresAt,
	}
}

func (s *Session) Next(ctx context.Context) (Snapshot, error) {
	return s.step(ctx, +1)
}

func (s *Session) Prev(ctx context.Context) (Snapshot, error) {
	return s.step(ctx, -1)
}

func (s *Session) step(ctx context.Context, delta int) (Snapshot, error) {
	s.mu.Lock()
	target := s.page.CurrentPage + delta
	s.mu.Unlock()
	return s.GoTo(ctx, target)
}

// GoTo re-fetches page, clamped to [1, TotalPages], and re-renders.
func (s *Session) GoTo(ctx context.Context, page int) (Snapshot, error) {
	s.mu.Lock()
	if s.state != Active {
		s.mu.Unlock()
		return Snapshot{}, common.ErrSessionExpired
	}
	page = min(max(page, 1), max(s.page.TotalPages, 1))
	s.mu.Unlock()

	fetched, err := s.fetch(ctx, page)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Active {
		return Snapshot{}, fmt.Errorf("page %d arrived late: %w", page, common.ErrSessionExpired)
	}
	if err != nil {
		return Snapshot{}, err
	}

	s.page = fetched
	if s.onExpire != nil {
		s.rearm()
	}
	return Snapshot{
		Owner:     s.owner,
		State:     s.state,
		Page:      s.page,
		CreatedAt: s.createdAt,
		ExpiresAt: s.expiresAt,
	}, nil
}

// Close ends the session without firing onExpire, e.g. when the user
// navigates away from the listing. It reports whether the session was still
// active.
func (s *Session) Close() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Active {
		return false
	}
	s.state = Expired
	if s.timer != nil {
		s.timer.Stop()
	}
	return true
}
