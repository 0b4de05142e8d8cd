// Package fakepb is an in-memory stand-in for the record backend the bot
// talks to. It speaks the same REST dialect (admin password login, token
// refresh, records CRUD with filter/sort/paging) closely enough for the
// client packages to be exercised end to end over real HTTP, and it lets
// tests force failures per route.
package fakepb

import (
	"context"
	"maps"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/common"
	"github.com/gorilla/mux"
)

// Route names accepted by Fail.
const (
	RouteLogin   = "auth-with-password"
	RouteRefresh = "auth-refresh"

	NotesList   = "notes.list"
	NotesCreate = "notes.create"
	NotesUpdate = "notes.update"
	NotesDelete = "notes.delete"

	ServersList   = "servers.list"
	ServersCreate = "servers.create"
	ServersUpdate = "servers.update"
)

// StatusDropConnection makes Fail close the connection without a response.
// net/http transparently retries idempotent requests once on a reused
// connection, so GETs need times >= 2 (or 0) to surface the failure.
const StatusDropConnection = -1

// AdminCollection is the auth path prefix the fake serves.
const AdminCollection = "/api/admins"

// Request is what the fake saw for one call.
type Request struct {
	Route         string
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
}

type forced struct {
	status int
	times  int // <=0 means until Reset
}

type Server struct {
	*httptest.Server

	mu sync.Mutex

	identity string
	password string
	adminID  string
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time

	collections map[string]*collection
	seq         int

	forced   map[string]*forced
	delay    time.Duration
	requests []Request

	logins    int
	refreshes int
}

type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.tokenTTL = d }
}

// WithClock replaces the time source used for record timestamps and token
// validity.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New starts a fake backend accepting identity/password for admin login.
// Callers must Close it.
func New(identity, password string, opts ...Option) *Server {
	s := &Server{
		identity:    identity,
		password:    password,
		adminID:     mustID(),
		secret:      common.GenerateRandByteArray(32),
		tokenTTL:    time.Hour,
		now:         time.Now,
		collections: newCollections(),
		forced:      make(map[string]*forced),
	}
	for _, o := range opts {
		o(s)
	}

	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	router := mux.NewRouter()
	router.Use(s.middleware)

	router.HandleFunc(AdminCollection+"/auth-with-password", s.handleLogin).Methods(http.MethodPost).Name(RouteLogin)
	router.HandleFunc(AdminCollection+"/auth-refresh", s.handleRefresh).Methods(http.MethodPost).Name(RouteRefresh)

	const records = "/api/collections/{collection}/records"
	router.HandleFunc(records, s.authorized(s.handleList)).Methods(http.MethodGet).Name("list")
	router.HandleFunc(records, s.authorized(s.handleCreate)).Methods(http.MethodPost).Name("create")
	router.HandleFunc(records+"/{id}", s.authorized(s.handleUpdate)).Methods(http.MethodPatch).Name("update")
	router.HandleFunc(records+"/{id}", s.authorized(s.handleDelete)).Methods(http.MethodDelete).Name("delete")

	return router
}

func routeKey(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return ""
	}
	name := route.GetName()
	if c := mux.Vars(r)["collection"]; c != "" {
		return c + "." + name
	}
	return name
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := routeKey(r)

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Route:         key,
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-Id"),
		})
		delay := s.delay
		status := s.takeForced(key)
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		switch {
		case status == StatusDropConnection:
			if hj, ok := w.(http.Hijacker); ok {
				if conn, _, err := hj.Hijack(); err == nil {
					_ = conn.Close()
					return
				}
			}
			w.WriteHeader(http.StatusBadGateway)
		case status != 0:
			respondError(w, status, "forced failure")
		default:
			next.ServeHTTP(w, r)
		}
	})
}

// takeForced must be called with s.mu held.
func (s *Server) takeForced(key string) int {
	f, ok := s.forced[key]
	if !ok {
		return 0
	}
	if f.times > 0 {
		f.times--
		if f.times == 0 {
			delete(s.forced, key)
		}
	}
	return f.status
}

// Fail makes the next times calls to route answer with status
// (StatusDropConnection closes the connection instead). times <= 0 keeps
// failing until Reset.
func (s *Server) Fail(route string, status int, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced[route] = &forced{status: status, times: times}
}

// SetDelay delays every response by d.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Reset clears forced failures and delays. Stored records are kept.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = make(map[string]*forced)
	s.delay = 0
}

// Requests returns a copy of every request seen so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// RequestsTo returns the requests that hit route.
func (s *Server) RequestsTo(route string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Route == route {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

func (s *Server) Refreshes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}

// Record returns the stored fields of a record, as sent by the client.
func (s *Server) Record(collection, id string) (map[string]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, false
	}
	rec := c.byID(id)
	if rec == nil {
		return nil, false
	}
	return maps.Clone(rec.fields), true
}

// Count returns the number of records stored in collection.
func (s *Server) Count(collection string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[collection]; ok {
		return len(c.records)
	}
	return 0
}

// Insert stores a record without validation and returns its id. Tests use it
// to plant corrupt or foreign data.
func (s *Server) Insert(collection string, fields map[string]string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collections[collection]
	rec := s.newRecord(maps.Clone(fields))
	c.records = append(c.records, rec)
	return rec.id
}

// IssueToken mints a valid admin token without a login round trip.
func (s *Server) IssueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok, err := s.signToken()
	if err != nil {
		panic(err)
	}
	return tok
}

// Wait blocks until ctx is done or cond holds, polling every few
// milliseconds. Handy for asserting on effects of background work.
func (s *Server) Wait(ctx context.Context, cond func(*Server) bool) bool {
	t := time.NewTicker(5 * time.Millisecond)
	defer t.Stop()
	for {
		if cond(s) {
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
		}
	}
}
