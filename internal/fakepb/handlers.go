package fakepb

import (
	"encoding/json"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"code": status, "message": message, "data": map[string]any{}})
}

func formValues(r *http.Request) (map[string]string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(r.PostForm))
	for k, v := range r.PostForm {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out, nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Something went wrong while processing your request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if values["identity"] != s.identity || values["password"] != s.password {
		respondError(w, http.StatusBadRequest, "Failed to authenticate.")
		return
	}

	token, err := s.signToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logins++

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"admin": map[string]any{"id": s.adminID, "email": s.identity},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.verifyToken(bearer(r)); err != nil {
		respondError(w, http.StatusUnauthorized, "The request requires valid admin authorization token to be set.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.signToken()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.refreshes++

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"admin": map[string]any{"id": s.adminID, "email": s.identity},
	})
}

// lookup resolves the collection and the optional filter of a request. It
// writes the error response itself and reports false on failure.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*collection, []condition, bool) {
	c, ok := s.collections[mux.Vars(r)["collection"]]
	if !ok {
		respondError(w, http.StatusNotFound, "Missing collection context.")
		return nil, nil, false
	}

	var conds []condition
	if f := r.URL.Query().Get("filter"); f != "" {
		var err error
		if conds, err = parseFilter(f); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid filter parameters.")
			return nil, nil, false
		}
	}
	return c, conds, true
}

func fieldList(r *http.Request) []string {
	raw := r.URL.Query().Get("fields")
	if raw == "" {
		return nil
	}
	out := strings.Split(raw, ",")
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

func intParam(r *http.Request, name string, def, lo, hi int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return min(max(v, lo), hi)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, conds, ok := s.lookup(w, r)
	if !ok {
		return
	}

	matched := make([]*record, 0, len(c.records))
	for _, rec := range c.records {
		if rec.matches(conds) {
			matched = append(matched, rec)
		}
	}

	switch r.URL.Query().Get("sort") {
	case "", "created":
		slices.SortFunc(matched, func(a, b *record) int { return a.seq - b.seq })
	case "-created":
		slices.SortFunc(matched, func(a, b *record) int { return b.seq - a.seq })
	default:
		respondError(w, http.StatusBadRequest, "Invalid sort parameter.")
		return
	}

	page := intParam(r, "page", 1, 1, math.MaxInt32)
	perPage := intParam(r, "perPage", 30, 1, 500)
	total := len(matched)
	totalPages := (total + perPage - 1) / perPage

	only := fieldList(r)
	items := make([]map[string]any, 0, perPage)
	for i := (page - 1) * perPage; i < total && i < page*perPage; i++ {
		items = append(items, matched[i].json(c, only))
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"perPage":    perPage,
		"totalItems": total,
		"totalPages": totalPages,
		"items":      items,
	})
}

// accept keeps known fields and validates booleans.
func (c *collection) accept(values map[string]string) (map[string]string, bool) {
	out := make(map[string]string, len(c.fields))
	for _, f := range c.fields {
		v, ok := values[f]
		if !ok {
			continue
		}
		if slices.Contains(c.bools, f) {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, false
			}
			v = strconv.FormatBool(b)
		}
		out[f] = v
	}
	return out, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, _, ok := s.lookup(w, r)
	if !ok {
		return
	}

	fields, ok := c.accept(values)
	if !ok {
		respondError(w, http.StatusBadRequest, "Failed to create record.")
		return
	}
	for _, req := range c.required {
		if fields[req] == "" {
			respondError(w, http.StatusBadRequest, "Failed to create record.")
			return
		}
	}
	if _, dup := c.conflicts(nil, fields); dup {
		respondError(w, http.StatusBadRequest, "Failed to create record.")
		return
	}

	rec := s.newRecord(fields)
	c.records = append(c.records, rec)

	respondJSON(w, http.StatusOK, rec.json(c, fieldList(r)))
}

// target finds the record addressed by {id} that also satisfies the filter.
func (s *Server) target(w http.ResponseWriter, r *http.Request) (*collection, *record, bool) {
	c, conds, ok := s.lookup(w, r)
	if !ok {
		return nil, nil, false
	}
	rec := c.byID(mux.Vars(r)["id"])
	if rec == nil || !rec.matches(conds) {
		respondError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return nil, nil, false
	}
	return c, rec, true
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, rec, ok := s.target(w, r)
	if !ok {
		return
	}

	fields, ok := c.accept(values)
	if !ok {
		respondError(w, http.StatusBadRequest, "Failed to update record.")
		return
	}
	if _, dup := c.conflicts(rec, fields); dup {
		respondError(w, http.StatusBadRequest, "Failed to update record.")
		return
	}

	for k, v := range fields {
		rec.fields[k] = v
	}
	rec.updated = s.now()

	respondJSON(w, http.StatusOK, rec.json(c, fieldList(r)))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, rec, ok := s.target(w, r)
	if !ok {
		return
	}
	c.remove(rec.id)

	w.WriteHeader(http.StatusNoContent)
}
