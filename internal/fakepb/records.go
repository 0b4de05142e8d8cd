package fakepb

import (
	"slices"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/common"
)

// TimeLayout is the timestamp format the backend uses for created/updated.
const TimeLayout = "2006-01-02 15:04:05.000Z"

type record struct {
	id      string
	seq     int
	created time.Time
	updated time.Time
	fields  map[string]string
}

type collection struct {
	name     string
	fields   []string
	required []string
	unique   []string
	bools    []string
	records  []*record
}

func newCollections() map[string]*collection {
	return map[string]*collection{
		"notes": {
			name:     "notes",
			fields:   []string{"discord_user_id", "title", "content"},
			required: []string{"discord_user_id", "title", "content"},
		},
		"servers": {
			name:     "servers",
			fields:   []string{"guild_id", "bot_in_server"},
			required: []string{"guild_id"},
			unique:   []string{"guild_id"},
			bools:    []string{"bot_in_server"},
		},
	}
}

func (c *collection) byID(id string) *record {
	for _, r := range c.records {
		if r.id == id {
			return r
		}
	}
	return nil
}

func (c *collection) remove(id string) {
	c.records = slices.DeleteFunc(c.records, func(r *record) bool { return r.id == id })
}

// conflicts reports the first unique field that another record already holds.
func (c *collection) conflicts(self *record, fields map[string]string) (string, bool) {
	for _, u := range c.unique {
		v, ok := fields[u]
		if !ok {
			continue
		}
		for _, r := range c.records {
			if r != self && r.fields[u] == v {
				return u, true
			}
		}
	}
	return "", false
}

func (r *record) matches(conds []condition) bool {
	for _, c := range conds {
		var v string
		switch c.field {
		case "id":
			v = r.id
		default:
			v = r.fields[c.field]
		}
		if v != c.value {
			return false
		}
	}
	return true
}

func (r *record) json(c *collection, only []string) map[string]any {
	out := map[string]any{
		"id":             r.id,
		"collectionName": c.name,
		"created":        r.created.UTC().Format(TimeLayout),
		"updated":        r.updated.UTC().Format(TimeLayout),
	}
	for _, f := range c.fields {
		v := r.fields[f]
		if slices.Contains(c.bools, f) {
			out[f] = v == "true"
			continue
		}
		out[f] = v
	}
	if len(only) == 0 {
		return out
	}
	trimmed := make(map[string]any, len(only))
	for _, k := range only {
		if v, ok := out[k]; ok {
			trimmed[k] = v
		}
	}
	return trimmed
}

// newRecord must be called with s.mu held.
func (s *Server) newRecord(fields map[string]string) *record {
	s.seq++
	now := s.now()
	return &record{
		id:      mustID(),
		seq:     s.seq,
		created: now,
		updated: now,
		fields:  fields,
	}
}

func mustID() string {
	id, err := common.RandomID(15)
	if err != nil {
		panic(err)
	}
	return id
}
