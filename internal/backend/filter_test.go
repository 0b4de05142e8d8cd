package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/fakepb"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "'abc'"},
		{"", "''"},
		{"it's", `'it\'s'`},
		{`back\slash`, `'back\\slash'`},
		{`\'`, `'\\\''`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.in), tt.in)
	}
}

func TestEqAnd(t *testing.T) {
	assert.Equal(t, "(id='x' && discord_user_id='42')", And(Eq("id", "x"), Eq("discord_user_id", "42")))
	assert.Equal(t, "(discord_user_id='42')", And(Eq("discord_user_id", "42")))
}

// Quoted values stay a single literal: the body between the outer quotes
// contains no unescaped quote.
func TestQuote_NeverTerminatesEarly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.String().Draw(t, "value")
		q := Quote(v)

		require.True(t, strings.HasPrefix(q, "'") && strings.HasSuffix(q, "'"))
		inner := q[1 : len(q)-1]
		for i := 0; i < len(inner); i++ {
			switch inner[i] {
			case '\\':
				i++
			case '\'':
				t.Fatalf("unescaped quote at %d in %q", i, q)
			}
		}
	})
}

func TestFilter_InjectionAgainstBackend(t *testing.T) {
	pb := fakepb.New("a", "b")
	defer pb.Close()

	pb.Insert("notes", map[string]string{"discord_user_id": "victim", "title": "t", "content": "c"})

	c := NewClient(pb.URL, time.Second, logging.Nop()).WithTokens(staticToken(pb.IssueToken()))

	for _, hostile := range []string{
		"x' || discord_user_id='victim",
		`x\' && discord_user_id='victim`,
		"victim' || '1'='1",
	} {
		var out struct {
			TotalItems int `json:"totalItems"`
		}
		status, err := c.Do(context.Background(), Request{
			Method: http.MethodGet,
			Path:   "/api/collections/notes/records",
			Query:  url.Values{"filter": {And(Eq("discord_user_id", hostile))}},
		}, &out)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, status, hostile)
		assert.Zero(t, out.TotalItems, hostile)
	}
}
