package servers

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dmitrijs2005/knaughts/internal/backend"
	"github.com/dmitrijs2005/knaughts/internal/fakepb"
	"github.com/dmitrijs2005/knaughts/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) CurrentToken() string { return string(s) }

func newRegistry(t *testing.T) (*Registry, *fakepb.Server, *bytes.Buffer) {
	t.Helper()
	pb := fakepb.New("a", "b")
	t.Cleanup(pb.Close)

	var buf bytes.Buffer
	log, err := logging.New(logging.FormatText, false, &buf)
	require.NoError(t, err)

	client := backend.NewClient(pb.URL, time.Second, logging.Nop()).WithTokens(staticToken(pb.IssueToken()))
	return NewRegistry(client, 2*time.Second, log, WithRetry(2, time.Millisecond)), pb, &buf
}

// membership reads back the stored flag and the number of records for
// guildID.
func membership(t *testing.T, pb *fakepb.Server, guildID string) (bool, int) {
	t.Helper()

	c := backend.NewClient(pb.URL, time.Second, logging.Nop()).WithTokens(staticToken(pb.IssueToken()))
	var out struct {
		Items []struct {
			BotInServer bool `json:"bot_in_server"`
		} `json:"items"`
	}
	status, err := c.Do(context.Background(), backend.Request{
		Method: http.MethodGet,
		Path:   recordsPath,
		Query:  url.Values{"filter": {backend.Eq("guild_id", guildID)}},
	}, &out)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	if len(out.Items) == 0 {
		return false, 0
	}
	return out.Items[0].BotInServer, len(out.Items)
}

func TestRegistry_JoinCreates(t *testing.T) {
	r, pb, _ := newRegistry(t)

	r.RecordJoin("g1")
	r.Wait()

	in, n := membership(t, pb, "g1")
	assert.Equal(t, 1, n)
	assert.True(t, in)
}

func TestRegistry_RejoinActivatesExisting(t *testing.T) {
	r, pb, _ := newRegistry(t)

	r.RecordJoin("g1")
	r.Wait()
	r.RecordLeave("g1")
	r.Wait()

	in, n := membership(t, pb, "g1")
	require.Equal(t, 1, n)
	assert.False(t, in)

	r.RecordJoin("g1")
	r.Wait()

	in, n = membership(t, pb, "g1")
	assert.Equal(t, 1, n, "no duplicate record")
	assert.True(t, in)
	assert.Len(t, pb.RequestsTo(fakepb.ServersCreate), 2)
	assert.Len(t, pb.RequestsTo(fakepb.ServersUpdate), 2)
}

func TestRegistry_ReturnsImmediately(t *testing.T) {
	r, pb, _ := newRegistry(t)
	pb.SetDelay(200 * time.Millisecond)

	start := time.Now()
	r.RecordJoin("slow")
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	r.Wait()
	_, n := membership(t, pb, "slow")
	assert.Equal(t, 1, n)
}

func TestRegistry_RetriesTransportFailures(t *testing.T) {
	r, pb, log := newRegistry(t)
	pb.Fail(fakepb.ServersCreate, fakepb.StatusDropConnection, 2)

	r.RecordJoin("flaky")
	r.Wait()

	in, n := membership(t, pb, "flaky")
	assert.Equal(t, 1, n)
	assert.True(t, in)
	assert.Len(t, pb.RequestsTo(fakepb.ServersCreate), 3)
	assert.Contains(t, log.String(), "server membership updated")
}

func TestRegistry_FailuresAreOnlyLogged(t *testing.T) {
	r, pb, log := newRegistry(t)

	t.Run("backend rejection is not retried", func(t *testing.T) {
		pb.Fail(fakepb.ServersCreate, http.StatusInternalServerError, 0)
		defer pb.Reset()

		r.RecordJoin("g-err")
		r.Wait()

		assert.Len(t, pb.RequestsTo(fakepb.ServersCreate), 1)
		assert.Contains(t, log.String(), "server membership update failed")
	})

	t.Run("leave of unknown guild", func(t *testing.T) {
		log.Reset()
		r.RecordLeave("never-joined")
		r.Wait()

		assert.Contains(t, log.String(), "server membership update failed")
		assert.Empty(t, pb.RequestsTo(fakepb.ServersUpdate))
	})

	t.Run("transport retries exhausted", func(t *testing.T) {
		log.Reset()
		pb.Fail(fakepb.ServersCreate, fakepb.StatusDropConnection, 0)
		defer pb.Reset()

		r.RecordJoin("down")
		r.Wait()

		assert.Contains(t, log.String(), "server membership update failed")
	})
}
