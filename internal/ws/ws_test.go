package ws

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/shade/internal/client"
	"github.com/jmylchreest/shade/internal/host"
	"github.com/jmylchreest/shade/internal/wire"
)

func dialTestServer(t *testing.T, attach func(wire.Channel)) *Conn {
	t.Helper()

	srv := NewServer("", attach, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConn_RoundTrip(t *testing.T) {
	// The server echoes every frame back with an "echo:" prefixed op.
	conn := dialTestServer(t, func(ch wire.Channel) {
		ch.Bind(func(msg wire.Message) {
			ch.Send("echo:"+msg.Op, msg.Args...)
		})
	})

	got := make(chan wire.Message, 1)
	conn.Bind(func(msg wire.Message) { got <- msg })

	require.NoError(t, conn.Send("ping", uint64(7), "dark"))

	select {
	case msg := <-got:
		assert.Equal(t, "echo:ping", msg.Op)
		id, ok := wire.Uint64(msg.Arg(0))
		require.True(t, ok, "ids survive the JSON round-trip")
		assert.Equal(t, uint64(7), id)
		name, _ := wire.String(msg.Arg(1))
		assert.Equal(t, "dark", name)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for echo")
	}
}

func TestConn_SendAfterClose(t *testing.T) {
	conn := dialTestServer(t, func(ch wire.Channel) {})
	require.NoError(t, conn.Close())
	assert.ErrorIs(t, conn.Send("ping"), wire.ErrChannelClosed)
}

func TestConn_StructPayloadSurvives(t *testing.T) {
	conn := dialTestServer(t, func(ch wire.Channel) {
		ch.Bind(func(msg wire.Message) {
			ch.Send("reply", msg.Arg(0), wire.Outcome{Reload: true})
		})
	})

	got := make(chan wire.Message, 1)
	conn.Bind(func(msg wire.Message) { got <- msg })
	require.NoError(t, conn.Send("ask", uint64(1)))

	select {
	case msg := <-got:
		var outcome wire.Outcome
		require.NoError(t, wire.Remarshal(msg.Arg(1), &outcome))
		assert.True(t, outcome.Reload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reply")
	}
}

// A client talking to a real host service over a real socket.
func TestClientOverWebSocket(t *testing.T) {
	dir := t.TempDir()
	svc := host.NewService(dir, filepath.Join(dir, "state.toml"), "", nil)

	conn := dialTestServer(t, svc.Attach)

	c := client.New(conn, nil, nil)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	themes, err := c.ListThemes(ctx)
	require.NoError(t, err)

	names := make([]string, 0, len(themes))
	for _, info := range themes {
		names = append(names, info.Name)
	}
	assert.Contains(t, names, "default")
	assert.Contains(t, names, "dark")

	require.NoError(t, c.Activate(ctx, "high-contrast"))

	info, err := c.ActiveThemeInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "high-contrast", info.Name)
	assert.True(t, info.Restart)
}
