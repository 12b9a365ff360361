package host

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/shade/internal/theme"
	"github.com/jmylchreest/shade/internal/wire"
)

// fakeChannel records everything the service sends back.
type fakeChannel struct {
	mu      sync.Mutex
	sent    []wire.Message
	handler func(wire.Message)
}

func (f *fakeChannel) Send(op string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, wire.Message{Op: op, Args: args})
	return nil
}

func (f *fakeChannel) Bind(handler func(wire.Message)) { f.handler = handler }
func (f *fakeChannel) Close() error                    { return nil }

func (f *fakeChannel) lastSent(t *testing.T) wire.Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func (f *fakeChannel) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestService(t *testing.T) (*Service, *fakeChannel, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewService(dir, filepath.Join(dir, "state.toml"), "", nil)
	ch := &fakeChannel{}
	svc.Attach(ch)
	return svc, ch, dir
}

func request(ch *fakeChannel, op string, args ...any) {
	ch.handler(wire.Message{Op: op, Args: args})
}

func TestService_ListThemes(t *testing.T) {
	_, ch, dir := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "solarized.css"), []byte(".shade-window {}"), 0644))

	request(ch, wire.OpListThemes, uint64(1))

	reply := ch.lastSent(t)
	assert.Equal(t, wire.EvThemesList, reply.Op)
	id, ok := wire.Uint64(reply.Arg(0))
	require.True(t, ok)
	assert.Equal(t, uint64(1), id)

	var infos []theme.Info
	require.NoError(t, wire.Remarshal(reply.Arg(1), &infos))
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Contains(t, names, "solarized")
	assert.Contains(t, names, "default")
}

func TestService_ActiveThemeInfoDefault(t *testing.T) {
	_, ch, _ := newTestService(t)

	request(ch, wire.OpActiveThemeInfo, uint64(5))

	reply := ch.lastSent(t)
	assert.Equal(t, wire.EvActiveThemeInfo, reply.Op)

	var info theme.Info
	require.NoError(t, wire.Remarshal(reply.Arg(1), &info))
	assert.Equal(t, theme.DefaultName, info.Name)
	assert.True(t, info.Default)
}

func TestService_ActivateBundled(t *testing.T) {
	svc, ch, dir := newTestService(t)

	request(ch, wire.OpActivateTheme, uint64(2), "dark")

	reply := ch.lastSent(t)
	assert.Equal(t, wire.EvThemeActivated, reply.Op)
	id, _ := wire.Uint64(reply.Arg(0))
	assert.Equal(t, uint64(2), id)

	var outcome wire.Outcome
	require.NoError(t, wire.Remarshal(reply.Arg(1), &outcome))
	assert.False(t, outcome.Reload)
	assert.Equal(t, "theme://dark", outcome.ThemeFile)

	assert.Equal(t, "dark", svc.Active())

	// The selection survives in the state file.
	data, err := os.ReadFile(filepath.Join(dir, "state.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dark")

	entries := svc.Journal().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "dark", entries[0].Theme)
}

func TestService_ActivateRestartTheme(t *testing.T) {
	_, ch, _ := newTestService(t)

	request(ch, wire.OpActivateTheme, uint64(3), "high-contrast")

	var outcome wire.Outcome
	reply := ch.lastSent(t)
	require.Equal(t, wire.EvThemeActivated, reply.Op)
	require.NoError(t, wire.Remarshal(reply.Arg(1), &outcome))

	// Restart themes get no theme file; the client must not try to load one.
	assert.True(t, outcome.Reload)
	assert.Empty(t, outcome.ThemeFile)
}

func TestService_ActivateSidecarRestart(t *testing.T) {
	_, ch, dir := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oled.css"), []byte(".shade-window {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "oled.toml"), []byte("requires_restart = true\n"), 0644))

	request(ch, wire.OpActivateTheme, uint64(4), "oled")

	var outcome wire.Outcome
	require.NoError(t, wire.Remarshal(ch.lastSent(t).Arg(1), &outcome))
	assert.True(t, outcome.Reload)
}

func TestService_ActivateUnknownTheme(t *testing.T) {
	svc, ch, _ := newTestService(t)

	request(ch, wire.OpActivateTheme, uint64(7), "nope")

	reply := ch.lastSent(t)
	assert.Equal(t, wire.EvError, reply.Op)
	id, _ := wire.Uint64(reply.Arg(0))
	assert.Equal(t, uint64(7), id)
	cause, _ := wire.String(reply.Arg(1))
	assert.Contains(t, cause, "nope")

	assert.Equal(t, theme.DefaultName, svc.Active())
	assert.Empty(t, svc.Journal().Entries())
}

func TestService_ActivateMissingThemeID(t *testing.T) {
	_, ch, _ := newTestService(t)

	request(ch, wire.OpActivateTheme, uint64(8))

	reply := ch.lastSent(t)
	assert.Equal(t, wire.EvError, reply.Op)
}

func TestService_ReloadRequiredHasNoReply(t *testing.T) {
	_, ch, _ := newTestService(t)

	request(ch, wire.OpReloadRequired, "theme switch requires restart: dark")
	assert.Zero(t, ch.sentCount())
}

func TestService_RequestWithoutIDIgnored(t *testing.T) {
	_, ch, _ := newTestService(t)

	request(ch, wire.OpListThemes)
	request(ch, wire.OpListThemes, "not-an-id")
	assert.Zero(t, ch.sentCount())
}

func TestService_ActiveSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "state.toml")

	svc := NewService(dir, statePath, "", nil)
	ch := &fakeChannel{}
	svc.Attach(ch)
	request(ch, wire.OpActivateTheme, uint64(1), "dark")

	// A fresh service instance picks the selection back up.
	svc2 := NewService(dir, statePath, "", nil)
	assert.Equal(t, "dark", svc2.Active())
}

func TestService_ConfiguredDefault(t *testing.T) {
	dir := t.TempDir()

	svc := NewService(dir, "", "dark", nil)
	assert.Equal(t, "dark", svc.Active())

	// The persisted selection wins over the configured default.
	statePath := filepath.Join(dir, "state.toml")
	withState := NewService(dir, statePath, "dark", nil)
	ch := &fakeChannel{}
	withState.Attach(ch)
	request(ch, wire.OpActivateTheme, uint64(1), "high-contrast")

	svc2 := NewService(dir, statePath, "dark", nil)
	assert.Equal(t, "high-contrast", svc2.Active())
}
