package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeReloader struct {
	started int
	stopped int
}

func (f *fakeReloader) StartHotReload(context.Context) { f.started++ }
func (f *fakeReloader) StopHotReload()                 { f.stopped++ }

func TestUpdate_ActivationStartsHotReload(t *testing.T) {
	hr := &fakeReloader{}
	m := New(nil, hr)

	updated, _ := m.Update(activatedMsg{name: "dark"})
	m = updated.(Model)

	assert.Equal(t, 1, hr.started)
	assert.Equal(t, "activated dark", m.statusMsg)
	assert.False(t, m.statusErr)
}

func TestUpdate_FailedActivationLeavesWatcherAlone(t *testing.T) {
	hr := &fakeReloader{}
	m := New(nil, hr)

	updated, _ := m.Update(activatedMsg{name: "dark", err: errors.New("unknown theme")})
	m = updated.(Model)

	assert.Zero(t, hr.started)
	assert.True(t, m.statusErr)
	assert.Contains(t, m.statusMsg, "unknown theme")
}

func TestUpdate_NoReloaderConfigured(t *testing.T) {
	m := New(nil, nil)
	updated, _ := m.Update(activatedMsg{name: "dark"})
	assert.Equal(t, "activated dark", updated.(Model).statusMsg)
}
