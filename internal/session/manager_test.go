package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(&fakeCompleter{}, "C", time.Hour, nil)

	s := m.Start()
	require.NotEmpty(t, s.ID)
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	assert.True(t, m.End(s.ID))
	_, ok = m.Get(s.ID)
	assert.False(t, ok)
	assert.False(t, m.End(s.ID), "ending twice reports missing session")
}

func TestManager_UniqueIDs(t *testing.T) {
	m := NewManager(&fakeCompleter{}, "C", 0, nil)
	a := m.Start()
	b := m.Start()
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, m.Count())
}

func TestManager_Expiry(t *testing.T) {
	m := NewManager(&fakeCompleter{}, "C", 20*time.Millisecond, nil)
	s := m.Start()

	time.Sleep(50 * time.Millisecond)
	_, ok := m.Get(s.ID)
	assert.False(t, ok, "idle session should expire")
}

func TestManager_UnknownSession(t *testing.T) {
	m := NewManager(&fakeCompleter{}, "C", time.Hour, nil)
	_, ok := m.Get("missing")
	assert.False(t, ok)
}

func TestManager_EndedSessionIsNotRevived(t *testing.T) {
	m := NewManager(&fakeCompleter{}, "C", time.Hour, nil)
	s := m.Start()

	// A lookup that races with End must not put the session back.
	require.True(t, m.End(s.ID))
	assert.False(t, m.touch(s.ID, s))

	_, ok := m.Get(s.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Count())
}

func TestManager_GetExtendsLifetime(t *testing.T) {
	m := NewManager(&fakeCompleter{}, "C", 200*time.Millisecond, nil)
	s := m.Start()

	for range 3 {
		time.Sleep(80 * time.Millisecond)
		_, ok := m.Get(s.ID)
		require.True(t, ok, "active session should stay alive")
	}
}
