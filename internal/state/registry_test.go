package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistryCreatesOncePerID(t *testing.T) {
	created := 0
	reg := NewRegistry(2, time.Minute, func(id string) *AppState {
		created++
		return newApp(newStub(), LastResolvedWins)
	})

	a, isNew := reg.Get("a")
	assert.True(t, isNew)
	again, isNew := reg.Get("a")
	assert.False(t, isNew)
	assert.Same(t, a, again)
	assert.Equal(t, 1, created)
}

func TestRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	reg := NewRegistry(2, time.Minute, func(id string) *AppState {
		return newApp(newStub(), LastResolvedWins)
	})
	reg.Get("a")
	reg.Get("b")
	reg.Get("a")
	reg.Get("c")

	assert.Equal(t, 2, reg.Len())
	_, isNew := reg.Get("b")
	assert.True(t, isNew, "b was evicted")
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	reg := NewRegistry(4, 20*time.Millisecond, func(id string) *AppState {
		return newApp(newStub(), LastResolvedWins)
	})
	reg.Get("a")
	time.Sleep(60 * time.Millisecond)
	_, isNew := reg.Get("a")
	assert.True(t, isNew)

	reg.Remove("a")
	assert.Zero(t, reg.Len())
}
