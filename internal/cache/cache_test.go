package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(2, time.Minute)

	_, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	v, ok, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	// "b" is now least recently used and gets evicted.
	require.NoError(t, m.Set(ctx, "c", []byte("3")))
	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok)
	assert.Equal(t, 2, m.Len())

	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Len())
}

func TestNoopStore(t *testing.T) {
	ctx := context.Background()
	var s Store = Noop{}
	require.NoError(t, s.Set(ctx, "a", []byte("1")))
	_, ok, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, Noop{}, s)

	s, err = New(ctx, Options{Backend: "memory", Size: 4, TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = New(ctx, Options{Backend: "memcached"})
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	a := Key("model-a", []byte("image bytes"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("model-a", []byte("image bytes")))
	assert.NotEqual(t, a, Key("model-a", []byte("other bytes")))
	assert.NotEqual(t, a, Key("model-b", []byte("image bytes")))
}
