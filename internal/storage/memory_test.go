package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_CopiesValues(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, m.Set(ctx, "k", in))
	in[0] = 'z'

	out, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStorage_InjectedFailures(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	m.FailWrites(true)
	assert.ErrorIs(t, m.Set(ctx, "k", []byte("v")), ErrInjected)
	assert.ErrorIs(t, m.Delete(ctx, "k"), ErrInjected)
	assert.Equal(t, 0, m.Writes("k"))

	m.FailWrites(false)
	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	assert.Equal(t, 1, m.Writes("k"))

	m.FailReads(true)
	_, _, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrInjected)
}

func TestMemoryStorage_Delete(t *testing.T) {
	m := NewMemoryStorage()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	require.NoError(t, m.Delete(ctx, "k"))

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, m.Close())
}
