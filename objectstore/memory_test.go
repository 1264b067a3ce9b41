package objectstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPutGet(t *testing.T) {
	m := NewMemoryClient("mem://a")
	ctx := context.Background()

	require.NoError(t, m.Put(ctx, "files", "k1", []byte("data")))

	got, err := m.Get(ctx, "files", "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)

	_, err = m.Get(ctx, "files", "missing")
	assert.True(t, errors.Is(err, ErrObjectNotFound))

	_, err = m.Get(ctx, "nobucket", "k1")
	assert.True(t, errors.Is(err, ErrBucketNotFound))
}

func TestMemoryCount(t *testing.T) {
	m := NewMemoryClient("mem://a")
	ctx := context.Background()

	n, err := m.Count(ctx, "files")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, m.Put(ctx, "files", "k1", []byte("1")))
	require.NoError(t, m.Put(ctx, "files", "k2", []byte("2")))
	require.NoError(t, m.Put(ctx, "files", "k1", []byte("1b"))) // overwrite

	n, err = m.Count(ctx, "files")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestMemoryFailureModes(t *testing.T) {
	m := NewMemoryClient("mem://a")
	ctx := context.Background()

	m.FailPuts = true
	assert.Error(t, m.Put(ctx, "files", "k", []byte("x")))

	m.FailCounts = true
	_, err := m.Count(ctx, "files")
	assert.Error(t, err)
}
