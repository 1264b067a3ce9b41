package badger

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/depot/kv"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open("", true)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSetGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k1", []byte("v1"), 0))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, kv.ErrNotFound))
}

func TestTTLExpiry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", []byte("x"), 50*time.Millisecond))

	got, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	time.Sleep(100 * time.Millisecond)

	_, err = store.Get(ctx, "short")
	assert.True(t, errors.Is(err, kv.ErrNotFound))
}

func TestSetRefreshesTTL(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("a"), 80*time.Millisecond))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, store.Set(ctx, "k", []byte("b"), 80*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	// Would have expired without the refresh
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got)
}

func TestDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Delete(ctx, "k"))

	_, err := store.Get(ctx, "k")
	assert.True(t, errors.Is(err, kv.ErrNotFound))

	// Deleting an absent key is not an error
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestUpdateCreatesWhenAbsent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	err := store.Update(ctx, "new", 0, func(old []byte, found bool) ([]byte, error) {
		require.False(t, found)
		require.Nil(t, old)
		return []byte("created"), nil
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, []byte("created"), got)
}

func TestUpdateMergeError(t *testing.T) {
	store := openTestStore(t)

	wantErr := errors.New("merge failed")
	err := store.Update(context.Background(), "k", 0, func(old []byte, found bool) ([]byte, error) {
		return nil, wantErr
	})
	assert.True(t, errors.Is(err, wantErr))
}

func TestConcurrentUpdatesConverge(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "set", []byte("[]"), 0))

	// Concurrent set-union merges must not lose members
	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			member := string(rune('a' + id))
			err := store.Update(ctx, "set", 0, func(old []byte, found bool) ([]byte, error) {
				var members []string
				if found {
					if err := json.Unmarshal(old, &members); err != nil {
						return nil, err
					}
				}
				members = append(members, member)
				return json.Marshal(members)
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	raw, err := store.Get(ctx, "set")
	require.NoError(t, err)
	var members []string
	require.NoError(t, json.Unmarshal(raw, &members))
	assert.Len(t, members, writers)
}

func TestClosedStore(t *testing.T) {
	store, err := Open("", true)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.Get(context.Background(), "k")
	assert.Error(t, err)
}
