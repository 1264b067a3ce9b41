package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Client, *int, *[]string) {
	t.Helper()

	collectionCalls := 0
	var upsertIDs []string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		collectionCalls++
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["get_or_create"])
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "coll-123",
			"name": body["name"],
		})
	})
	mux.HandleFunc("/api/v1/collections/coll-123/upsert", func(w http.ResponseWriter, r *http.Request) {
		var body upsertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.IDs, 1)
		upsertIDs = append(upsertIDs, body.IDs[0])
		assert.Equal(t, []string{"s3://one/hash-a"}, body.URIs)
		w.Write([]byte("true"))
	})
	mux.HandleFunc("/api/v1/collections/coll-123/query", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ids":       [][]string{{"hash-a-1", "hash-b-2"}},
			"distances": [][]float32{{0.1, 0.4}},
			"uris":      [][]string{{"s3://one/hash-a", "s3://two/hash-b"}},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return New(server.URL), &collectionCalls, &upsertIDs
}

func TestAddResolvesCollection(t *testing.T) {
	client, calls, _ := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, client.Add(ctx, "notes", "hash-a", "1.TXT", "s3://one/hash-a", []float32{1, 0}))
	require.NoError(t, client.Add(ctx, "notes", "hash-a", "2.TXT", "s3://one/hash-a", []float32{0, 1}))

	// Collection id is cached after the first resolution.
	assert.Equal(t, 1, *calls)
}

func TestAddUsesDeterministicRecordIDs(t *testing.T) {
	client, _, upsertIDs := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, client.Add(ctx, "notes", "hash-a", "1.TXT", "s3://one/hash-a", []float32{1, 0}))
	require.NoError(t, client.Add(ctx, "notes", "hash-a", "1.TXT", "s3://one/hash-a", []float32{0, 1}))

	// Re-running a job produces the same record id both times, so the
	// upsert overwrites instead of appending.
	assert.Equal(t, []string{"hash-a-1.TXT", "hash-a-1.TXT"}, *upsertIDs)
}

func TestSearch(t *testing.T) {
	client, _, _ := newTestServer(t)

	matches, err := client.Search(context.Background(), "notes", []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "hash-a-1", matches[0].ID)
	assert.Equal(t, "s3://one/hash-a", matches[0].Location)
	assert.InDelta(t, 0.1, matches[0].Score, 1e-6)
}

func TestServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL)
	err := client.Add(context.Background(), "notes", "h", "1.TXT", "loc", []float32{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
