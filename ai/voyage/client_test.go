package voyage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/depot/ai"
)

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) (*Embedder, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	embedder, err := NewEmbedder(&ai.Config{
		VoyageAPIKey:  "test-key",
		VoyageModel:   "voyage-multimodal-3",
		VoyageBaseURL: server.URL,
	})
	require.NoError(t, err)
	return embedder, server
}

func TestEmbedText(t *testing.T) {
	var gotBody embedRequest
	embedder, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, embedPath, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.25, 0.5, 0.75}},
			},
		})
	})

	vec, err := embedder.EmbedText(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5, 0.75}, vec)

	require.Len(t, gotBody.Inputs, 1)
	require.Len(t, gotBody.Inputs[0].Content, 1)
	assert.Equal(t, "text", gotBody.Inputs[0].Content[0].Type)
	assert.Equal(t, "hello world", gotBody.Inputs[0].Content[0].Text)
	assert.Equal(t, "voyage-multimodal-3", gotBody.Model)
}

func TestEmbedImageIncludesContext(t *testing.T) {
	var gotBody embedRequest
	embedder, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{1, 2}},
			},
		})
	})

	vec, err := embedder.EmbedImage(context.Background(), "a red square", []byte{0x89, 0x50})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vec)

	require.Len(t, gotBody.Inputs, 1)
	parts := gotBody.Inputs[0].Content
	require.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "a red square", parts[0].Text)
	assert.Equal(t, "image_base64", parts[1].Type)
	assert.True(t, strings.HasPrefix(parts[1].ImageBase64, "data:image/png;base64,"))
}

func TestEmbedImageWithoutContext(t *testing.T) {
	var gotBody embedRequest
	embedder, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{1}},
			},
		})
	})

	_, err := embedder.EmbedImage(context.Background(), "", []byte{0x01})
	require.NoError(t, err)

	require.Len(t, gotBody.Inputs[0].Content, 1)
	assert.Equal(t, "image_base64", gotBody.Inputs[0].Content[0].Type)
}

func TestEmbedErrorStatus(t *testing.T) {
	embedder, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"detail": "invalid api key"})
	})

	_, err := embedder.EmbedText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestEmbedEmptyData(t *testing.T) {
	embedder, _ := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	})

	_, err := embedder.EmbedText(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no embeddings")
}

func TestNewEmbedderValidation(t *testing.T) {
	_, err := NewEmbedder(&ai.Config{VoyageModel: "m", VoyageBaseURL: "u"})
	assert.Error(t, err)

	_, err = NewEmbedder(&ai.Config{VoyageAPIKey: "k", VoyageBaseURL: "u"})
	assert.Error(t, err)

	_, err = NewEmbedder(&ai.Config{VoyageAPIKey: "k", VoyageModel: "m"})
	assert.Error(t, err)
}
