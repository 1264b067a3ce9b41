// Package chroma implements vectorindex.Index against a Chroma server
// over its v1 HTTP API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/substratehq/depot/vectorindex"
)

// Client talks to a remote Chroma instance. Collection identifiers
// are resolved lazily and cached for the lifetime of the client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger

	mu            sync.Mutex
	collectionIDs map[string]string
}

var _ vectorindex.Index = (*Client)(nil)

// New creates a Client for the Chroma server at baseURL,
// e.g. "http://localhost:8000".
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:        slog.Default().With("component", "chroma"),
		collectionIDs: make(map[string]string),
	}
}

type collectionResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type upsertRequest struct {
	IDs        []string    `json:"ids"`
	Embeddings [][]float32 `json:"embeddings"`
	URIs       []string    `json:"uris"`
}

type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

type queryResponse struct {
	IDs       [][]string  `json:"ids"`
	Distances [][]float32 `json:"distances"`
	URIs      [][]string  `json:"uris"`
}

// Add upserts one vector record into the collection, creating the
// collection on first use.
func (c *Client) Add(ctx context.Context, collection, id, ref, location string, vector []float32) error {
	collID, err := c.collectionID(ctx, collection)
	if err != nil {
		return err
	}

	// One hash produces a record per chunk; the ref suffix keeps
	// record ids unique and stable, and upsert makes re-ingesting a
	// hash overwrite its records instead of appending.
	recordID := fmt.Sprintf("%s-%s", id, ref)
	req := upsertRequest{
		IDs:        []string{recordID},
		Embeddings: [][]float32{vector},
		URIs:       []string{location},
	}
	return c.post(ctx, fmt.Sprintf("/api/v1/collections/%s/upsert", collID), req, nil)
}

// Search queries the collection for the k nearest records.
func (c *Client) Search(ctx context.Context, collection string, vector []float32, k int) ([]vectorindex.Match, error) {
	collID, err := c.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{vector},
		NResults:        k,
		Include:         []string{"distances", "uris"},
	}
	var resp queryResponse
	if err := c.post(ctx, fmt.Sprintf("/api/v1/collections/%s/query", collID), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	matches := make([]vectorindex.Match, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		m := vectorindex.Match{ID: id}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			m.Score = resp.Distances[0][i]
		}
		if len(resp.URIs) > 0 && i < len(resp.URIs[0]) {
			m.Location = resp.URIs[0][i]
		}
		matches = append(matches, m)
	}
	return matches, nil
}

// Close is a no-op; the client holds no persistent connections.
func (c *Client) Close() error {
	return nil
}

func (c *Client) collectionID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	id, ok := c.collectionIDs[name]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	req := map[string]any{
		"name":          name,
		"get_or_create": true,
	}
	var resp collectionResponse
	if err := c.post(ctx, "/api/v1/collections", req, &resp); err != nil {
		return "", fmt.Errorf("get or create collection %q: %w", name, err)
	}

	c.mu.Lock()
	c.collectionIDs[name] = resp.ID
	c.mu.Unlock()
	return resp.ID, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("chroma request failed", "path", path, "status", resp.Status)
		return fmt.Errorf("chroma: %s returned %s: %s", path, resp.Status, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("chroma: decode %s response: %w", path, err)
		}
	}
	return nil
}
