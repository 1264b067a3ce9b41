// Copyright 2025 Substrate Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package voyage implements ai.Embedder against the Voyage AI
// multimodal embeddings endpoint. Text and image inputs both go
// through the multimodal API so vectors land in one space.
package voyage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/substratehq/depot/ai"
)

const embedPath = "/v1/multimodalembeddings"

// Embedder calls the Voyage multimodal embeddings API.
type Embedder struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// NewEmbedder creates an Embedder from config.
func NewEmbedder(config *ai.Config) (*Embedder, error) {
	if config.VoyageAPIKey == "" {
		return nil, errors.New("voyage: API key is required")
	}
	if config.VoyageModel == "" {
		return nil, errors.New("voyage: model is required")
	}
	if config.VoyageBaseURL == "" {
		return nil, errors.New("voyage: base URL is required")
	}

	return &Embedder{
		apiKey:  config.VoyageAPIKey,
		model:   config.VoyageModel,
		baseURL: config.VoyageBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.Default().With("component", "voyage-embedder"),
	}, nil
}

type contentPart struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type embedInput struct {
	Content []contentPart `json:"content"`
}

type embedRequest struct {
	Inputs []embedInput `json:"inputs"`
	Model  string       `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

// EmbedText embeds a single text chunk.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	input := embedInput{
		Content: []contentPart{{Type: "text", Text: text}},
	}
	return e.embed(ctx, input)
}

// EmbedImage embeds an image together with an optional descriptive
// context so the vector carries both modalities.
func (e *Embedder) EmbedImage(ctx context.Context, contextText string, image []byte) ([]float32, error) {
	parts := make([]contentPart, 0, 2)
	if contextText != "" {
		parts = append(parts, contentPart{Type: "text", Text: contextText})
	}
	encoded := base64.StdEncoding.EncodeToString(image)
	parts = append(parts, contentPart{
		Type:        "image_base64",
		ImageBase64: "data:image/png;base64," + encoded,
	})
	return e.embed(ctx, embedInput{Content: parts})
}

func (e *Embedder) embed(ctx context.Context, input embedInput) ([]float32, error) {
	body, err := json.Marshal(embedRequest{
		Inputs: []embedInput{input},
		Model:  e.model,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+embedPath, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		e.logger.Error("embedding request failed", "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed embedResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("voyage: decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Detail != "" {
			return nil, fmt.Errorf("voyage: %s: %s", resp.Status, parsed.Detail)
		}
		return nil, fmt.Errorf("voyage: unexpected status %s", resp.Status)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("voyage: response contained no embeddings")
	}
	return parsed.Data[0].Embedding, nil
}
