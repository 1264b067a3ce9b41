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

// Package googleai implements ai.Summarizer on the Gemini API.
package googleai

import (
	"context"
	"errors"
	"log/slog"

	"github.com/substratehq/depot/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

// Summarizer sends media plus an instruction prompt to a Gemini model.
type Summarizer struct {
	client *googleai.GoogleAI
	logger *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates a Summarizer from config.
func NewSummarizer(ctx context.Context, config *ai.Config) (*Summarizer, error) {
	if config.GoogleAPIKey == "" {
		return nil, errors.New("googleai: API key is required")
	}
	if config.GoogleModel == "" {
		return nil, errors.New("googleai: model is required")
	}

	client, err := googleai.New(ctx,
		googleai.WithAPIKey(config.GoogleAPIKey),
		googleai.WithDefaultModel(config.GoogleModel),
	)
	if err != nil {
		return nil, err
	}

	return &Summarizer{
		client: client,
		logger: slog.Default().With("component", "googleai-summarizer"),
	}, nil
}

// Summarize generates text for the media under the given prompt.
func (s *Summarizer) Summarize(ctx context.Context, prompt, mimeType string, media []byte) (string, error) {
	s.logger.Debug("summarizing media", "mime", mimeType, "bytes", len(media))

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart(mimeType, media),
				llms.TextPart(prompt),
			},
		},
	}

	resp, err := s.client.GenerateContent(ctx, content)
	if err != nil {
		s.logger.Error("summarization failed", "mime", mimeType, "err", err)
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("googleai: empty response")
	}
	return resp.Choices[0].Content, nil
}
