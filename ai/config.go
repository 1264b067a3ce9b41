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

package ai

import "errors"

// Config holds configuration for AI service providers.
type Config struct {
	// GoogleAPIKey authenticates against the Gemini API for media
	// description and transcription.
	GoogleAPIKey string

	// GoogleModel is the Gemini model used for summarization.
	// Example: "gemini-1.5-flash"
	GoogleModel string

	// VoyageAPIKey authenticates against the Voyage AI embedding API.
	VoyageAPIKey string

	// VoyageModel is the multimodal embedding model identifier.
	// Example: "voyage-multimodal-3"
	VoyageModel string

	// VoyageBaseURL is the Voyage API base URL. Overridable for tests.
	VoyageBaseURL string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithGoogleAPIKey sets the Gemini API key.
func WithGoogleAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.GoogleAPIKey = key
	}
}

// WithGoogleModel sets the Gemini model identifier.
func WithGoogleModel(model string) ConfigOption {
	return func(c *Config) {
		c.GoogleModel = model
	}
}

// WithVoyageAPIKey sets the Voyage API key.
func WithVoyageAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.VoyageAPIKey = key
	}
}

// WithVoyageModel sets the Voyage embedding model identifier.
func WithVoyageModel(model string) ConfigOption {
	return func(c *Config) {
		c.VoyageModel = model
	}
}

// WithVoyageBaseURL overrides the Voyage API base URL.
func WithVoyageBaseURL(url string) ConfigOption {
	return func(c *Config) {
		c.VoyageBaseURL = url
	}
}

// DefaultConfig returns a Config with the default model choices. API keys
// have no defaults and must be supplied.
func DefaultConfig() *Config {
	return &Config{
		GoogleModel:   "gemini-1.5-flash",
		VoyageModel:   "voyage-multimodal-3",
		VoyageBaseURL: "https://api.voyageai.com",
	}
}

// NewConfig creates a Config with defaults and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.GoogleAPIKey == "" {
		return errors.New("ai config: GoogleAPIKey is required")
	}
	if c.GoogleModel == "" {
		return errors.New("ai config: GoogleModel is required")
	}
	if c.VoyageAPIKey == "" {
		return errors.New("ai config: VoyageAPIKey is required")
	}
	if c.VoyageModel == "" {
		return errors.New("ai config: VoyageModel is required")
	}
	if c.VoyageBaseURL == "" {
		return errors.New("ai config: VoyageBaseURL is required")
	}
	return nil
}
