package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/substratehq/depot/core"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "gemini-1.5-flash", config.GoogleModel)
	assert.Equal(t, "voyage-multimodal-3", config.VoyageModel)
	assert.Equal(t, "https://api.voyageai.com", config.VoyageBaseURL)
	assert.Empty(t, config.GoogleAPIKey)
	assert.Empty(t, config.VoyageAPIKey)
}

func TestNewConfigAppliesOptions(t *testing.T) {
	config := NewConfig(
		WithGoogleAPIKey("g-key"),
		WithGoogleModel("gemini-2.0-flash"),
		WithVoyageAPIKey("v-key"),
		WithVoyageModel("voyage-3"),
		WithVoyageBaseURL("https://voyage.internal"),
	)

	assert.Equal(t, "g-key", config.GoogleAPIKey)
	assert.Equal(t, "gemini-2.0-flash", config.GoogleModel)
	assert.Equal(t, "v-key", config.VoyageAPIKey)
	assert.Equal(t, "voyage-3", config.VoyageModel)
	assert.Equal(t, "https://voyage.internal", config.VoyageBaseURL)
}

func TestConfigValidate(t *testing.T) {
	config := DefaultConfig()
	assert.Error(t, config.Validate())

	config.GoogleAPIKey = "g-key"
	assert.Error(t, config.Validate())

	config.VoyageAPIKey = "v-key"
	assert.NoError(t, config.Validate())
}

func TestPromptFor(t *testing.T) {
	assert.Equal(t, PhotoPrompt, PromptFor(core.CategoryPhoto))
	assert.Equal(t, AudioPrompt, PromptFor(core.CategoryAudio))
	assert.Equal(t, VideoPrompt, PromptFor(core.CategoryVideo))
	assert.Empty(t, PromptFor(core.CategoryText))
	assert.Empty(t, PromptFor(core.CategoryPDF))
}
