package ai

import "context"

// Summarizer turns non-text media into descriptive or transcribed text.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize sends media with an instruction prompt to a multimodal
	// model and returns the generated text. mimeType describes the media
	// payload (e.g. "image/png", "audio/mpeg").
	Summarize(ctx context.Context, prompt, mimeType string, media []byte) (string, error)
}

// Embedder generates vector embeddings for text and images.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates an embedding for a text fragment.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedImage generates an embedding for image bytes, grounded on
	// contextText when the caller has aligned text for the image.
	EmbedImage(ctx context.Context, contextText string, image []byte) ([]float32, error)
}

// Provider aggregates the AI services the ingestion pipeline consumes.
// Selection of concrete services is a configuration-time choice.
type Provider interface {
	// Summarizer returns the media description/transcription service.
	Summarizer() Summarizer

	// Embedder returns the embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}

// composite is the default Provider: independently constructed services
// bundled behind the Provider contract.
type composite struct {
	summarizer Summarizer
	embedder   Embedder
}

// NewProvider bundles a Summarizer and an Embedder into a Provider.
func NewProvider(s Summarizer, e Embedder) Provider {
	return &composite{summarizer: s, embedder: e}
}

func (c *composite) Summarizer() Summarizer { return c.summarizer }
func (c *composite) Embedder() Embedder     { return c.embedder }
func (c *composite) Close() error           { return nil }
