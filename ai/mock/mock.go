package mock

import (
	"context"
	"fmt"
	"hash/fnv"
)

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, uses default deterministic behavior.
	SummarizeFunc func(ctx context.Context, prompt, mimeType string, media []byte) (string, error)

	callCount int
}

// NewMockSummarizer creates a mock summarizer with default deterministic behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{}
}

// Summarize returns a deterministic description derived from the media size.
func (m *MockSummarizer) Summarize(ctx context.Context, prompt, mimeType string, media []byte) (string, error) {
	m.callCount++

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, prompt, mimeType, media)
	}

	return fmt.Sprintf("mock summary of %s media (%d bytes)", mimeType, len(media)), nil
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockSummarizer) Reset() {
	m.callCount = 0
	m.SummarizeFunc = nil
}

// MockEmbedder is a test double for ai.Embedder.
// It allows custom behavior injection via function fields.
type MockEmbedder struct {
	// EmbedTextFunc is called by EmbedText if set.
	// If nil, uses default deterministic behavior.
	EmbedTextFunc func(ctx context.Context, text string) ([]float32, error)

	// EmbedImageFunc is called by EmbedImage if set.
	// If nil, uses default deterministic behavior.
	EmbedImageFunc func(ctx context.Context, contextText string, image []byte) ([]float32, error)

	callCount int
}

// NewMockEmbedder creates a mock embedder with default deterministic behavior.
func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{}
}

// EmbedText generates a deterministic embedding based on text hash.
func (m *MockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	m.callCount++

	if m.EmbedTextFunc != nil {
		return m.EmbedTextFunc(ctx, text)
	}

	return generateDeterministicVector([]byte(text), 384), nil
}

// EmbedImage generates a deterministic embedding based on context and image bytes.
func (m *MockEmbedder) EmbedImage(ctx context.Context, contextText string, image []byte) ([]float32, error) {
	m.callCount++

	if m.EmbedImageFunc != nil {
		return m.EmbedImageFunc(ctx, contextText, image)
	}

	seed := append([]byte(contextText), image...)
	return generateDeterministicVector(seed, 384), nil
}

// CallCount returns the number of times any method was called.
func (m *MockEmbedder) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockEmbedder) Reset() {
	m.callCount = 0
	m.EmbedTextFunc = nil
	m.EmbedImageFunc = nil
}

// generateDeterministicVector creates a deterministic embedding vector.
// It uses FNV hash so the same input always produces the same vector.
func generateDeterministicVector(data []byte, dim int) []float32 {
	h := fnv.New32a()
	h.Write(data)
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		seed = seed*1664525 + 1013904223 // LCG constants
		vector[i] = float32(seed%1000) / 1000.0
	}
	return vector
}
