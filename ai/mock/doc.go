// Package mock provides test double implementations of AI service interfaces.
//
// The mocks allow tests to run without external AI service dependencies
// and enable controlled, deterministic behavior:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
// With no injected behavior, MockEmbedder returns deterministic vectors
// derived from the input hash, and MockSummarizer returns a short
// description of the media it was given.
package mock
