// Package ai defines the contracts for the external AI services the
// ingestion pipeline consumes: a multimodal Summarizer that turns media
// into text, and an Embedder that turns text and images into vectors.
//
// Concrete implementations live in subpackages (googleai, voyage) and are
// selected at configuration time. The mock subpackage provides test
// doubles with deterministic defaults.
package ai
