package ingest

import "errors"

// Errors returned by Pipeline construction and submission.
var (
	ErrPoolRequired      = errors.New("ingest: storage pool is required")
	ErrTrackerRequired   = errors.New("ingest: status tracker is required")
	ErrProviderRequired  = errors.New("ingest: ai provider is required")
	ErrIndexRequired     = errors.New("ingest: vector index is required")
	ErrExtractorRequired = errors.New("ingest: pdf extractor is required")
	ErrJobRequired       = errors.New("ingest: job is required")
	ErrInvalidChunking   = errors.New("ingest: invalid chunking configuration")
	ErrInvalidTimeout    = errors.New("ingest: job timeout must be positive")
)
