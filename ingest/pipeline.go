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

// Package ingest turns stored objects into searchable embeddings.
//
// A Pipeline picks up ingestion jobs, derives text chunks and page
// images from the object's content, embeds them, writes the derived
// artifacts back to the object's backend, and records the job outcome
// in the status tracker. Jobs run asynchronously on a worker pool;
// failures are recorded, never retried.
package ingest

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/substratehq/depot/ai"
	"github.com/substratehq/depot/core"
	"github.com/substratehq/depot/extract"
	"github.com/substratehq/depot/pool"
	"github.com/substratehq/depot/status"
	"github.com/substratehq/depot/vectorindex"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200

	// defaultJobTimeout bounds one job end to end, including every
	// model call it makes. A stalled provider cancels the job instead
	// of pinning a worker.
	defaultJobTimeout = 10 * time.Minute
)

// Pipeline orchestrates asynchronous ingestion of stored objects.
type Pipeline struct {
	pool     *pool.Pool
	tracker  *status.Tracker
	provider ai.Provider
	index    vectorindex.Index
	pdf      extract.PDF

	workers      *ants.Pool
	chunkSize    int
	chunkOverlap int
	jobTimeout   time.Duration
	logger       *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.workers != nil {
			p.workers.Release()
		}
		workers, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.workers = workers
		return nil
	}
}

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidChunking
		}
		p.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between adjacent chunks.
func WithChunkOverlap(overlap int) Option {
	return func(p *Pipeline) error {
		if overlap < 0 {
			return ErrInvalidChunking
		}
		p.chunkOverlap = overlap
		return nil
	}
}

// WithJobTimeout bounds the total runtime of one job, covering
// extraction, every model call, and artifact writes. A job that
// overruns is cancelled and marked Failed.
func WithJobTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return ErrInvalidTimeout
		}
		p.jobTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	storagePool *pool.Pool,
	tracker *status.Tracker,
	provider ai.Provider,
	index vectorindex.Index,
	pdf extract.PDF,
	opts ...Option,
) (*Pipeline, error) {
	if storagePool == nil {
		return nil, ErrPoolRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if pdf == nil {
		return nil, ErrExtractorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	workers, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		pool:         storagePool,
		tracker:      tracker,
		provider:     provider,
		index:        index,
		pdf:          pdf,
		workers:      workers,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		jobTimeout:   defaultJobTimeout,
		logger:       slog.Default().With("component", "ingest"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Submit schedules a job for asynchronous processing. Errors during
// processing are recorded against the job's status and logged; they do
// not surface to the caller.
func (p *Pipeline) Submit(job *core.IngestionJob) error {
	if job == nil {
		return ErrJobRequired
	}

	return p.workers.Submit(func() {
		if err := p.process(context.Background(), job); err != nil {
			p.logger.Error("ingestion job failed",
				"job", job.ID, "hash", job.Hash, "err", err)
		}
	})
}

// Release releases the worker pool. The pipeline must not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.workers != nil {
		p.workers.Release()
	}
}
