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

// Package depot is a content-addressed storage pool with asynchronous
// multi-modal ingestion.
//
// A Depot spreads uploads across object storage backends by load,
// deduplicates them by content hash, and turns each stored object into
// searchable embedding vectors in the background.
package depot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/substratehq/depot/ai"
	"github.com/substratehq/depot/ai/googleai"
	"github.com/substratehq/depot/ai/voyage"
	"github.com/substratehq/depot/core"
	"github.com/substratehq/depot/extract"
	"github.com/substratehq/depot/extract/fitz"
	"github.com/substratehq/depot/filetype"
	"github.com/substratehq/depot/ingest"
	"github.com/substratehq/depot/kv"
	kvbadger "github.com/substratehq/depot/kv/badger"
	"github.com/substratehq/depot/objectstore"
	"github.com/substratehq/depot/pool"
	"github.com/substratehq/depot/status"
	"github.com/substratehq/depot/vectorindex"
	vecgoindex "github.com/substratehq/depot/vectorindex/vecgo"
)

// Depot wires the storage pool, status tracker, AI services, vector
// index, and ingestion pipeline behind one entry point.
type Depot struct {
	cache    kv.Store
	pool     *pool.Pool
	tracker  *status.Tracker
	provider ai.Provider
	index    vectorindex.Index
	pipeline *ingest.Pipeline
	logger   *slog.Logger
}

// DepotOption configures a Depot.
type DepotOption func(*depotOptions)

type depotOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	index    vectorindex.Index
	pdf      extract.PDF
}

// WithAIConfig sets the configuration used to construct the default
// AI services.
func WithAIConfig(config *ai.Config) DepotOption {
	return func(o *depotOptions) {
		o.aiConfig = config
	}
}

// WithProvider supplies a pre-built AI provider, bypassing the default
// Gemini summarizer and Voyage embedder.
func WithProvider(provider ai.Provider) DepotOption {
	return func(o *depotOptions) {
		o.provider = provider
	}
}

// WithVectorIndex supplies a vector index, e.g. a remote Chroma
// client. Default is an embedded in-process index.
func WithVectorIndex(index vectorindex.Index) DepotOption {
	return func(o *depotOptions) {
		o.index = index
	}
}

// WithPDFExtractor supplies a PDF extractor. Default uses MuPDF.
func WithPDFExtractor(pdf extract.PDF) DepotOption {
	return func(o *depotOptions) {
		o.pdf = pdf
	}
}

// New creates a Depot over the given storage backends. filePath is the
// metadata store directory; an empty filePath keeps metadata in memory.
// The bucket is created on any backend that does not have it yet.
func New(ctx context.Context, filePath string, backends []objectstore.Client, bucket string, opts ...DepotOption) (*Depot, error) {
	options := &depotOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	cache, err := kvbadger.Open(filePath, filePath == "")
	if err != nil {
		return nil, err
	}

	for _, backend := range backends {
		if err := backend.EnsureBucket(ctx, bucket); err != nil {
			cache.Close()
			return nil, fmt.Errorf("ensure bucket on %s: %w", backend.Endpoint(), err)
		}
	}

	storagePool, err := pool.New(backends, bucket, cache)
	if err != nil {
		cache.Close()
		return nil, err
	}

	tracker, err := status.NewTracker(cache)
	if err != nil {
		cache.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		summarizer, err := googleai.NewSummarizer(ctx, options.aiConfig)
		if err != nil {
			cache.Close()
			return nil, err
		}
		embedder, err := voyage.NewEmbedder(options.aiConfig)
		if err != nil {
			cache.Close()
			return nil, err
		}
		provider = ai.NewProvider(summarizer, embedder)
	}

	index := options.index
	if index == nil {
		index = vecgoindex.New()
	}

	pdf := options.pdf
	if pdf == nil {
		pdf = fitz.NewExtractor()
	}

	pipeline, err := ingest.NewPipeline(storagePool, tracker, provider, index, pdf)
	if err != nil {
		provider.Close()
		index.Close()
		cache.Close()
		return nil, err
	}

	return &Depot{
		cache:    cache,
		pool:     storagePool,
		tracker:  tracker,
		provider: provider,
		index:    index,
		pipeline: pipeline,
		logger:   slog.Default().With("component", "depot"),
	}, nil
}

// UploadResult reports the outcome of an upload.
type UploadResult struct {
	// Hash is the content hash the bytes are stored under.
	Hash string

	// JobID identifies the ingestion job scheduled for new content.
	// Empty for duplicate uploads, which schedule no work.
	JobID string

	// Duplicate reports whether the bytes were already stored.
	Duplicate bool
}

// Upload stores content under its hash and, for new content, schedules
// an ingestion job. Duplicate uploads only extend the uploader set.
func (d *Depot) Upload(ctx context.Context, identity, filename, collection string, content []byte) (*UploadResult, error) {
	category, err := filetype.Classify(filename)
	if err != nil {
		return nil, err
	}

	obj, created, err := d.pool.Store(ctx, identity, filename, category, content)
	if err != nil {
		return nil, err
	}
	if !created {
		return &UploadResult{Hash: obj.Hash, Duplicate: true}, nil
	}

	job, err := d.tracker.CreateJob(ctx, obj.Hash, collection)
	if err != nil {
		return nil, err
	}
	if err := d.pipeline.Submit(job); err != nil {
		return nil, err
	}

	d.logger.Info("upload accepted", "hash", obj.Hash, "job", job.ID, "collection", collection)
	return &UploadResult{Hash: obj.Hash, JobID: job.ID}, nil
}

// JobStatus returns the current state of an ingestion job.
func (d *Depot) JobStatus(ctx context.Context, jobID string) (core.JobStatus, error) {
	return d.tracker.Get(ctx, jobID)
}

// Search embeds the query text and returns the k nearest stored
// objects in the collection.
func (d *Depot) Search(ctx context.Context, collection, query string, k int) ([]vectorindex.Match, error) {
	vec, err := d.provider.Embedder().EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return d.index.Search(ctx, collection, vec, k)
}

// Pool returns the underlying storage pool.
func (d *Depot) Pool() *pool.Pool {
	return d.pool
}

// Tracker returns the underlying status tracker.
func (d *Depot) Tracker() *status.Tracker {
	return d.tracker
}

// Close releases the pipeline, AI services, index, and metadata store.
func (d *Depot) Close() error {
	d.pipeline.Release()

	if err := d.provider.Close(); err != nil {
		d.logger.Error("error closing AI provider", "err", err)
	}
	if err := d.index.Close(); err != nil {
		d.logger.Error("error closing vector index", "err", err)
	}
	if err := d.cache.Close(); err != nil {
		d.logger.Error("error closing metadata store", "err", err)
		return err
	}
	return nil
}
