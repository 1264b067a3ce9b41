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

// Package pool presents N object-storage backends as one logical
// content-addressed store with deduplication and load-aware placement.
package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/substratehq/depot/core"
	"github.com/substratehq/depot/filetype"
	"github.com/substratehq/depot/kv"
	"github.com/substratehq/depot/objectstore"
)

// loadSnapshotKey is the cache key the observed backend load snapshot is
// published under. The snapshot is advisory observability data, never a
// source of truth for placement.
const loadSnapshotKey = "backend_file_count"

// objectKeyPrefix namespaces dedup-cache entries.
const objectKeyPrefix = "objmeta:"

// defaultQueryTimeout bounds each backend load query so one dead backend
// cannot stall placement.
const defaultQueryTimeout = 5 * time.Second

var (
	// ErrNoBackends indicates the pool was constructed without backends.
	ErrNoBackends = errors.New("at least one backend required")

	// ErrCacheRequired indicates the pool was constructed without a cache.
	ErrCacheRequired = errors.New("dedup cache required")

	// ErrUnknownBackend indicates a targeted write named a backend the
	// pool is not configured with.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrUploadFailed indicates the put on the selected backend failed.
	// There is no automatic failover to a second backend; retry policy is
	// the caller's responsibility.
	ErrUploadFailed = errors.New("upload to backend failed")

	// ErrMetadataInconsistent indicates the object bytes were placed but
	// the metadata write failed: the bytes exist but are undiscoverable.
	// Surfaced distinctly from upload failure so callers can repair.
	ErrMetadataInconsistent = errors.New("object stored but metadata write failed")
)

// Pool is the logical store over a fixed, ordered set of backends.
type Pool struct {
	backends     []objectstore.Client
	byEndpoint   map[string]objectstore.Client
	bucket       string
	cache        kv.Store
	queryTimeout time.Duration
	logger       *slog.Logger
}

// Option configures a Pool.
type Option func(*Pool) error

// WithQueryTimeout sets the per-backend timeout for load queries.
func WithQueryTimeout(d time.Duration) Option {
	return func(p *Pool) error {
		if d <= 0 {
			return fmt.Errorf("query timeout must be positive")
		}
		p.queryTimeout = d
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger.With("component", "pool")
		return nil
	}
}

// New creates a Pool over the given backends, in placement-preference order.
// The first backend is also the fallback target when every backend is
// unreachable.
func New(backends []objectstore.Client, bucket string, cache kv.Store, opts ...Option) (*Pool, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket name required")
	}

	byEndpoint := make(map[string]objectstore.Client, len(backends))
	for _, b := range backends {
		byEndpoint[b.Endpoint()] = b
	}

	p := &Pool{
		backends:     backends,
		byEndpoint:   byEndpoint,
		bucket:       bucket,
		cache:        cache,
		queryTimeout: defaultQueryTimeout,
		logger:       slog.Default().With("component", "pool"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Bucket returns the bucket all pool writes target.
func (p *Pool) Bucket() string {
	return p.bucket
}

// SelectTarget queries every backend's object count concurrently and returns
// the least-loaded one. A backend that errors or times out counts as
// infinitely loaded and is never selected over a reachable one. Ties break
// in configuration order. If every backend is unreachable the first
// configured backend is returned, trading optimal placement for
// availability.
func (p *Pool) SelectTarget(ctx context.Context) objectstore.Client {
	loads := make([]float64, len(p.backends))

	g, gctx := errgroup.WithContext(ctx)
	for i, backend := range p.backends {
		g.Go(func() error {
			qctx, cancel := context.WithTimeout(gctx, p.queryTimeout)
			defer cancel()

			count, err := backend.Count(qctx, p.bucket)
			if err != nil {
				p.logger.Warn("backend load query failed",
					"backend", backend.Endpoint(), "err", err)
				loads[i] = math.Inf(1)
				return nil
			}
			loads[i] = float64(count)
			return nil
		})
	}
	_ = g.Wait() // queries never return errors, only infinite load

	p.publishLoadSnapshot(ctx, loads)

	best := 0
	for i := 1; i < len(loads); i++ {
		if loads[i] < loads[best] {
			best = i
		}
	}
	if math.IsInf(loads[best], 1) {
		p.logger.Warn("all backends unreachable, falling back to first backend",
			"backend", p.backends[0].Endpoint())
		return p.backends[0]
	}
	return p.backends[best]
}

// publishLoadSnapshot writes the observed counts to the shared cache for
// external visibility. Unreachable backends are recorded as -1 since JSON
// cannot carry +Inf. Failure to publish never fails placement.
func (p *Pool) publishLoadSnapshot(ctx context.Context, loads []float64) {
	snapshot := make(map[string]float64, len(loads))
	for i, backend := range p.backends {
		if math.IsInf(loads[i], 1) {
			snapshot[backend.Endpoint()] = -1
			continue
		}
		snapshot[backend.Endpoint()] = loads[i]
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, loadSnapshotKey, raw, 0); err != nil {
		p.logger.Warn("failed to publish load snapshot", "err", err)
	}
}

// Put writes data to the backend identified by endpoint. Targeted writes
// co-locate derived artifacts next to their parent object.
func (p *Pool) Put(ctx context.Context, endpoint, key string, data []byte) error {
	backend, ok := p.byEndpoint[endpoint]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBackend, endpoint)
	}
	if err := backend.Put(ctx, p.bucket, key, data); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

// Get reads an object from the backend identified by endpoint.
func (p *Pool) Get(ctx context.Context, endpoint, key string) ([]byte, error) {
	backend, ok := p.byEndpoint[endpoint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, endpoint)
	}
	return backend.Get(ctx, p.bucket, key)
}

// LookupByHash returns the ContentObject for hash from the dedup cache,
// or kv.ErrNotFound.
func (p *Pool) LookupByHash(ctx context.Context, hash string) (*core.ContentObject, error) {
	raw, err := p.cache.Get(ctx, objectKeyPrefix+hash)
	if err != nil {
		return nil, err
	}
	var obj core.ContentObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", hash, err)
	}
	return &obj, nil
}

// Store places content in the pool, deduplicating by content hash.
//
// Cache-aside protocol, no locking: look up by hash; if found, union the
// caller's identity into the uploader set and write back; if not, place the
// object on the least-loaded backend and record metadata. Two concurrent
// uploads of the same unseen content can both take the not-found branch and
// both upload; that is benign duplication since both writes target the same
// hash-keyed object and the metadata merge converges the uploader set.
//
// Returns the resulting ContentObject and whether the content was new to
// the pool.
func (p *Pool) Store(ctx context.Context, identity, filename string, category core.Category, content []byte) (*core.ContentObject, bool, error) {
	if identity == "" {
		return nil, false, core.ErrEmptyIdentity
	}
	if len(content) == 0 {
		return nil, false, core.ErrEmptyContent
	}
	if !category.Valid() {
		return nil, false, fmt.Errorf("%w: %q", core.ErrInvalidCategory, category)
	}

	hash := core.HashContent(content)

	existing, err := p.LookupByHash(ctx, hash)
	if err == nil {
		merged, mergeErr := p.mergeUploader(ctx, hash, identity)
		if mergeErr != nil {
			return nil, false, mergeErr
		}
		p.logger.Info("duplicate upload, extended uploader set",
			"hash", hash, "identity", identity, "backend", existing.Backend)
		return merged, false, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return nil, false, err
	}

	target := p.SelectTarget(ctx)
	if err := target.Put(ctx, p.bucket, core.ObjectKey(hash), content); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	obj := &core.ContentObject{
		Hash:      hash,
		Category:  category,
		Backend:   target.Endpoint(),
		Users:     []string{identity},
		Name:      filename,
		Extension: filetype.Extension(filename),
		Uploaded:  time.Now().UTC(),
		Related:   []string{},
	}

	if err := p.recordObject(ctx, obj); err != nil {
		// Bytes exist on the backend but are undiscoverable.
		return nil, false, fmt.Errorf("%w: %v", ErrMetadataInconsistent, err)
	}

	p.mirrorMetadata(ctx, obj)

	p.logger.Info("stored new object",
		"hash", hash, "backend", target.Endpoint(), "category", category, "bytes", len(content))
	return obj, true, nil
}

// mergeUploader unions identity into the uploader set of hash with an
// optimistic read-modify-write, then returns the merged object.
func (p *Pool) mergeUploader(ctx context.Context, hash, identity string) (*core.ContentObject, error) {
	var merged core.ContentObject
	err := p.cache.Update(ctx, objectKeyPrefix+hash, 0, func(old []byte, found bool) ([]byte, error) {
		if !found {
			// Entry expired or was removed between lookup and merge;
			// nothing to converge with.
			return nil, kv.ErrNotFound
		}
		if err := json.Unmarshal(old, &merged); err != nil {
			return nil, err
		}
		merged.AddUser(identity)
		return json.Marshal(&merged)
	})
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

// recordObject writes obj to the dedup cache. When a concurrent upload of
// the same content won the race, the uploader sets are unioned rather than
// overwritten so both writers converge.
func (p *Pool) recordObject(ctx context.Context, obj *core.ContentObject) error {
	return p.cache.Update(ctx, objectKeyPrefix+obj.Hash, 0, func(old []byte, found bool) ([]byte, error) {
		if found {
			var prior core.ContentObject
			if err := json.Unmarshal(old, &prior); err == nil {
				for _, u := range prior.Users {
					obj.AddUser(u)
				}
			}
		}
		return json.Marshal(obj)
	})
}

// mirrorMetadata writes the metadata document next to the object bytes at
// {hash}/data.json. The cache is the discoverability source of truth; a
// mirror failure is logged, not fatal.
func (p *Pool) mirrorMetadata(ctx context.Context, obj *core.ContentObject) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return
	}
	if err := p.Put(ctx, obj.Backend, core.MetadataKey(obj.Hash), raw); err != nil {
		p.logger.Warn("failed to mirror object metadata",
			"hash", obj.Hash, "backend", obj.Backend, "err", err)
	}
}

// UpdateRelated appends artifact references to the object's metadata and
// refreshes the mirror.
func (p *Pool) UpdateRelated(ctx context.Context, hash string, refs []string) error {
	var updated core.ContentObject
	err := p.cache.Update(ctx, objectKeyPrefix+hash, 0, func(old []byte, found bool) ([]byte, error) {
		if !found {
			return nil, kv.ErrNotFound
		}
		if err := json.Unmarshal(old, &updated); err != nil {
			return nil, err
		}
		updated.Related = append(updated.Related, refs...)
		return json.Marshal(&updated)
	})
	if err != nil {
		return err
	}
	p.mirrorMetadata(ctx, &updated)
	return nil
}
