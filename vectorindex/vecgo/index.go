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

// Package vecgo provides an embedded vectorindex.Index backed by
// in-process flat indexes, one per collection.
package vecgo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	upstream "github.com/hupe1980/vecgo"
	"github.com/substratehq/depot/vectorindex"
)

// record is the payload stored alongside each vector.
type record struct {
	Hash     string
	Location string
}

// Index holds one exact-search index per collection. Collections are
// created lazily on first insert, with the dimensionality of the first
// vector they receive.
type Index struct {
	mu          sync.RWMutex
	collections map[string]*upstream.Vecgo[record]
	dims        map[string]int
	assigned    map[string]uint64
	logger      *slog.Logger
}

var _ vectorindex.Index = (*Index)(nil)

// New creates an empty embedded index.
func New() *Index {
	return &Index{
		collections: make(map[string]*upstream.Vecgo[record]),
		dims:        make(map[string]int),
		assigned:    make(map[string]uint64),
		logger:      slog.Default().With("component", "vector-index"),
	}
}

// Add upserts a vector record into the named collection. A record with
// the same id and ref replaces the earlier one, so re-ingesting an
// object converges instead of accumulating records.
func (x *Index) Add(ctx context.Context, collection, id, ref, location string, vector []float32) error {
	db, err := x.collectionFor(collection, len(vector))
	if err != nil {
		return err
	}

	item := upstream.VectorWithData[record]{
		Vector: vector,
		Data:   record{Hash: id, Location: location},
	}
	recordKey := collection + "\x00" + id + "\x00" + ref

	x.mu.Lock()
	internal, seen := x.assigned[recordKey]
	x.mu.Unlock()

	if seen {
		if err := db.Update(ctx, internal, item); err != nil {
			return fmt.Errorf("update in %q: %w", collection, err)
		}
		return nil
	}

	internal, err = db.Insert(ctx, item)
	if err != nil {
		return fmt.Errorf("insert into %q: %w", collection, err)
	}
	x.mu.Lock()
	x.assigned[recordKey] = internal
	x.mu.Unlock()
	return nil
}

// Search returns the k nearest records in the collection.
func (x *Index) Search(ctx context.Context, collection string, vector []float32, k int) ([]vectorindex.Match, error) {
	x.mu.RLock()
	db, ok := x.collections[collection]
	dim := x.dims[collection]
	x.mu.RUnlock()

	if !ok {
		return nil, vectorindex.ErrCollectionNotFound
	}
	if len(vector) != dim {
		return nil, vectorindex.ErrDimensionMismatch
	}

	results, err := db.Search(vector).KNN(k).Execute(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", collection, err)
	}

	matches := make([]vectorindex.Match, len(results))
	for i, r := range results {
		matches[i] = vectorindex.Match{
			ID:       r.Data.Hash,
			Location: r.Data.Location,
			Score:    r.Distance,
		}
	}
	return matches, nil
}

// Close releases all collections.
func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	for name, db := range x.collections {
		if err := db.Close(); err != nil {
			x.logger.Warn("closing collection", "collection", name, "err", err)
		}
	}
	x.collections = make(map[string]*upstream.Vecgo[record])
	x.dims = make(map[string]int)
	x.assigned = make(map[string]uint64)
	return nil
}

func (x *Index) collectionFor(name string, dim int) (*upstream.Vecgo[record], error) {
	x.mu.RLock()
	db, ok := x.collections[name]
	existing := x.dims[name]
	x.mu.RUnlock()
	if ok {
		if dim != existing {
			return nil, vectorindex.ErrDimensionMismatch
		}
		return db, nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if db, ok := x.collections[name]; ok {
		if dim != x.dims[name] {
			return nil, vectorindex.ErrDimensionMismatch
		}
		return db, nil
	}

	db, err := upstream.Flat[record](dim).Cosine().Build()
	if err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}
	x.collections[name] = db
	x.dims[name] = dim
	x.logger.Debug("created collection", "collection", name, "dim", dim)
	return db, nil
}
