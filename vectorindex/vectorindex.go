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

// Package vectorindex defines the embedding index contract.
package vectorindex

import (
	"context"
	"errors"
)

// Errors returned by Index implementations.
var (
	// ErrCollectionNotFound indicates a search against a collection
	// that holds no records.
	ErrCollectionNotFound = errors.New("vectorindex: collection not found")

	// ErrDimensionMismatch indicates a vector whose dimensionality
	// differs from the collection's existing records.
	ErrDimensionMismatch = errors.New("vectorindex: vector dimension mismatch")
)

// Match is a single search hit.
type Match struct {
	// ID is the content hash the record was stored under.
	ID string

	// Location is the URI recorded at insert time, pointing at the
	// object's storage backend.
	Location string

	// Score is the similarity distance; lower means closer.
	Score float32
}

// Index stores embedding vectors grouped by collection and serves
// nearest neighbor queries over them.
type Index interface {
	// Add upserts a vector record. id is the content hash and appears
	// once per chunk; ref distinguishes the records of one object and
	// is stable across runs, so re-ingesting a hash overwrites its
	// records instead of appending new ones.
	Add(ctx context.Context, collection, id, ref, location string, vector []float32) error

	// Search returns up to k nearest matches for the query vector.
	Search(ctx context.Context, collection string, vector []float32, k int) ([]Match, error)

	// Close releases index resources.
	Close() error
}
