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

// Package objectstore abstracts a single object-storage backend.
//
// The storage pool composes several Clients into one logical store; each
// Client wraps one endpoint. Implementations convert transport errors into
// ordinary error returns at this boundary, never panics.
package objectstore

import (
	"context"
	"errors"
)

// Errors
var (
	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBucketNotFound indicates the bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
)

// Client is the minimal per-backend surface the pool needs.
// Implementations must be safe for concurrent use.
type Client interface {
	// Endpoint returns the stable identifier of this backend (e.g. its URL).
	Endpoint() string

	// Put uploads data under key, overwriting any existing object.
	Put(ctx context.Context, bucket, key string, data []byte) error

	// Get returns the object's bytes, or ErrObjectNotFound.
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Count returns the number of objects in bucket. Used only as a load
	// proxy for placement; an error here marks the backend unplaceable,
	// not broken.
	Count(ctx context.Context, bucket string) (int, error)

	// EnsureBucket creates bucket if it does not already exist.
	EnsureBucket(ctx context.Context, bucket string) error
}
