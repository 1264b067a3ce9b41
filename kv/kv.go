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

// Package kv defines the key-value contract shared by the dedup cache and
// the job status store.
package kv

import (
	"context"
	"errors"
	"time"
)

// Storage errors
var (
	// ErrNotFound indicates the key does not exist or has expired.
	ErrNotFound = errors.New("key not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("store is closed")
)

// Store is a key-value store with per-key TTL. Implementations must be
// safe for concurrent use. There is no client-side locking; callers that
// need read-modify-write atomicity use Update.
type Store interface {
	// Get returns the value for key, or ErrNotFound if the key does not
	// exist or its TTL has elapsed.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes value under key. A zero ttl means the key never expires.
	// Writing refreshes the TTL of an existing key.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Update atomically applies merge to the current value of key and
	// writes the result. merge receives the existing value (nil, found=false
	// when absent) and returns the value to store. Concurrent updates to the
	// same key serialize; last merge wins over a stale snapshot.
	Update(ctx context.Context, key string, ttl time.Duration, merge func(old []byte, found bool) ([]byte, error)) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}
