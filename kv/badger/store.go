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

// Package badger implements kv.Store on BadgerDB.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/substratehq/depot/kv"
)

// maxUpdateRetries bounds optimistic-merge retries under write contention.
const maxUpdateRetries = 16

// Store wraps a BadgerDB instance behind the kv.Store contract.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ kv.Store = (*Store)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// Open opens a BadgerDB store at the given path, creating the directory if
// needed. With inMemory set, filePath is ignored and nothing is persisted;
// this mode backs tests.
func Open(filePath string, inMemory bool) (*Store, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "kv-badger"),
	}, nil
}

// Get returns the value for key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, kv.ErrNotFound
		}
		if errors.Is(err, badger.ErrDBClosed) {
			return nil, kv.ErrStoreClosed
		}
		return nil, err
	}
	return value, nil
}

// Set writes value under key with the given TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return kv.ErrStoreClosed
	}
	return err
}

// Update atomically applies merge to the current value of key. Badger's
// serializable transactions detect write conflicts; a conflicting update is
// retried against the fresh value, which gives the optimistic-merge
// semantics the dedup protocol relies on.
func (s *Store) Update(ctx context.Context, key string, ttl time.Duration, merge func(old []byte, found bool) ([]byte, error)) error {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.db.Update(func(txn *badger.Txn) error {
			var old []byte
			found := true
			item, err := txn.Get([]byte(key))
			if err != nil {
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
				found = false
			} else {
				old, err = item.ValueCopy(nil)
				if err != nil {
					return err
				}
			}

			merged, err := merge(old, found)
			if err != nil {
				return err
			}

			entry := badger.NewEntry([]byte(key), merged)
			if ttl > 0 {
				entry = entry.WithTTL(ttl)
			}
			return txn.SetEntry(entry)
		})
		if errors.Is(err, badger.ErrConflict) {
			s.logger.Debug("update conflict, retrying", "key", key, "attempt", attempt)
			continue
		}
		if errors.Is(err, badger.ErrDBClosed) {
			return kv.ErrStoreClosed
		}
		return err
	}
	return fmt.Errorf("update of %q: retries exhausted under contention", key)
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if errors.Is(err, badger.ErrDBClosed) {
		return kv.ErrStoreClosed
	}
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
