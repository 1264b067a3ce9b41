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

// Package status tracks ingestion job lifecycle state.
//
// Jobs are bounded-lifetime records in a shared KV store, not an audit log:
// every write refreshes the TTL and expired entries read as unknown.
package status

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/substratehq/depot/core"
	"github.com/substratehq/depot/kv"
)

const statusKeyPrefix = "embedding_status:"

// DefaultTTL bounds how long a job record outlives its last status write.
const DefaultTTL = time.Hour

var (
	// ErrUnknownJob indicates the job id does not exist or has expired.
	// Distinct from every defined status.
	ErrUnknownJob = errors.New("unknown job")

	// ErrTerminalState indicates a write against a Completed or Failed job.
	ErrTerminalState = errors.New("job already in terminal state")

	// ErrInvalidTransition indicates a status write that would move the
	// job backwards in its lifecycle.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Tracker records job statuses in a KV store.
type Tracker struct {
	store  kv.Store
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker) error

// WithTTL sets the record lifetime. Default is DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) error {
		if ttl <= 0 {
			return fmt.Errorf("ttl must be positive")
		}
		t.ttl = ttl
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger.With("component", "status")
		return nil
	}
}

// NewTracker creates a Tracker over store.
func NewTracker(store kv.Store, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("status store required")
	}
	t := &Tracker{
		store:  store,
		ttl:    DefaultTTL,
		logger: slog.Default().With("component", "status"),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// CreateJob mints a new job for the given content hash and collection and
// records it as Pending.
func (t *Tracker) CreateJob(ctx context.Context, hash, collection string) (*core.IngestionJob, error) {
	job := &core.IngestionJob{
		ID:         uuid.NewString(),
		Hash:       hash,
		Collection: collection,
		Created:    time.Now().UTC(),
	}
	if err := t.store.Set(ctx, statusKeyPrefix+job.ID, []byte(core.StatusPending), t.ttl); err != nil {
		return nil, err
	}
	t.logger.Info("created job", "job", job.ID, "hash", hash, "collection", collection)
	return job, nil
}

// Get returns the current status of a job, or ErrUnknownJob.
func (t *Tracker) Get(ctx context.Context, jobID string) (core.JobStatus, error) {
	raw, err := t.store.Get(ctx, statusKeyPrefix+jobID)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
		}
		return "", err
	}
	return core.JobStatus(raw), nil
}

// Set transitions a job to next. Transitions are monotonic and
// one-directional; terminal states accept no further writes. Re-entering
// Processing is permitted so a restarted worker can resume a job it had
// already begun. Every accepted write refreshes the record TTL.
func (t *Tracker) Set(ctx context.Context, jobID string, next core.JobStatus) error {
	err := t.store.Update(ctx, statusKeyPrefix+jobID, t.ttl, func(old []byte, found bool) ([]byte, error) {
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownJob, jobID)
		}
		current := core.JobStatus(old)
		if current.Terminal() {
			return nil, fmt.Errorf("%w: %s is %s", ErrTerminalState, jobID, current)
		}
		if rank(next) < rank(current) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, next)
		}
		return []byte(next), nil
	})
	if err != nil {
		return err
	}
	t.logger.Debug("job status updated", "job", jobID, "status", next)
	return nil
}

func rank(s core.JobStatus) int {
	switch s {
	case core.StatusPending:
		return 1
	case core.StatusProcessing:
		return 2
	case core.StatusCompleted, core.StatusFailed:
		return 3
	}
	return 0
}
