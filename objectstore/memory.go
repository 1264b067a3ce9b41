package objectstore

import (
	"context"
	"fmt"
	"sync"
)

// MemoryClient is an in-memory Client for tests and local development.
// Behavior can be altered per backend via the fail flags.
type MemoryClient struct {
	endpoint string

	mu      sync.RWMutex
	buckets map[string]map[string][]byte

	// FailPuts makes every Put return an error.
	FailPuts bool
	// FailCounts makes every Count return an error, simulating an
	// unreachable backend during placement.
	FailCounts bool
}

var _ Client = (*MemoryClient)(nil)

// NewMemoryClient creates an empty in-memory backend with the given endpoint id.
func NewMemoryClient(endpoint string) *MemoryClient {
	return &MemoryClient{
		endpoint: endpoint,
		buckets:  make(map[string]map[string][]byte),
	}
}

func (m *MemoryClient) Endpoint() string {
	return m.endpoint
}

func (m *MemoryClient) Put(ctx context.Context, bucket, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.FailPuts {
		return fmt.Errorf("put %s/%s on %s: backend unavailable", bucket, key, m.endpoint)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		b = make(map[string][]byte)
		m.buckets[bucket] = b
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b[key] = cp
	return nil
}

func (m *MemoryClient) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("%w: bucket %s", ErrBucketNotFound, bucket)
	}
	data, ok := b[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, bucket, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryClient) Count(ctx context.Context, bucket string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if m.FailCounts {
		return 0, fmt.Errorf("count %s on %s: backend unavailable", bucket, m.endpoint)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.buckets[bucket]), nil
}

func (m *MemoryClient) EnsureBucket(ctx context.Context, bucket string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = make(map[string][]byte)
	}
	return nil
}

// Keys returns the keys present in bucket, for test assertions.
func (m *MemoryClient) Keys(bucket string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	return keys
}
