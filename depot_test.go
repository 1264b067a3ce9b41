package depot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/depot/ai"
	"github.com/substratehq/depot/ai/mock"
	"github.com/substratehq/depot/core"
	"github.com/substratehq/depot/extract"
	"github.com/substratehq/depot/objectstore"
	"github.com/substratehq/depot/status"
)

type stubPDF struct {
	pages []extract.Page
}

func (s *stubPDF) ExtractPDF(ctx context.Context, data []byte) ([]extract.Page, error) {
	return s.pages, nil
}

func newTestDepot(t *testing.T) (*Depot, []*objectstore.MemoryClient) {
	t.Helper()

	backends := []*objectstore.MemoryClient{
		objectstore.NewMemoryClient("mem://one"),
		objectstore.NewMemoryClient("mem://two"),
	}
	clients := make([]objectstore.Client, len(backends))
	for i, b := range backends {
		clients[i] = b
	}

	d, err := New(context.Background(), "", clients, "depot",
		WithProvider(ai.NewProvider(mock.NewMockSummarizer(), mock.NewMockEmbedder())),
		WithPDFExtractor(&stubPDF{pages: []extract.Page{
			{Text: "stub page", ImagePNG: []byte("png")},
		}}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	return d, backends
}

func waitForTerminal(t *testing.T, d *Depot, jobID string) core.JobStatus {
	t.Helper()

	var state core.JobStatus
	require.Eventually(t, func() bool {
		s, err := d.JobStatus(context.Background(), jobID)
		if err != nil {
			return false
		}
		state = s
		return s.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return state
}

func TestUploadAndSearch(t *testing.T) {
	d, _ := newTestDepot(t)
	ctx := context.Background()

	result, err := d.Upload(ctx, "alice", "notes.txt", "library", []byte("the quick brown fox"))
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.NotEmpty(t, result.Hash)
	assert.NotEmpty(t, result.JobID)

	state := waitForTerminal(t, d, result.JobID)
	assert.Equal(t, core.StatusCompleted, state)

	matches, err := d.Search(ctx, "library", "the quick brown fox", 3)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, result.Hash, matches[0].ID)
}

func TestUploadDuplicate(t *testing.T) {
	d, _ := newTestDepot(t)
	ctx := context.Background()

	first, err := d.Upload(ctx, "alice", "notes.txt", "library", []byte("shared content"))
	require.NoError(t, err)
	waitForTerminal(t, d, first.JobID)

	second, err := d.Upload(ctx, "bob", "renamed.txt", "library", []byte("shared content"))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Hash, second.Hash)
	assert.Empty(t, second.JobID)

	obj, err := d.Pool().LookupByHash(ctx, first.Hash)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, obj.Users)
}

func TestUploadSpreadsAcrossBackends(t *testing.T) {
	d, backends := newTestDepot(t)
	ctx := context.Background()

	r1, err := d.Upload(ctx, "alice", "a.txt", "library", []byte("first document"))
	require.NoError(t, err)
	waitForTerminal(t, d, r1.JobID)

	r2, err := d.Upload(ctx, "alice", "b.txt", "library", []byte("second document"))
	require.NoError(t, err)
	waitForTerminal(t, d, r2.JobID)

	// After the first upload lands on one backend, the second goes to
	// the emptier one.
	one, err := backends[0].Count(ctx, "depot")
	require.NoError(t, err)
	two, err := backends[1].Count(ctx, "depot")
	require.NoError(t, err)
	assert.Greater(t, one, 0)
	assert.Greater(t, two, 0)
}

func TestUploadPDF(t *testing.T) {
	d, _ := newTestDepot(t)
	ctx := context.Background()

	result, err := d.Upload(ctx, "alice", "report.pdf", "library", []byte("%PDF fake"))
	require.NoError(t, err)

	state := waitForTerminal(t, d, result.JobID)
	assert.Equal(t, core.StatusCompleted, state)
}

func TestUploadUnsupportedType(t *testing.T) {
	d, _ := newTestDepot(t)

	_, err := d.Upload(context.Background(), "alice", "archive.zip", "library", []byte("zip bytes"))
	assert.ErrorIs(t, err, core.ErrUnsupportedType)
}

func TestJobStatusUnknown(t *testing.T) {
	d, _ := newTestDepot(t)

	_, err := d.JobStatus(context.Background(), "no-such-job")
	assert.ErrorIs(t, err, status.ErrUnknownJob)
}
