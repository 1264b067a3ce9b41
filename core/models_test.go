package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashContent(t *testing.T) {
	hash := HashContent([]byte("hello, world"))

	// SHA-256 hex digest is always 64 characters
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, HashContent([]byte("hello, world")))
	assert.NotEqual(t, hash, HashContent([]byte("hello, world!")))
}

func TestAddUser(t *testing.T) {
	obj := &ContentObject{Hash: "abc", Users: []string{"alice"}}

	require.True(t, obj.AddUser("bob"))
	assert.Equal(t, []string{"alice", "bob"}, obj.Users)

	// Re-adding an existing identity is a no-op
	require.False(t, obj.AddUser("alice"))
	assert.Len(t, obj.Users, 2)
}

func TestCategoryValid(t *testing.T) {
	for _, c := range []Category{CategoryText, CategoryPhoto, CategoryAudio, CategoryVideo, CategoryPDF} {
		assert.True(t, c.Valid(), "category %s", c)
	}
	assert.False(t, Category("DOC").Valid())
	assert.False(t, Category("").Valid())
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
}

func TestArtifactKeys(t *testing.T) {
	assert.Equal(t, "h1/h1", ObjectKey("h1"))
	assert.Equal(t, "h1/data.json", MetadataKey("h1"))
	assert.Equal(t, "h1/embedings/3.TXT", ChunkKey("h1", 3, CategoryText))
	assert.Equal(t, "h1/embedings/3.TXT.ENB", EmbeddingKey("h1", 3, CategoryText))
	assert.Equal(t, "h1/embedings/2.PHO", ChunkKey("h1", 2, CategoryPhoto))
	assert.Equal(t, "h1/embedings/data.json", ManifestKey("h1"))

	// Keys for different hashes never collide
	assert.NotEqual(t, ChunkKey("h1", 1, CategoryText), ChunkKey("h2", 1, CategoryText))
}
