package core

import "fmt"

// Object key layout. Every derived artifact lives under the content hash's
// namespace so re-running ingestion for the same hash overwrites its own
// artifacts and can never collide with another object's.
//
//	{hash}/{hash}                      original bytes
//	{hash}/data.json                   mirrored object metadata
//	{hash}/embedings/{i}.TXT           text chunk (1-based index)
//	{hash}/embedings/{i}.PHO           photo or page rendering
//	{hash}/embedings/{i}.{EXT}.ENB     paired embedding vector
//	{hash}/embedings/data.json         job manifest

// ObjectKey returns the key of the original object bytes.
func ObjectKey(hash string) string {
	return hash + "/" + hash
}

// MetadataKey returns the key of the mirrored object metadata document.
func MetadataKey(hash string) string {
	return hash + "/data.json"
}

// ChunkKey returns the key of the index-th chunk payload of the given kind.
func ChunkKey(hash string, index int, kind Category) string {
	return fmt.Sprintf("%s/embedings/%d.%s", hash, index, kind)
}

// EmbeddingKey returns the key of the embedding paired with the index-th chunk.
func EmbeddingKey(hash string, index int, kind Category) string {
	return ChunkKey(hash, index, kind) + ".ENB"
}

// ManifestKey returns the key of the job manifest.
func ManifestKey(hash string) string {
	return hash + "/embedings/data.json"
}
