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

package core

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"time"
)

// Category classifies uploaded content by how the pipeline derives text from it.
// The string value doubles as the artifact extension code in object keys.
type Category string

const (
	// CategoryText is plain text content; the raw bytes decode directly.
	CategoryText Category = "TXT"
	// CategoryPhoto is image content described by a vision model.
	CategoryPhoto Category = "PHO"
	// CategoryAudio is audio content transcribed by a speech-capable model.
	CategoryAudio Category = "AUD"
	// CategoryVideo is video content transcribed by a multimodal model.
	CategoryVideo Category = "VID"
	// CategoryPDF is PDF content split into per-page text and page renders.
	CategoryPDF Category = "PDF"
)

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryText, CategoryPhoto, CategoryAudio, CategoryVideo, CategoryPDF:
		return true
	}
	return false
}

// HashContent returns the hex-encoded SHA-256 digest of data.
// The digest is the primary identity of a stored object: the dedup key,
// the object key prefix, and the vector record id all derive from it.
func HashContent(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ContentObject is the metadata record for one deduplicated stored object,
// keyed by its content hash. At most one ContentObject exists per hash.
type ContentObject struct {
	Hash      string    `json:"hash"`
	Category  Category  `json:"file_type"`
	Backend   string    `json:"server"`
	Users     []string  `json:"users"`
	Name      string    `json:"original_name"`
	Extension string    `json:"original_ext"`
	Uploaded  time.Time `json:"uploaded"`
	Related   []string  `json:"related_data"`
}

// AddUser unions identity into the uploader set. The set grows
// monotonically; it never shrinks. Reports whether the set changed.
func (o *ContentObject) AddUser(identity string) bool {
	if slices.Contains(o.Users, identity) {
		return false
	}
	o.Users = append(o.Users, identity)
	return true
}

// JobStatus is the lifecycle state of an ingestion job.
type JobStatus string

const (
	StatusPending    JobStatus = "Pending"
	StatusProcessing JobStatus = "Processing"
	StatusCompleted  JobStatus = "Completed"
	StatusFailed     JobStatus = "Failed"
)

// Terminal reports whether s permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IngestionJob is one asynchronous unit of work turning a stored object
// into searchable vector artifacts. Jobs expire from the status store
// after a bounded TTL; they are not an audit log.
type IngestionJob struct {
	ID         string
	Hash       string
	Collection string
	Created    time.Time
}

// Manifest summarizes a completed ingestion job. It is written under the
// content hash's namespace only after every chunk and embedding artifact
// has been acknowledged, so its presence marks job completion.
type Manifest struct {
	Version    string   `json:"version"`
	TextChunks int      `json:"text_chunks"`
	Photos     int      `json:"photos"`
	JobID      string   `json:"job_id"`
	Hash       string   `json:"hash"`
	Related    []string `json:"related_data"`
	Name       string   `json:"original_name"`
	Extension  string   `json:"original_ext"`
}

// ManifestVersion is the current manifest schema version.
const ManifestVersion = "0.1.0"
