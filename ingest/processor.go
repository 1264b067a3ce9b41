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

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/substratehq/depot/ai"
	"github.com/substratehq/depot/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// extraction is the intermediate product of content analysis: the text
// chunks to embed and, for visual content, page or photo images whose
// positions align with the chunk at the same index.
type extraction struct {
	chunks []string
	images [][]byte
}

// process runs one job to completion. The job's status is moved to
// Processing up front and lands on Completed or Failed; the manifest is
// written only after every artifact has been acknowledged. The work
// itself runs under the job timeout, but status writes use the parent
// context so an expired deadline cannot block the Failed transition.
func (p *Pipeline) process(ctx context.Context, job *core.IngestionJob) error {
	if err := p.tracker.Set(ctx, job.ID, core.StatusProcessing); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	if err := p.run(runCtx, job); err != nil {
		if statusErr := p.tracker.Set(ctx, job.ID, core.StatusFailed); statusErr != nil {
			p.logger.Error("recording job failure", "job", job.ID, "err", statusErr)
		}
		return err
	}

	return p.tracker.Set(ctx, job.ID, core.StatusCompleted)
}

func (p *Pipeline) run(ctx context.Context, job *core.IngestionJob) error {
	obj, err := p.pool.LookupByHash(ctx, job.Hash)
	if err != nil {
		return fmt.Errorf("lookup object: %w", err)
	}

	content, err := p.pool.Get(ctx, obj.Backend, core.ObjectKey(job.Hash))
	if err != nil {
		return fmt.Errorf("fetch object bytes: %w", err)
	}

	ex, err := p.extractContent(ctx, obj, content)
	if err != nil {
		return fmt.Errorf("extract content: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s/%s", obj.Backend, p.pool.Bucket(), core.ObjectKey(job.Hash))
	embedder := p.provider.Embedder()

	related := make([]string, 0, len(ex.chunks)+len(ex.images))

	for i, chunk := range ex.chunks {
		// Empty chunks (blank PDF pages) keep their slot so image
		// alignment holds, but produce no vector or artifact.
		if chunk == "" {
			continue
		}

		vec, err := embedder.EmbedText(ctx, chunk)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i+1, err)
		}
		// The ref mirrors the artifact file name so re-running a job
		// overwrites its own index records.
		ref := fmt.Sprintf("%d.%s", i+1, core.CategoryText)
		if err := p.index.Add(ctx, job.Collection, job.Hash, ref, location, vec); err != nil {
			return fmt.Errorf("index chunk %d: %w", i+1, err)
		}

		chunkKey := core.ChunkKey(job.Hash, i+1, core.CategoryText)
		if err := p.putArtifact(ctx, obj.Backend, chunkKey, []byte(chunk), vec); err != nil {
			return fmt.Errorf("store chunk %d: %w", i+1, err)
		}
		related = append(related, chunkKey)
	}

	for i, image := range ex.images {
		contextText, err := p.imageContext(ctx, ex.chunks, i, image)
		if err != nil {
			return fmt.Errorf("describe image %d: %w", i+1, err)
		}

		vec, err := embedder.EmbedImage(ctx, contextText, image)
		if err != nil {
			return fmt.Errorf("embed image %d: %w", i+1, err)
		}
		ref := fmt.Sprintf("%d.%s", i+1, core.CategoryPhoto)
		if err := p.index.Add(ctx, job.Collection, job.Hash, ref, location, vec); err != nil {
			return fmt.Errorf("index image %d: %w", i+1, err)
		}

		imageKey := core.ChunkKey(job.Hash, i+1, core.CategoryPhoto)
		if err := p.putArtifact(ctx, obj.Backend, imageKey, image, vec); err != nil {
			return fmt.Errorf("store image %d: %w", i+1, err)
		}
		related = append(related, imageKey)
	}

	manifest := core.Manifest{
		Version:    core.ManifestVersion,
		TextChunks: len(ex.chunks),
		Photos:     len(ex.images),
		JobID:      job.ID,
		Hash:       job.Hash,
		Related:    related,
		Name:       obj.Name,
		Extension:  obj.Extension,
	}
	manifestJSON, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := p.pool.Put(ctx, obj.Backend, core.ManifestKey(job.Hash), manifestJSON); err != nil {
		return fmt.Errorf("store manifest: %w", err)
	}

	if err := p.pool.UpdateRelated(ctx, job.Hash, related); err != nil {
		return fmt.Errorf("record related artifacts: %w", err)
	}

	p.logger.Info("ingestion job completed",
		"job", job.ID, "hash", job.Hash,
		"chunks", len(ex.chunks), "images", len(ex.images))
	return nil
}

// putArtifact writes a chunk payload and its paired embedding vector.
func (p *Pipeline) putArtifact(ctx context.Context, backend, key string, payload []byte, vec []float32) error {
	if err := p.pool.Put(ctx, backend, key, payload); err != nil {
		return err
	}
	vecJSON, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	return p.pool.Put(ctx, backend, key+".ENB", vecJSON)
}

// imageContext returns the text to pair with an image embedding: the
// chunk at the same index when one exists, otherwise a fresh model
// description of the image itself.
func (p *Pipeline) imageContext(ctx context.Context, chunks []string, i int, image []byte) (string, error) {
	if i < len(chunks) && chunks[i] != "" {
		return chunks[i], nil
	}
	return p.provider.Summarizer().Summarize(ctx, ai.PhotoPrompt, "image/png", image)
}

// extractContent derives text chunks and aligned images from the
// object's raw bytes, per content category.
func (p *Pipeline) extractContent(ctx context.Context, obj *core.ContentObject, content []byte) (*extraction, error) {
	switch obj.Category {
	case core.CategoryText:
		chunks, err := p.splitText(string(content))
		if err != nil {
			return nil, err
		}
		return &extraction{chunks: chunks}, nil

	case core.CategoryPDF:
		pages, err := p.pdf.ExtractPDF(ctx, content)
		if err != nil {
			return nil, err
		}
		ex := &extraction{
			chunks: make([]string, len(pages)),
			images: make([][]byte, len(pages)),
		}
		for i, page := range pages {
			ex.chunks[i] = page.Text
			ex.images[i] = page.ImagePNG
		}
		return ex, nil

	case core.CategoryPhoto:
		description, err := p.summarize(ctx, obj, content)
		if err != nil {
			return nil, err
		}
		chunks, err := p.splitText(description)
		if err != nil {
			return nil, err
		}
		return &extraction{chunks: chunks, images: [][]byte{content}}, nil

	case core.CategoryAudio, core.CategoryVideo:
		transcript, err := p.summarize(ctx, obj, content)
		if err != nil {
			return nil, err
		}
		chunks, err := p.splitText(transcript)
		if err != nil {
			return nil, err
		}
		return &extraction{chunks: chunks}, nil
	}

	return nil, fmt.Errorf("%w: %q", core.ErrInvalidCategory, obj.Category)
}

func (p *Pipeline) summarize(ctx context.Context, obj *core.ContentObject, content []byte) (string, error) {
	return p.provider.Summarizer().Summarize(ctx,
		ai.PromptFor(obj.Category), detectMIME(obj.Category, content), content)
}

func (p *Pipeline) splitText(text string) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(p.chunkSize),
		textsplitter.WithChunkOverlap(p.chunkOverlap),
	)
	return splitter.SplitText(text)
}

// detectMIME sniffs the content type, falling back to a category
// default when sniffing yields nothing useful.
func detectMIME(category core.Category, content []byte) string {
	mime := http.DetectContentType(content)
	if mime != "application/octet-stream" {
		return mime
	}
	switch category {
	case core.CategoryPhoto:
		return "image/png"
	case core.CategoryAudio:
		return "audio/mpeg"
	case core.CategoryVideo:
		return "video/mp4"
	}
	return mime
}
