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

// Package fitz implements extract.PDF with the MuPDF bindings.
package fitz

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/substratehq/depot/extract"
)

// renderDPI is the resolution used for page renderings handed to the
// image embedder.
const renderDPI = 300

// Extractor extracts text and page renderings from PDF documents.
type Extractor struct {
	logger *slog.Logger
}

var _ extract.PDF = (*Extractor)(nil)

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		logger: slog.Default().With("component", "pdf-extractor"),
	}
}

// ExtractPDF returns one Page per document page, in document order.
func (e *Extractor) ExtractPDF(ctx context.Context, data []byte) ([]extract.Page, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if total == 0 {
		return nil, extract.ErrNoPages
	}

	pages := make([]extract.Page, 0, total)
	for n := 0; n < total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("extract text from page %d: %w", n, err)
		}

		img, err := doc.ImageDPI(n, renderDPI)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", n, err)
		}

		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode page %d: %w", n, err)
		}

		pages = append(pages, extract.Page{
			Text:     strings.TrimSpace(text),
			ImagePNG: buf.Bytes(),
		})
	}

	e.logger.Debug("extracted pdf", "pages", len(pages))
	return pages, nil
}
