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

// Package extract defines document content extraction contracts.
package extract

import (
	"context"
	"errors"
)

// ErrNoPages indicates the document contained no extractable pages.
var ErrNoPages = errors.New("extract: document has no pages")

// Page holds the extracted content of a single document page. Text may
// be empty for pages without a text layer; ImagePNG always holds a
// rendering of the page.
type Page struct {
	Text     string
	ImagePNG []byte
}

// PDF extracts per-page text and page renderings from PDF bytes.
// Implementations must return pages in document order so text and
// image sequences stay index aligned.
type PDF interface {
	ExtractPDF(ctx context.Context, data []byte) ([]Page, error)
}
