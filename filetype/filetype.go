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

// Package filetype maps filename extensions to content categories.
//
// Classification happens before any bytes are persisted so that unsupported
// input is rejected without paying upload cost.
package filetype

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/substratehq/depot/core"
)

// categories is the static classification table. Extensions are lowercase
// with the leading dot.
var categories = map[string]core.Category{
	// Documents and source files, treated as plain text
	".doc":   core.CategoryText,
	".docx":  core.CategoryText,
	".rtf":   core.CategoryText,
	".wpd":   core.CategoryText,
	".txt":   core.CategoryText,
	".md":    core.CategoryText,
	".csv":   core.CategoryText,
	".bat":   core.CategoryText,
	".sh":    core.CategoryText,
	".html":  core.CategoryText,
	".htm":   core.CategoryText,
	".xhtml": core.CategoryText,
	".css":   core.CategoryText,
	".c":     core.CategoryText,
	".h":     core.CategoryText,
	".js":    core.CategoryText,
	".py":    core.CategoryText,
	".lua":   core.CategoryText,
	".go":    core.CategoryText,

	// PDFs get per-page extraction and rendering
	".pdf": core.CategoryPDF,

	// Images
	".jpeg": core.CategoryPhoto,
	".jpg":  core.CategoryPhoto,
	".png":  core.CategoryPhoto,
	".gif":  core.CategoryPhoto,
	".heif": core.CategoryPhoto,
	".bmp":  core.CategoryPhoto,
	".tif":  core.CategoryPhoto,
	".webp": core.CategoryPhoto,
	".eps":  core.CategoryPhoto,

	// Audio
	".mp3": core.CategoryAudio,
	".wav": core.CategoryAudio,
	".wma": core.CategoryAudio,
	".aac": core.CategoryAudio,

	// Video
	".3gp": core.CategoryVideo,
	".mp4": core.CategoryVideo,
	".avi": core.CategoryVideo,
	".mpg": core.CategoryVideo,
	".mov": core.CategoryVideo,
	".wmv": core.CategoryVideo,
}

// Classify returns the category for a filename, derived from its extension.
// Unknown extensions return core.ErrUnsupportedType.
func Classify(filename string) (core.Category, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	category, ok := categories[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedType, ext)
	}
	return category, nil
}

// Extension returns the lowercase extension of a filename, without the dot.
func Extension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// Supported reports whether the filename's extension is classifiable.
func Supported(filename string) bool {
	_, err := Classify(filename)
	return err == nil
}
