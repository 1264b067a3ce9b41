package filetype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/substratehq/depot/core"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		filename string
		want     core.Category
	}{
		{"notes.txt", core.CategoryText},
		{"README.MD", core.CategoryText},
		{"main.go", core.CategoryText},
		{"report.pdf", core.CategoryPDF},
		{"holiday.JPG", core.CategoryPhoto},
		{"diagram.png", core.CategoryPhoto},
		{"talk.mp3", core.CategoryAudio},
		{"clip.mov", core.CategoryVideo},
		{"archive/deep/path/data.csv", core.CategoryText},
	}

	for _, tt := range tests {
		got, err := Classify(tt.filename)
		require.NoError(t, err, tt.filename)
		assert.Equal(t, tt.want, got, tt.filename)
	}
}

func TestClassifyUnsupported(t *testing.T) {
	for _, name := range []string{"backup.zip", "binary.exe", "noextension", ""} {
		_, err := Classify(name)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, core.ErrUnsupportedType), name)
	}
}

func TestTableReturnsValidCategories(t *testing.T) {
	for ext, category := range categories {
		assert.True(t, category.Valid(), "extension %s maps to invalid category", ext)
	}
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "pdf", Extension("report.PDF"))
	assert.Equal(t, "txt", Extension("a/b/notes.txt"))
	assert.Equal(t, "", Extension("noextension"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("x.wav"))
	assert.False(t, Supported("x.tar"))
}
