// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package naming

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Dune.epub", "Dune.epub"},
		{"forbidden chars", `a<b>c:d"e/f\g|h?i*j.pdf`, "abcdefghij.pdf"},
		{"collapses whitespace", "  The   Left\tHand \n of Darkness.mobi ", "The Left Hand of Darkness.mobi"},
		{"keeps unicode", "Мастер и Маргарита.fb2", "Мастер и Маргарита.fb2"},
		{"only forbidden", `<>:"/\|?*`, ""},
		{"composes decomposed accents", "Cafe\u0301.epub", "Caf\u00e9.epub"},
		{"collapses unicode spaces", "Deep\u00a0\u00a0Work\u3000\u3000Notes", "Deep Work Notes"},
		{"trims unicode spaces", "\u2003Dune\u00a0.epub\u3000", "Dune .epub"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilenameTruncates(t *testing.T) {
	long := strings.Repeat("ю", 150)
	got := SanitizeFilename(long)
	assert.Equal(t, MaxFilenameLen, len([]rune(got)))

	assert.Equal(t, strings.Repeat("a", MaxFilenameLen), SanitizeFilename(strings.Repeat("a", MaxFilenameLen)))
}

func TestBookName(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"strips extension and dir", "/downloads/Dune.epub", "Dune"},
		{"drops punctuation", "downloads/Dune (Frank Herbert, 1965).epub", "Dune Frank Herbert 1965"},
		{"keeps hyphen and underscore", "my_book-v2.pdf", "my_book-v2"},
		{"keeps CJK", "三体.epub", "三体"},
		{"truncates", strings.Repeat("x", 80) + ".pdf", strings.Repeat("x", MaxBookNameLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BookName(tt.path))
		})
	}
}

func TestWithExtension(t *testing.T) {
	assert.Equal(t, "Dune.epub", WithExtension("Dune", ".epub"))
	assert.Equal(t, "Dune.EPUB", WithExtension("Dune.EPUB", ".epub"))
	assert.Equal(t, "Dune", WithExtension("Dune", ""))
}

func TestLibraryID(t *testing.T) {
	assert.Equal(t, "the-left-hand-of-darkness", LibraryID("The Left_Hand of Darkness"))
}
