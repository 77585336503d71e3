// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/booknotes/pkg/types"
)

const sampleReply = `Found 3 books for "dune":

📚 **Dune**
_Frank Herbert_
🌐 english (epub, 1.2 MB)
Download: /book101_a1b2c3

📚 **Dune Messiah**
_Frank Herbert_
🌐 english (pdf, 845 KB)
Download: /book202

📚 **Дюна**
_Фрэнк Герберт_
🌐 русский (fb2, 2.5 MB)
Download: /book303_ff00
`

func TestParse(t *testing.T) {
	got := Parse(sampleReply, 0)
	require.Len(t, got, 3)

	assert.Equal(t, types.SearchResult{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Language: "english",
		Format:   "EPUB",
		Size:     "1.2 MB",
		Command:  "/book101_a1b2c3",
	}, got[0])

	assert.Equal(t, "Dune Messiah", got[1].Title)
	assert.Equal(t, "PDF", got[1].Format)
	assert.Equal(t, "845 KB", got[1].Size)
	assert.Equal(t, "/book202", got[1].Command)

	assert.Equal(t, "Дюна", got[2].Title)
	assert.Equal(t, "Фрэнк Герберт", got[2].Author)
	assert.Equal(t, "русский", got[2].Language)
}

func TestParseRespectsMax(t *testing.T) {
	tests := []struct {
		name string
		max  int
		want []string
	}{
		{"unlimited", 0, []string{"Dune", "Dune Messiah", "Дюна"}},
		{"negative is unlimited", -1, []string{"Dune", "Dune Messiah", "Дюна"}},
		{"first two", 2, []string{"Dune", "Dune Messiah"}},
		{"one", 1, []string{"Dune"}},
		{"larger than reply", 10, []string{"Dune", "Dune Messiah", "Дюна"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(sampleReply, tt.max)
			titles := make([]string, len(got))
			for i, r := range got {
				titles[i] = r.Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestParseCommandsMatchTriggerPattern(t *testing.T) {
	trigger := regexp.MustCompile(`^/book\d+(?:_[a-f0-9]+)?$`)
	for _, r := range Parse(sampleReply, 0) {
		assert.Regexp(t, trigger, r.Command)
	}
}

func TestParseEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []types.SearchResult
	}{
		{
			name:  "empty text",
			input: "",
			want:  nil,
		},
		{
			name:  "no marker",
			input: "Nothing found, try another query /book1",
			want:  nil,
		},
		{
			name:  "entry without command is skipped",
			input: "📚 **Orphan**\n_Nobody_\n📚 **Kept**\n_Someone_\n/book7",
			want:  []types.SearchResult{{Title: "Kept", Author: "Someone", Command: "/book7"}},
		},
		{
			name:  "title only, command on same line",
			input: "📚 Solo /book9_abc",
			want:  []types.SearchResult{{Title: "Solo /book9_abc", Command: "/book9_abc"}},
		},
		{
			name:  "uppercase hex suffix is not part of command",
			input: "📚 T\nA\n/book5_ABC",
			want:  []types.SearchResult{{Title: "T", Author: "A", Command: "/book5"}},
		},
		{
			name:  "blank chunk between markers",
			input: "📚 \n📚 **B**\n/book2",
			want:  []types.SearchResult{{Title: "B", Author: "/book2", Command: "/book2"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input, 5))
		})
	}
}

func TestParseTruncatesLongFields(t *testing.T) {
	title := strings.Repeat("T", 120)
	author := strings.Repeat("Ж", 70)
	input := fmt.Sprintf("📚 **%s**\n_%s_\n/book1", title, author)

	got := Parse(input, 5)
	require.Len(t, got, 1)
	assert.Equal(t, strings.Repeat("T", maxTitleLen), got[0].Title)
	assert.Equal(t, strings.Repeat("Ж", maxAuthorLen), got[0].Author)
}

func TestIsResultsMessage(t *testing.T) {
	assert.True(t, IsResultsMessage(sampleReply))
	assert.False(t, IsResultsMessage("Searching..."))
}
