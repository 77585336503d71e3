// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search scrapes the ebook bot's text replies into search-result
// records. A reply lists candidate books, each introduced by the books
// marker and carrying a download command:
//
//	📚 **Title**
//	_Author_
//	🌐 english (epub, 1.2 MB)
//	/book123_ab12
package search

import (
	"regexp"
	"strings"

	"github.com/pdiddy/booknotes/pkg/types"
)

// Marker introduces every entry of a search reply.
const Marker = "📚"

const (
	maxTitleLen  = 80
	maxAuthorLen = 50
)

var (
	entrySplitRe = regexp.MustCompile(Marker + `\s*`)
	commandRe    = regexp.MustCompile(`(/book\d+(?:_[a-f0-9]+)?)`)
	languageRe   = regexp.MustCompile(`🌐\s*([\p{L}\p{N}_]+)`)
	formatSizeRe = regexp.MustCompile(`\((\w+),\s*([\d.]+\s*[KMG]?B)\)`)
)

// IsResultsMessage reports whether text looks like a search reply.
func IsResultsMessage(text string) bool {
	return strings.Contains(text, Marker)
}

// Parse extracts up to max records from a reply, in reply order. A max of
// zero or less keeps every record. Entries without a download command are
// skipped.
func Parse(text string, max int) []types.SearchResult {
	var results []types.SearchResult
	if text == "" {
		return results
	}

	entries := entrySplitRe.Split(text, -1)
	for _, entry := range entries[1:] {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		r, ok := parseEntry(entry)
		if !ok {
			continue
		}
		results = append(results, r)
		if max > 0 && len(results) >= max {
			break
		}
	}
	return results
}

func parseEntry(entry string) (types.SearchResult, bool) {
	m := commandRe.FindStringSubmatch(entry)
	if m == nil {
		return types.SearchResult{}, false
	}
	r := types.SearchResult{Command: m[1]}

	lines := strings.Split(strings.TrimSpace(entry), "\n")
	r.Title = truncate(trimDecoration(lines[0], "*"), maxTitleLen)
	if len(lines) > 1 {
		r.Author = truncate(trimDecoration(lines[1], "_"), maxAuthorLen)
	}

	if m := languageRe.FindStringSubmatch(entry); m != nil {
		r.Language = m[1]
	}
	if m := formatSizeRe.FindStringSubmatch(entry); m != nil {
		r.Format = strings.ToUpper(m[1])
		r.Size = m[2]
	}
	return r, true
}

// trimDecoration strips whitespace, then the markdown emphasis chars, then
// whitespace again.
func trimDecoration(s, chars string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), chars))
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
