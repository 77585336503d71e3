// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming derives file names and display names for books.
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxFilenameLen bounds sanitised file names, in runes.
	MaxFilenameLen = 100
	// MaxBookNameLen bounds derived display names, in runes.
	MaxBookNameLen = 50
)

var (
	forbiddenRe  = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRe = regexp.MustCompile(`[\s\p{Z}]+`)
)

// SanitizeFilename removes characters that are not allowed in paths on
// common filesystems, collapses whitespace and truncates the result to
// MaxFilenameLen runes.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = forbiddenRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(whitespaceRe.ReplaceAllString(name, " "))
	return truncate(name, MaxFilenameLen)
}

// BookName derives a display name from a file path: the file stem keeping
// only letters, digits, underscores, whitespace and hyphens, truncated to
// MaxBookNameLen runes.
func BookName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = norm.NFC.String(stem)

	var b strings.Builder
	for _, r := range stem {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return truncate(b.String(), MaxBookNameLen)
}

// WithExtension appends ext to name unless name already ends with it,
// compared case-insensitively.
func WithExtension(name, ext string) string {
	if ext == "" || strings.HasSuffix(strings.ToLower(name), strings.ToLower(ext)) {
		return name
	}
	return name + ext
}

// LibraryID is the identifier the note-taking service derives from a book
// name when it adds the notebook to its library.
func LibraryID(bookName string) string {
	id := strings.ToLower(bookName)
	id = strings.ReplaceAll(id, " ", "-")
	return strings.ReplaceAll(id, "_", "-")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
