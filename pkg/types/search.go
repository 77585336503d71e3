// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the booknotes pipeline:
// search-result records scraped from the bot, the messages the bot client
// exchanges, configuration, and the run results printed as JSON.
package types

// SearchResult is one candidate book scraped from a bot reply. Records
// have no identity beyond their position in the reply.
type SearchResult struct {
	// Title is the first line of the entry, without markdown emphasis.
	Title string `json:"title" yaml:"title"`

	// Author is the second line of the entry, without markdown emphasis.
	Author string `json:"author" yaml:"author"`

	// Language is the word following the globe marker (e.g. "english").
	Language string `json:"language" yaml:"language"`

	// Format is the upper-cased file format (e.g. "EPUB").
	Format string `json:"format" yaml:"format"`

	// Size is the human-readable size as printed by the bot (e.g. "1.2 MB").
	Size string `json:"size" yaml:"size"`

	// Command is the bot command that triggers the download (e.g. "/book123_ab12").
	Command string `json:"command" yaml:"command"`
}

// BotMessage is a chat message exchanged with the bot, reduced to the
// fields the pipeline needs.
type BotMessage struct {
	// ID is the message ID within the chat. IDs grow monotonically.
	ID int

	// Outgoing is true for messages sent by the logged-in user.
	Outgoing bool

	// Text is the plain message text.
	Text string

	// Document is the file attachment, if any.
	Document *Document
}

// Document describes a file attached to a message.
type Document struct {
	// FileName is the original file name reported by the sender. Empty when
	// the attachment carries no file name attribute.
	FileName string

	// Size is the attachment size in bytes.
	Size int64
}
