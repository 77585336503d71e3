// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Result is the outcome of a full preparation run. It is printed as the
// RESULT JSON blob, written as the output manifest and stored in the library.
type Result struct {
	Success     bool   `json:"success" yaml:"success"`
	BookName    string `json:"book_name" yaml:"book_name"`
	SourceFile  string `json:"source_file" yaml:"source_file"`
	PDFFile     string `json:"pdf_file" yaml:"pdf_file"`
	NotebookID  string `json:"notebook_id" yaml:"notebook_id"`
	NotebookURL string `json:"notebook_url" yaml:"notebook_url"`
	OutputDir   string `json:"output_dir" yaml:"output_dir"`

	// PreparedAt is set when the result is recorded in the library.
	PreparedAt time.Time `json:"prepared_at,omitzero" yaml:"prepared_at,omitempty"`
}

// DownloadResult is printed by the download command.
type DownloadResult struct {
	Success bool   `json:"success"`
	File    string `json:"file"`
	Size    int64  `json:"size"`
}

// Notebook identifies a notebook in the note-taking service. URL is empty
// when the notebook already existed and its URL could not be recovered.
type Notebook struct {
	ID  string `json:"notebook_id"`
	URL string `json:"notebook_url"`
}
