// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library records prepared books in a SQLite database and writes a
// YAML manifest per book. The history lets a later run recover the notebook
// of a book that the upload tool reports as already existing.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/booknotes/pkg/types"
)

// ErrNotFound is returned by Lookup when no notebook is recorded for a book.
var ErrNotFound = errors.New("book not found in library")

const defaultListLimit = 20

// timeLayout has a fixed width so prepared_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store manages the library SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the library database at path and creates the
// schema if it does not exist.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating library directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS books (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			book_name TEXT NOT NULL COLLATE NOCASE,
			source_file TEXT,
			pdf_file TEXT,
			notebook_id TEXT,
			notebook_url TEXT,
			output_dir TEXT,
			prepared_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_books_name ON books(book_name)`,
		`CREATE INDEX IF NOT EXISTS idx_books_prepared_at ON books(prepared_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends a prepared book to the history. A zero PreparedAt is set
// to the current time; the stored value is returned in the result.
func (s *Store) Record(ctx context.Context, r types.Result) (types.Result, error) {
	if r.PreparedAt.IsZero() {
		r.PreparedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books (book_name, source_file, pdf_file, notebook_id, notebook_url, output_dir, prepared_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.BookName, r.SourceFile, r.PDFFile, r.NotebookID, r.NotebookURL, r.OutputDir,
		r.PreparedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return r, fmt.Errorf("recording %s: %w", r.BookName, err)
	}
	return r, nil
}

// Lookup returns the most recently recorded notebook for bookName. Names
// compare case-insensitively.
func (s *Store) Lookup(ctx context.Context, bookName string) (types.Notebook, error) {
	var nb types.Notebook
	err := s.db.QueryRowContext(ctx,
		`SELECT notebook_id, notebook_url FROM books
		 WHERE book_name = ? AND notebook_url <> ''
		 ORDER BY prepared_at DESC, id DESC LIMIT 1`, bookName,
	).Scan(&nb.ID, &nb.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return nb, fmt.Errorf("%w: %s", ErrNotFound, bookName)
	}
	if err != nil {
		return nb, fmt.Errorf("looking up %s: %w", bookName, err)
	}
	return nb, nil
}

// QueryOptions filters List.
type QueryOptions struct {
	// Filter matches a substring of the book name or source file.
	Filter string

	// Limit caps the number of rows. Zero uses the default.
	Limit int
}

// List returns recorded books, newest first.
func (s *Store) List(ctx context.Context, opts QueryOptions) ([]types.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(
		`SELECT book_name, source_file, pdf_file, notebook_id, notebook_url, output_dir, prepared_at
		FROM books WHERE 1=1`)
	if opts.Filter != "" {
		qb.WriteString(` AND (book_name LIKE ? ESCAPE '\' OR source_file LIKE ? ESCAPE '\')`)
		pattern := "%" + escapeLike(opts.Filter) + "%"
		args = append(args, pattern, pattern)
	}
	qb.WriteString(` ORDER BY prepared_at DESC, id DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying library: %w", err)
	}
	defer rows.Close()

	var results []types.Result
	for rows.Next() {
		var r types.Result
		var source, pdf, id, url, out, at sql.NullString
		if err := rows.Scan(&r.BookName, &source, &pdf, &id, &url, &out, &at); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		r.Success = true
		r.SourceFile = source.String
		r.PDFFile = pdf.String
		r.NotebookID = id.String
		r.NotebookURL = url.String
		r.OutputDir = out.String
		if t, err := time.Parse(timeLayout, at.String); err == nil {
			r.PreparedAt = t
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
