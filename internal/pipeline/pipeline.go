// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one book preparation: pre-flight checks, source
// acquisition, PDF normalisation, upload and bookkeeping. Stages run in
// order and the first failure ends the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/booknotes/internal/acquire"
	"github.com/pdiddy/booknotes/internal/convert"
	"github.com/pdiddy/booknotes/internal/library"
	"github.com/pdiddy/booknotes/internal/logger"
	"github.com/pdiddy/booknotes/internal/metrics"
	"github.com/pdiddy/booknotes/internal/naming"
	"github.com/pdiddy/booknotes/internal/upload"
	"github.com/pdiddy/booknotes/pkg/types"
)

var (
	ErrNoSource          = errors.New("provide either a search query or a file path")
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrDependencies      = errors.New("dependency check failed")
)

// SupportedExtensions lists the accepted local ebook formats.
var SupportedExtensions = []string{".epub", ".pdf", ".mobi", ".azw", ".azw3", ".txt", ".docx"}

// AcquireFunc searches for query and downloads the selected record,
// returning the local path.
type AcquireFunc func(ctx context.Context, query string, sel acquire.Selection) (string, error)

// Uploader ingests a PDF into the note-taking service.
type Uploader interface {
	Check(ctx context.Context) error
	Upload(ctx context.Context, pdf, bookName string) (types.Notebook, error)
}

// Library remembers prepared books.
type Library interface {
	Lookup(ctx context.Context, bookName string) (types.Notebook, error)
	Record(ctx context.Context, r types.Result) (types.Result, error)
}

// Notifier announces a finished book.
type Notifier interface {
	Notify(ctx context.Context, r types.Result) error
}

// Deps are the collaborators of a Pipeline. Acquire, Library, Notifier and
// Metrics are optional.
type Deps struct {
	Acquire   AcquireFunc
	Converter convert.Converter
	Uploader  Uploader
	Library   Library
	Notifier  Notifier
	Metrics   *metrics.Recorder
	Log       logrus.FieldLogger
}

// Options are the directories a run writes to.
type Options struct {
	TempDir   string
	OutputDir string
}

// Request describes one preparation. Exactly one of Query and File is used;
// File wins when both are set.
type Request struct {
	Query     string
	File      string
	Name      string
	Selection acquire.Selection
}

// Pipeline prepares books.
type Pipeline struct {
	deps Deps
	opts Options
}

// New creates a Pipeline.
func New(deps Deps, opts Options) *Pipeline {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	return &Pipeline{deps: deps, opts: opts}
}

// Check verifies the converter and the upload tool before any work. The
// converter is not needed, and not checked, when req names a local PDF.
func (p *Pipeline) Check(ctx context.Context, req Request) error {
	logger.Step(p.deps.Log, "Checking dependencies...")
	if req.File == "" || !convert.IsPDF(req.File) {
		if err := p.deps.Converter.Check(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrDependencies, err)
		}
	}
	if err := p.deps.Uploader.Check(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrDependencies, err)
	}
	logger.OK(p.deps.Log, "Dependencies OK")
	return nil
}

// Prepare runs the whole sequence for req and returns the result.
func (p *Pipeline) Prepare(ctx context.Context, req Request) (types.Result, error) {
	var result types.Result
	err := p.deps.Metrics.Time(metrics.StageRun, func() error {
		var err error
		result, err = p.prepare(ctx, req)
		return err
	})
	return result, err
}

func (p *Pipeline) prepare(ctx context.Context, req Request) (types.Result, error) {
	log := p.deps.Log
	if req.File == "" && req.Query == "" {
		return types.Result{}, ErrNoSource
	}
	if err := p.Check(ctx, req); err != nil {
		return types.Result{}, err
	}

	source, err := p.source(ctx, req)
	if err != nil {
		return types.Result{}, err
	}

	bookName := req.Name
	if bookName == "" {
		bookName = naming.BookName(source)
	}
	log.Infof("Book name: %s", bookName)

	var pdf string
	err = p.deps.Metrics.Time(metrics.StageConvert, func() error {
		var err error
		pdf, err = convert.ToPDF(ctx, p.deps.Converter, source, bookName, p.opts.TempDir, log)
		return err
	})
	if err != nil {
		return types.Result{}, err
	}

	var nb types.Notebook
	err = p.deps.Metrics.Time(metrics.StageUpload, func() error {
		var err error
		nb, err = p.Upload(ctx, pdf, bookName)
		return err
	})
	if err != nil {
		return types.Result{}, err
	}

	result := types.Result{
		Success:     true,
		BookName:    bookName,
		SourceFile:  source,
		PDFFile:     pdf,
		NotebookID:  nb.ID,
		NotebookURL: nb.URL,
		OutputDir:   p.opts.OutputDir,
	}
	return p.finish(ctx, result)
}

// source returns the local ebook to work on.
func (p *Pipeline) source(ctx context.Context, req Request) (string, error) {
	if req.File != "" {
		return checkLocalFile(req.File, p.deps.Log)
	}
	if p.deps.Acquire == nil {
		return "", fmt.Errorf("searching %q: no book source configured", req.Query)
	}

	var path string
	err := p.deps.Metrics.Time(metrics.StageDownload, func() error {
		var err error
		path, err = p.deps.Acquire(ctx, req.Query, req.Selection)
		return err
	})
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(path); err == nil {
		p.deps.Metrics.AddBytes(info.Size())
	}
	return path, nil
}

// checkLocalFile verifies path exists and has a supported extension.
func checkLocalFile(path string, log logrus.FieldLogger) (string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SupportedExtensions, ext) {
		log.Infof("Supported: %s", strings.Join(SupportedExtensions, ", "))
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
	log.Infof("Using local file: %s", path)
	return path, nil
}

// Upload runs the uploader. A notebook that already exists is resolved
// from the library, or named after the book when the library has no entry.
func (p *Pipeline) Upload(ctx context.Context, pdf, bookName string) (types.Notebook, error) {
	nb, err := p.deps.Uploader.Upload(ctx, pdf, bookName)
	if !errors.Is(err, upload.ErrAlreadyExists) {
		return nb, err
	}

	p.deps.Log.Warn("Notebook already exists")
	if p.deps.Library != nil {
		known, lerr := p.deps.Library.Lookup(ctx, bookName)
		if lerr == nil {
			return known, nil
		}
		if !errors.Is(lerr, library.ErrNotFound) {
			p.deps.Log.Warnf("Library lookup failed: %v", lerr)
		}
	}
	return types.Notebook{ID: naming.LibraryID(bookName)}, nil
}

// finish writes the manifest, records the result and sends the
// notification. Failures here are logged; the book is already prepared.
func (p *Pipeline) finish(ctx context.Context, r types.Result) (types.Result, error) {
	log := p.deps.Log
	r.PreparedAt = time.Now().UTC()

	if p.deps.Library != nil {
		if _, err := p.deps.Library.Record(ctx, r); err != nil {
			log.Warnf("Recording in library failed: %v", err)
		}
	}

	if p.opts.OutputDir != "" {
		path, err := library.WriteManifest(p.opts.OutputDir, r)
		if err != nil {
			log.Warnf("Writing manifest failed: %v", err)
		} else {
			log.Debugf("Manifest: %s", path)
		}
	}

	if p.deps.Notifier != nil {
		if err := p.deps.Notifier.Notify(ctx, r); err != nil {
			log.Warnf("Notification failed: %v", err)
		}
	}
	return r, nil
}
