// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert normalises ebooks to PDF with an external converter.
// The converter is a black box invoked as <tool> <input> <output>; success
// means exit code 0 and an output file on disk.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/booknotes/internal/logger"
	"github.com/pdiddy/booknotes/internal/naming"
)

// ErrConversionFailed is returned when the converter exits non-zero or
// produces no output file.
var ErrConversionFailed = errors.New("conversion failed")

// stderrExcerpt bounds how much converter stderr is quoted in errors.
const stderrExcerpt = 200

// Converter turns the file at in into a PDF at out.
type Converter interface {
	// Name identifies the backend in logs.
	Name() string

	// Check verifies the converter can run, before any work is done.
	Check(ctx context.Context) error

	// Convert writes a PDF rendering of in to out.
	Convert(ctx context.Context, in, out string) error
}

// ToPDF produces <tempDir>/<bookName>.pdf from in. A PDF input is copied
// as is; anything else goes through c. It returns the output path.
func ToPDF(ctx context.Context, c Converter, in, bookName, tempDir string, log logrus.FieldLogger) (string, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", tempDir, err)
	}
	out := filepath.Join(tempDir, naming.SanitizeFilename(bookName)+".pdf")

	ext := filepath.Ext(in)
	if IsPDF(in) {
		log.Info("File is already PDF, copying...")
		if err := copyFile(in, out); err != nil {
			return "", fmt.Errorf("copying %s: %w", in, err)
		}
		logger.OK(log, "Copied to: %s", out)
		return out, nil
	}

	logger.Step(log, "Converting %s -> PDF...", ext)
	if err := c.Convert(ctx, in, out); err != nil {
		return "", err
	}
	logger.OK(log, "Converted: %s", out)
	return out, nil
}

// IsPDF reports whether path has a .pdf extension, in any case. Such input
// is copied and never reaches a Converter.
func IsPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// copyFile copies src to dst through a temporary file in dst's directory.
// Copying a file onto itself is a no-op.
func copyFile(src, dst string) error {
	if same, err := samePath(src, dst); err == nil && same {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".convert-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, in)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return copyErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return closeErr
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}

// checkOutput confirms the converter left a file at out.
func checkOutput(out string) error {
	if _, err := os.Stat(out); err != nil {
		return fmt.Errorf("%w: output file not created", ErrConversionFailed)
	}
	return nil
}

// Unavailable stands in for a backend that could not be set up. Check and
// Convert report Err, so only PDF input can pass through ToPDF.
type Unavailable struct {
	Err error
}

func (u Unavailable) Name() string { return "unavailable" }

func (u Unavailable) Check(context.Context) error { return u.Err }

func (u Unavailable) Convert(context.Context, string, string) error { return u.Err }
