// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package library

import (
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/booknotes/internal/naming"
	"github.com/pdiddy/booknotes/pkg/types"
)

// WriteManifest writes r to dir/<book name>.yaml and returns the path.
func WriteManifest(dir string, r types.Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	name := naming.SanitizeFilename(r.BookName)
	if name == "" {
		name = "book"
	}
	path := filepath.Join(dir, name+".yaml")

	data, err := yaml.Marshal(&r)
	if err != nil {
		return "", fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return path, nil
}
