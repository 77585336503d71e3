// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"

	"github.com/pdiddy/booknotes/internal/executil"
)

// Calibre runs a locally installed converter binary such as calibre's
// ebook-convert.
type Calibre struct {
	tool   string
	runner executil.Runner
}

// NewCalibre creates a converter that invokes tool through runner.
func NewCalibre(tool string, runner executil.Runner) *Calibre {
	return &Calibre{tool: tool, runner: runner}
}

func (c *Calibre) Name() string { return c.tool }

// Check verifies the converter binary can be found.
func (c *Calibre) Check(context.Context) error {
	if _, err := c.runner.LookPath(c.tool); err != nil {
		return fmt.Errorf("converter not found: %s: %w", c.tool, err)
	}
	return nil
}

// Convert runs <tool> <in> <out>.
func (c *Calibre) Convert(ctx context.Context, in, out string) error {
	res, err := c.runner.Run(ctx, executil.Cmd{Name: c.tool, Args: []string{in, out}})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if !res.Success() {
		return fmt.Errorf("%w: %s exited with code %d: %s",
			ErrConversionFailed, c.tool, res.ExitCode, res.StderrHead(stderrExcerpt))
	}
	return checkOutput(out)
}
