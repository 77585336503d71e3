// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdiddy/booknotes/internal/container"
)

const (
	containerInDir  = "/in"
	containerOutDir = "/out"
)

// Container runs the converter binary inside a container image, for hosts
// without a local installation. The input and output directories are
// bind-mounted.
type Container struct {
	runtime container.Runtime
	image   string
	tool    string
}

// NewContainer creates a converter running tool from image on rt.
func NewContainer(rt container.Runtime, image, tool string) *Container {
	return &Container{runtime: rt, image: image, tool: tool}
}

func (c *Container) Name() string { return c.runtime.Name() + ":" + c.image }

// Check verifies the converter image exists locally.
func (c *Container) Check(ctx context.Context) error {
	if err := c.runtime.ImageExists(ctx, c.image); err != nil {
		return fmt.Errorf("converter image not available in %s: %w", c.runtime.Name(), err)
	}
	return nil
}

// Convert runs <tool> /in/<file> /out/<file> in a fresh container.
func (c *Container) Convert(ctx context.Context, in, out string) error {
	absIn, err := filepath.Abs(in)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", in, err)
	}
	absOut, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", out, err)
	}

	mounts := []container.Mount{
		{Source: filepath.Dir(absIn), Target: containerInDir},
		{Source: filepath.Dir(absOut), Target: containerOutDir},
	}
	res, err := c.runtime.Run(ctx, c.image, mounts, c.tool,
		containerInDir+"/"+filepath.Base(absIn),
		containerOutDir+"/"+filepath.Base(absOut),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConversionFailed, err)
	}
	if !res.Success() {
		return fmt.Errorf("%w: %s exited with code %d: %s",
			ErrConversionFailed, c.tool, res.ExitCode, res.StderrHead(stderrExcerpt))
	}
	return checkOutput(out)
}
