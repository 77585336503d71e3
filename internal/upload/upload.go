// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package upload hands a PDF to the external note-taking upload tool and
// recovers the resulting notebook from the tool's console output.
package upload

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/booknotes/internal/executil"
	"github.com/pdiddy/booknotes/internal/logger"
	"github.com/pdiddy/booknotes/pkg/types"
)

// Uploader runs the upload script with its own interpreter.
type Uploader struct {
	cfg    types.UploadConfig
	runner executil.Runner
	log    logrus.FieldLogger
}

// New creates an Uploader.
func New(cfg types.UploadConfig, runner executil.Runner, log logrus.FieldLogger) *Uploader {
	return &Uploader{cfg: cfg, runner: runner, log: log}
}

// Check verifies the tool is installed: its directory, interpreter and script.
func (u *Uploader) Check(context.Context) error {
	for _, p := range []struct{ what, path string }{
		{"upload tool", u.cfg.SkillDir},
		{"upload interpreter", u.cfg.Python},
		{"upload script", u.cfg.Script},
	} {
		if _, err := os.Stat(p.path); err != nil {
			return fmt.Errorf("%s not found: %s", p.what, p.path)
		}
	}
	return nil
}

// Upload runs the script for pdf under the display name bookName. The
// exit code is not trusted; the outcome is read from the output.
func (u *Uploader) Upload(ctx context.Context, pdf, bookName string) (types.Notebook, error) {
	logger.Step(u.log, "Uploading: %s", bookName)

	args := []string{u.cfg.Script, "--file", pdf, "--name", bookName}
	args = append(args, u.cfg.Args...)
	res, err := u.runner.Run(ctx, executil.Cmd{
		Name: u.cfg.Python,
		Args: args,
		Env:  []string{"PYTHONIOENCODING=utf-8"},
	})
	if err != nil {
		return types.Notebook{}, fmt.Errorf("running upload tool: %w", err)
	}

	output := res.Combined()
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		u.log.Debug(line)
	}
	if !res.Success() {
		u.log.Warnf("Upload tool exited with code %d", res.ExitCode)
	}

	nb, err := ParseOutput(output)
	if err != nil {
		return types.Notebook{}, err
	}
	logger.OK(u.log, "Upload success!")
	u.log.Infof("  URL: %s", nb.URL)
	u.log.Infof("  ID: %s", nb.ID)
	return nb, nil
}
