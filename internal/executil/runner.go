// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package executil provides the subprocess helpers shared across stages.
// The converter, the container runtime and the upload tool all run through
// a Runner so tests can substitute scripted results.
package executil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Cmd describes a process invocation.
type Cmd struct {
	Name  string
	Args  []string
	Env   []string // appended to the parent environment
	Dir   string
	Stdin io.Reader
}

// String renders the command line for logs.
func (c Cmd) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with code 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Combined returns stdout followed by stderr.
func (r Result) Combined() string {
	return string(r.Stdout) + string(r.Stderr)
}

// StderrHead returns at most n characters of stderr, for error messages.
func (r Result) StderrHead(n int) string {
	s := strings.TrimSpace(string(r.Stderr))
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Runner runs external programs. A process that starts and exits non-zero
// yields a Result with its exit code and a nil error; an error means the
// process could not be run at all or the context ended.
type Runner interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, cmd Cmd) (Result, error)
}

// OS is the production Runner backed by os/exec.
type OS struct{}

func (OS) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (OS) Run(ctx context.Context, c Cmd) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdin = c.Stdin
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("running %s: %w", c.Name, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return res, fmt.Errorf("running %s: %w", c.Name, err)
	}
}
