// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container implements container runtime detection and execution
// for tools that are shipped as images rather than installed locally.
package container

import (
	"context"
	"fmt"

	"github.com/pdiddy/booknotes/internal/executil"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Mount binds a host directory into the container.
type Mount struct {
	Source string
	Target string
}

func (m Mount) flag() string {
	return m.Source + ":" + m.Target
}

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available(ctx context.Context) bool

	// ImageExists checks whether the named image exists locally.
	// Returns nil when the image is found, or an error describing the failure.
	ImageExists(ctx context.Context, image string) error

	// Run executes args inside a fresh container of image with the given
	// mounts, removing the container afterwards.
	Run(ctx context.Context, image string, mounts []Mount, args ...string) (executil.Result, error)
}

// runtime implements Runtime for a specific container binary. Both Docker
// and Podman share the same logic; they differ only in binary name and the
// subcommand used to check image existence.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	runner        executil.Runner
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	if _, err := r.runner.LookPath(r.bin); err != nil {
		return false
	}
	res, err := r.runner.Run(ctx, executil.Cmd{Name: r.bin, Args: []string{"info"}})
	return err == nil && res.Success()
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	res, err := r.runner.Run(ctx, executil.Cmd{Name: r.bin, Args: args})
	if err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	if !res.Success() {
		return fmt.Errorf("image %s not found in %s: exit code %d", image, r.bin, res.ExitCode)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, mounts []Mount, args ...string) (executil.Result, error) {
	cmdArgs := []string{"run", "--rm"}
	for _, m := range mounts {
		cmdArgs = append(cmdArgs, "-v", m.flag())
	}
	cmdArgs = append(cmdArgs, image)
	cmdArgs = append(cmdArgs, args...)

	res, err := r.runner.Run(ctx, executil.Cmd{Name: r.bin, Args: cmdArgs})
	if err != nil {
		return res, fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return res, nil
}

func newDockerRuntime(runner executil.Runner) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		runner:        runner,
	}
}

func newPodmanRuntime(runner executil.Runner) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		runner:        runner,
	}
}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime(ctx context.Context, runner executil.Runner) (Runtime, error) {
	docker := newDockerRuntime(runner)
	if docker.Available(ctx) {
		return docker, nil
	}

	podman := newPodmanRuntime(runner)
	if podman.Available(ctx) {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}
