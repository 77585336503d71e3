// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/booknotes/internal/executil"
)

// mockRunner records calls and returns configured responses.
type mockRunner struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether the command exits 0
	runFunc       func(cmd executil.Cmd) (executil.Result, error)
	calls         []string
}

func (m *mockRunner) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockRunner) Run(_ context.Context, cmd executil.Cmd) (executil.Result, error) {
	m.calls = append(m.calls, cmd.String())
	if m.runFunc != nil {
		return m.runFunc(cmd)
	}
	if m.runnableCmds[cmd.String()] {
		return executil.Result{}, nil
	}
	return executil.Result{ExitCode: 1}, nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		runner   *mockRunner
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			runner: &mockRunner{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			runner: &mockRunner{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			runner: &mockRunner{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			runner: &mockRunner{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			runner: &mockRunner{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := DetectRuntime(context.Background(), tt.runner)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(*mockRunner) Runtime
		image   string
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name:  "docker image exists",
			mkRT:  func(r *mockRunner) Runtime { return newDockerRuntime(r) },
			image: "booknotes/calibre:latest",
			cmds:  map[string]bool{"docker image inspect booknotes/calibre:latest": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(r *mockRunner) Runtime { return newDockerRuntime(r) },
			image:   "booknotes/calibre:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name:  "podman image exists",
			mkRT:  func(r *mockRunner) Runtime { return newPodmanRuntime(r) },
			image: "booknotes/calibre:latest",
			cmds:  map[string]bool{"podman image exists booknotes/calibre:latest": true},
		},
		{
			name:    "podman image not found",
			mkRT:    func(r *mockRunner) Runtime { return newPodmanRuntime(r) },
			image:   "booknotes/calibre:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{runnableCmds: tt.cmds}
			rt := tt.mkRT(runner)
			err := rt.ImageExists(context.Background(), tt.image)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.image) {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	mounts := []Mount{{Source: "/home/u/downloads", Target: "/in"}, {Source: "/home/u/temp", Target: "/out"}}

	tests := []struct {
		name     string
		mkRT     func(*mockRunner) Runtime
		runFunc  func(executil.Cmd) (executil.Result, error)
		wantCall string
		wantCode int
		wantErr  bool
	}{
		{
			name:     "docker run with mounts",
			mkRT:     func(r *mockRunner) Runtime { return newDockerRuntime(r) },
			wantCall: "docker run --rm -v /home/u/downloads:/in -v /home/u/temp:/out booknotes/calibre:latest ebook-convert /in/a.epub /out/a.pdf",
		},
		{
			name:     "podman run with mounts",
			mkRT:     func(r *mockRunner) Runtime { return newPodmanRuntime(r) },
			wantCall: "podman run --rm -v /home/u/downloads:/in -v /home/u/temp:/out booknotes/calibre:latest ebook-convert /in/a.epub /out/a.pdf",
		},
		{
			name: "non-zero exit is reported in the result",
			mkRT: func(r *mockRunner) Runtime { return newDockerRuntime(r) },
			runFunc: func(executil.Cmd) (executil.Result, error) {
				return executil.Result{ExitCode: 2, Stderr: []byte("conversion error")}, nil
			},
			wantCode: 2,
		},
		{
			name: "run failure returns wrapped error",
			mkRT: func(r *mockRunner) Runtime { return newDockerRuntime(r) },
			runFunc: func(executil.Cmd) (executil.Result, error) {
				return executil.Result{}, errors.New("exec: docker: not found")
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockRunner{
				runFunc:      tt.runFunc,
				runnableCmds: map[string]bool{tt.wantCall: tt.wantCall != ""},
			}
			rt := tt.mkRT(runner)
			res, err := rt.Run(context.Background(), "booknotes/calibre:latest", mounts, "ebook-convert", "/in/a.epub", "/out/a.pdf")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.ExitCode != tt.wantCode {
				t.Errorf("exit code = %d, want %d", res.ExitCode, tt.wantCode)
			}
			if tt.wantCall != "" && (len(runner.calls) != 1 || runner.calls[0] != tt.wantCall) {
				t.Errorf("calls = %v, want [%s]", runner.calls, tt.wantCall)
			}
		})
	}
}

func TestRuntimeName(t *testing.T) {
	runner := &mockRunner{}
	docker := newDockerRuntime(runner)
	if docker.Name() != "docker" {
		t.Errorf("docker runtime name = %q, want %q", docker.Name(), "docker")
	}
	podman := newPodmanRuntime(runner)
	if podman.Name() != "podman" {
		t.Errorf("podman runtime name = %q, want %q", podman.Name(), "podman")
	}
}
