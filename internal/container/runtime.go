// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects and drives a local container runtime. The
// conversion stage uses it to pipe documents through the markitdown image.
package container

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Runtime provides the container operations conversion needs: availability
// and image checks plus piped execution.
type Runtime interface {
	// Name returns the runtime binary name ("docker" or "podman").
	Name() string

	// Available reports whether the binary exists on PATH and responds
	// to an info command.
	Available() bool

	// ImageExists returns nil when the named image is present locally.
	ImageExists(image string) error

	// Run executes the image with stdin piped in and stdout captured.
	// Cancelling ctx kills the container process.
	Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error
}

// executor abstracts command execution so tests can fake the binaries.
type executor interface {
	LookPath(file string) (string, error)
	RunSilent(name string, args ...string) error
	RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error
}

type osExecutor struct{}

func (osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osExecutor) RunSilent(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

func (osExecutor) RunPiped(ctx context.Context, name string, args []string, stdin io.Reader, stdout io.Writer) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	return cmd.Run()
}

// runtime implements Runtime for one binary. Docker and podman differ only
// in the subcommand that checks image existence.
type runtime struct {
	bin           string
	imageCheckCmd []string
	exec          executor
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available() bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.RunSilent(r.bin, "info") == nil
}

func (r *runtime) ImageExists(image string) error {
	args := append(append([]string{}, r.imageCheckCmd...), image)
	if err := r.exec.RunSilent(r.bin, args...); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, image string, stdin io.Reader, stdout io.Writer) error {
	args := []string{"run", "--rm", "-i", image}
	if err := r.exec.RunPiped(ctx, r.bin, args, stdin, stdout); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, image, err)
	}
	return nil
}

var defaultExec executor = osExecutor{}

// Detect tries docker first, then podman. It fails only when neither
// runtime is operational.
func Detect() (Runtime, error) {
	return detect(defaultExec)
}

func detect(exec executor) (Runtime, error) {
	docker := &runtime{bin: binDocker, imageCheckCmd: []string{"image", "inspect"}, exec: exec}
	if docker.Available() {
		return docker, nil
	}

	podman := &runtime{bin: binPodman, imageCheckCmd: []string{"image", "exists"}, exec: exec}
	if podman.Available() {
		return podman, nil
	}

	return nil, fmt.Errorf("no container runtime available: neither %s nor %s found or operational", binDocker, binPodman)
}
