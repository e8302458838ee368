// Package tasks runs the developer automation sessions: tests,
// formatting and type checks, package builds, and container image
// publishing.
package tasks

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"kfpComponents/src/config"

	"github.com/pingcap/errors"
)

// Session is a named automation step runnable from the command line.
type Session struct {
	Name    string
	Summary string
	run     func(ctx context.Context, cfg *config.Config) error
}

var sessions = []Session{
	{
		Name:    "run_tests",
		Summary: "run the unit test suite",
		run: func(ctx context.Context, _ *config.Config) error {
			return runCmd(ctx, "go", "test", "./...")
		},
	},
	{
		Name:    "check_format",
		Summary: "verify all source files are gofmt-clean",
		run: func(ctx context.Context, _ *config.Config) error {
			return checkFormat(ctx)
		},
	},
	{
		Name:    "check_types",
		Summary: "run static analysis over all packages",
		run: func(ctx context.Context, _ *config.Config) error {
			return runCmd(ctx, "go", "vet", "./...")
		},
	},
	{
		Name:    "build_pkg",
		Summary: "compile all packages",
		run: func(ctx context.Context, _ *config.Config) error {
			return runCmd(ctx, "go", "build", "./...")
		},
	},
	{
		Name:    "push_image",
		Summary: "build the runtime container image and push it to the registry",
		run:     pushImage,
	},
}

// Names lists the available session names in declaration order.
func Names() []string {
	names := make([]string, 0, len(sessions))
	for _, s := range sessions {
		names = append(names, s.Name)
	}
	return names
}

// Run executes the named session.
func Run(ctx context.Context, name string, cfg *config.Config) error {
	for _, s := range sessions {
		if s.Name == name {
			return s.run(ctx, cfg)
		}
	}
	return errors.Errorf("unknown session %q, available sessions: %s", name, strings.Join(Names(), ", "))
}

func checkFormat(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "gofmt", "-l", ".")
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return errors.Annotatef(err, "failed to run gofmt")
	}
	dirty := strings.TrimSpace(string(out))
	if dirty != "" {
		return errors.Errorf("files need formatting:\n%s", dirty)
	}
	return nil
}

func pushImage(ctx context.Context, cfg *config.Config) error {
	image := cfg.Registry.Image
	if image == "" {
		return errors.New("registry.image must be configured for push_image")
	}

	if err := runCmd(ctx, "docker", "build", "-t", image, "."); err != nil {
		return errors.Annotatef(err, "failed to build image %s", image)
	}

	user := os.Getenv("REGISTRY_USERNAME")
	password := os.Getenv("REGISTRY_PASSWORD")
	if user != "" && password != "" {
		if err := dockerLogin(ctx, imageRegistry(image), user, password); err != nil {
			return errors.Annotatef(err, "failed to log in to registry")
		}
	}

	if err := runCmd(ctx, "docker", "push", image); err != nil {
		return errors.Annotatef(err, "failed to push image %s", image)
	}
	return nil
}

func dockerLogin(ctx context.Context, registry, user, password string) error {
	args := []string{"login", "--username", user, "--password-stdin"}
	if registry != "" {
		args = append(args, registry)
	}
	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdin = strings.NewReader(password)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// imageRegistry extracts the registry host from an image reference.
// References without an explicit host ("user/repo:tag") resolve to the
// default registry, reported as "".
func imageRegistry(image string) string {
	first, _, found := strings.Cut(image, "/")
	if !found {
		return ""
	}
	if strings.ContainsAny(first, ".:") || first == "localhost" {
		return first
	}
	return ""
}

func runCmd(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Annotatef(err, "%s %s", name, strings.Join(args, " "))
	}
	return nil
}
