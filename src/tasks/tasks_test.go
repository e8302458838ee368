package tasks

import (
	"context"
	"strings"
	"testing"

	"kfpComponents/src/config"
)

func TestNames(t *testing.T) {
	want := []string{"run_tests", "check_format", "check_types", "build_pkg", "push_image"}
	got := Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunUnknownSession(t *testing.T) {
	err := Run(context.Background(), "lint_everything", config.Default())
	if err == nil {
		t.Fatal("Run accepted an unknown session")
	}
	if !strings.Contains(err.Error(), "run_tests") {
		t.Errorf("error %q does not list available sessions", err)
	}
}

func TestPushImageRequiresImage(t *testing.T) {
	cfg := config.Default()
	if err := Run(context.Background(), "push_image", cfg); err == nil {
		t.Error("push_image ran without registry.image configured")
	}
}

func TestImageRegistry(t *testing.T) {
	cases := map[string]string{
		"registry.example.com/team/app:v1": "registry.example.com",
		"localhost:5000/app":               "localhost:5000",
		"localhost/app":                    "localhost",
		"team/app:v1":                      "",
		"app:v1":                           "",
	}
	for image, want := range cases {
		if got := imageRegistry(image); got != want {
			t.Errorf("imageRegistry(%q) = %q, want %q", image, got, want)
		}
	}
}
