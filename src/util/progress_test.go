package util

import (
	"strings"
	"testing"
)

func TestFixWidth(t *testing.T) {
	cases := map[string]struct {
		in    string
		width int
		want  string
	}{
		"pads short strings":  {"abc", 5, "abc  "},
		"keeps exact strings": {"abcde", 5, "abcde"},
		"trims long strings":  {"abcdefgh", 5, "abcde"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := fixWidth(tc.in, tc.width); got != tc.want {
				t.Errorf("fixWidth(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
			}
		})
	}
}

func TestProgressLoggerCounters(t *testing.T) {
	p := NewProgressLogger(0, "writing", 0)

	p.UpdateFiles(2)
	p.UpdateBytes(1024)
	p.UpdateBytes(512)

	files, bytes := p.Snapshot()
	if files != 2 {
		t.Errorf("files = %d, want 2", files)
	}
	if bytes != 1536 {
		t.Errorf("bytes = %d, want 1536", bytes)
	}
}

func TestDescribe(t *testing.T) {
	p := NewProgressLogger(0, "writing", 0)

	desc := p.describe(2048, 1024)
	if !strings.Contains(desc, "writing") {
		t.Errorf("description %q does not name the action", desc)
	}
	if len(desc) != descriptionWidth {
		t.Errorf("description has width %d, want %d", len(desc), descriptionWidth)
	}
}
