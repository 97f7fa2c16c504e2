package bot

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"plain":          "plain",
		"a.b":            "a\\.b",
		"go-q_a (v1)!":   "go\\-q\\_a \\(v1\\)\\!",
		"price=5*2":      "price\\=5\\*2",
		"zażółć":         "zażółć",
		"`code` > quote": "\\`code\\` \\> quote",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSplitMessage(t *testing.T) {
	if parts := splitMessage("short", 10); len(parts) != 1 || parts[0] != "short" {
		t.Fatalf("parts = %q", parts)
	}

	text := "line one\nline two\nline three"
	parts := splitMessage(text, 12)
	if strings.Join(parts, "") != text {
		t.Fatalf("parts do not rebuild the text: %q", parts)
	}
	for _, p := range parts {
		if len(p) > 12 {
			t.Fatalf("part %q longer than limit", p)
		}
	}
	if parts[0] != "line one\n" {
		t.Fatalf("first part = %q, want a cut at the line break", parts[0])
	}

	long := strings.Repeat("x", 25)
	if parts = splitMessage(long, 10); len(parts) != 3 {
		t.Fatalf("parts = %d, want 3", len(parts))
	}
}
