package sl

import (
	"errors"
	"testing"
)

func TestSecret(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"", "?"},
		{"abc", "***"},
		{"abcde", "***"},
		{"eyJhbGciOiJIUzI1NiJ9", "eyJhb***"},
	}
	for _, tt := range tests {
		got := Secret("token", tt.value)
		if got.Key != "token" {
			t.Fatalf("unexpected key: %s", got.Key)
		}
		if got.Value.String() != tt.want {
			t.Fatalf("Secret(%q) = %q, want %q", tt.value, got.Value.String(), tt.want)
		}
	}
}

func TestErr(t *testing.T) {
	if got := Err(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("unexpected error value: %s", got)
	}
	if got := Err(nil).Value.String(); got != "<nil>" {
		t.Fatalf("unexpected nil error value: %s", got)
	}
}
