package slug

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := map[string]string{
		"Fix Login Bug":         "fix-login-bug",
		"  spaces   & symbols!": "spaces-symbols",
		"Ünïcode only":          "n-code-only",
		"***":                   Fallback,
		"":                      Fallback,
	}
	for in, want := range tests {
		if got := Generate(in); got != want {
			t.Errorf("Generate(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestGenerateTruncates(t *testing.T) {
	got := Generate(strings.Repeat("word ", 30))
	if len(got) > MaxLength {
		t.Errorf("Expected at most %d characters, got %d", MaxLength, len(got))
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("Expected no trailing hyphen, got %q", got)
	}
}

func TestWithIDRoundTrip(t *testing.T) {
	name := WithID(42, "Ship it")
	if name != "42-ship-it" {
		t.Fatalf("Expected 42-ship-it, got %s", name)
	}
	id, ok := ParseID(name)
	if !ok || id != 42 {
		t.Errorf("Expected id 42, got %d (%v)", id, ok)
	}

	for _, bad := range []string{"project", "x-ship", "0-zero", "-1-neg"} {
		if _, ok := ParseID(bad); ok {
			t.Errorf("Expected ParseID(%q) to fail", bad)
		}
	}
}
