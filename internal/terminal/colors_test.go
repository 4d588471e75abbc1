package terminal

import (
	"testing"
)

func TestColor_GatedByEnabledState(t *testing.T) {
	EnableColors()
	if Color(Cyan) != Cyan {
		t.Error("expected color code while colors are enabled")
	}

	DisableColors()
	if Color(Cyan) != "" {
		t.Error("expected empty string while colors are disabled")
	}
	if ColorsEnabled() {
		t.Error("ColorsEnabled should report false after DisableColors")
	}

	EnableColors()
	if Color(Cyan) != Cyan {
		t.Error("expected color code after re-enabling colors")
	}
}

func TestColorConstants(t *testing.T) {
	EnableColors()

	codes := []struct {
		name string
		code string
		want string
	}{
		{"Reset", Reset, "\033[0m"},
		{"Bold", Bold, "\033[1m"},
		{"Dim", Dim, "\033[2m"},
		{"Cyan", Cyan, "\033[36m"},
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Magenta", Magenta, "\033[35m"},
		{"White", White, "\033[97m"},
		{"Blue", Blue, "\033[34m"},
	}

	for _, tc := range codes {
		if tc.code != tc.want {
			t.Errorf("constant %s = %q, want %q", tc.name, tc.code, tc.want)
		}
		if Color(tc.code) != tc.code {
			t.Errorf("Color(%s) = %q, want %q", tc.name, Color(tc.code), tc.code)
		}
	}
}

func TestColor_DisabledReturnsEmptyForAllCodes(t *testing.T) {
	DisableColors()
	defer EnableColors()

	for _, c := range []string{Reset, Bold, Dim, Cyan, Green, Yellow, Red, Magenta, White, Blue} {
		if Color(c) != "" {
			t.Errorf("Color(%q) = %q while disabled, want empty", c, Color(c))
		}
	}
}

func TestTTYDetection_DoesNotPanic(t *testing.T) {
	// Stdout/stderr are normally pipes under go test; the detection just
	// must not panic either way.
	_ = IsStdoutTTY()
	_ = IsStderrTTY()
}

func TestTerminalWidth_SaneFallback(t *testing.T) {
	width := TerminalWidth()
	if width <= 0 {
		t.Errorf("TerminalWidth() = %d, want > 0", width)
	}
	if width < 10 || width > 10000 {
		t.Errorf("TerminalWidth() = %d, seems unreasonable", width)
	}
}
