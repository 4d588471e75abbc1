package terminal

import (
	"strings"
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0.0s"},
		{500 * time.Millisecond, "0.5s"},
		{5 * time.Second, "5.0s"},
		{45*time.Second + 300*time.Millisecond, "45.3s"},
		{59*time.Second + 999*time.Millisecond, "60.0s"}, // rounds within the seconds branch
		{1 * time.Minute, "1m 0.0s"},
		{1*time.Minute + 30*time.Second, "1m 30.0s"},
		{2*time.Minute + 45*time.Second + 500*time.Millisecond, "2m 45.5s"},
		{10 * time.Minute, "10m 0.0s"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.dur); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.dur, got, tt.want)
		}
	}
}

func TestWrapText_RespectsWidth(t *testing.T) {
	text := "This is a longer sentence that needs to be wrapped at the boundary"
	result := WrapText(text, 30, "")

	for i, line := range strings.Split(result, "\n") {
		if len(line) > 30 {
			t.Errorf("line %d exceeds width 30: len=%d, content=%q", i, len(line), line)
		}
	}
}

func TestWrapText_IndentsEveryLine(t *testing.T) {
	result := WrapText("First Second Third", 15, ">>> ")

	for i, line := range strings.Split(result, "\n") {
		if !strings.HasPrefix(line, ">>> ") {
			t.Errorf("line %d missing indent prefix: %q", i, line)
		}
	}
}

func TestWrapText_KeepsWordsWhole(t *testing.T) {
	result := WrapText("word1 word2 word3", 12, "")

	for _, line := range strings.Split(result, "\n") {
		for _, word := range strings.Fields(line) {
			if word != "word1" && word != "word2" && word != "word3" {
				t.Errorf("word was split: %q (full result: %q)", word, result)
			}
		}
	}
	for _, word := range []string{"word1", "word2", "word3"} {
		if !strings.Contains(result, word) {
			t.Errorf("missing %q in result: %q", word, result)
		}
	}
}

func TestWrapText_EmptyAndWhitespaceInput(t *testing.T) {
	if got := WrapText("", 50, "  "); got != "" {
		t.Errorf("empty input: got %q, want empty", got)
	}
	if got := WrapText("   \t  ", 50, ""); got != "" {
		t.Errorf("whitespace input: got %q, want empty", got)
	}
}

func TestWrapText_LongWordStaysWhole(t *testing.T) {
	long := "supercalifragilisticexpialidocious"
	if result := WrapText(long, 10, ""); !strings.Contains(result, long) {
		t.Errorf("long word should survive wrapping: %q", result)
	}
}

func TestWrapText_WidthUnderIndentDisablesWrapping(t *testing.T) {
	result := WrapText("hello world", 3, ">>> ")
	if result != ">>> hello world" {
		t.Errorf("got %q, want unwrapped indented text", result)
	}
}

func TestRuler(t *testing.T) {
	DisableColors()
	if got := Ruler(5, "-"); got != "-----" {
		t.Errorf("Ruler(5, -) = %q with colors off, want %q", got, "-----")
	}

	EnableColors()
	if got := Ruler(3, "="); !strings.Contains(got, "===") || !strings.Contains(got, Dim) {
		t.Errorf("expected dimmed rule, got %q", got)
	}
}

func TestReportWidth_Capped(t *testing.T) {
	if w := ReportWidth(); w > MaxReportWidth {
		t.Errorf("ReportWidth() = %d, want <= %d", w, MaxReportWidth)
	}
}
