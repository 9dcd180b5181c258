package textwidth_test

import (
	"testing"

	"github.com/aliments/alical/internal/textwidth"
)

func TestStringWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Hufschmied", 10},
		{"\x1b[31mTierarzt\x1b[0m", 8},
		{"一二", 4},
		{"ab\nabcd", 4},
	}
	for _, tt := range tests {
		if got := textwidth.StringWidth(tt.in); got != tt.want {
			t.Fatalf("StringWidth(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := textwidth.PadRight("Reiten", 8); got != "Reiten  " {
		t.Fatalf("PadRight = %q", got)
	}
	if got := textwidth.PadRight("Reitstunde", 4); got != "Reitstunde" {
		t.Fatalf("PadRight must not cut: %q", got)
	}
}

func TestTruncateAndFit(t *testing.T) {
	if got := textwidth.Truncate("Hufschmied", 5); got != "Hufs…" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := textwidth.Truncate("Huf", 5); got != "Huf" {
		t.Fatalf("Truncate short = %q", got)
	}
	if got := textwidth.Fit("Impfung Luna", 8); textwidth.StringWidth(got) != 8 {
		t.Fatalf("Fit width = %d (%q)", textwidth.StringWidth(got), got)
	}
	if got := textwidth.Truncate("x", 0); got != "" {
		t.Fatalf("Truncate to zero = %q", got)
	}
}

func TestNarrow(t *testing.T) {
	if got := textwidth.Narrow("Box １２"); got != "Box 12" {
		t.Fatalf("Narrow = %q", got)
	}
}
