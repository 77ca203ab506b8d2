package display

import (
	"strings"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "-"},
		{30, "30s"},
		{125, "2m 5s"},
		{3720, "1h 2m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.secs); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "00:00"},
		{65, "01:05"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatTimestamp(tt.secs); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestHighlightSnippet(t *testing.T) {
	got := HighlightSnippet("...the >>>roadmap<<< review...")
	if strings.Contains(got, ">>>") || strings.Contains(got, "<<<") {
		t.Errorf("markers left in output: %q", got)
	}
	if !strings.Contains(got, "roadmap") {
		t.Errorf("match text missing: %q", got)
	}
}

func TestShortDate(t *testing.T) {
	if got := shortDate("2025-06-01T10:00:00Z"); got != "2025-06-01" {
		t.Errorf("shortDate = %q", got)
	}
	if got := shortDate(""); got != "" {
		t.Errorf("shortDate empty = %q", got)
	}
}
