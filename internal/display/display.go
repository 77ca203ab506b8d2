// Package display renders transcripts, search results, and stats for the
// terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	matchStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	speakerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

// HighlightSnippet replaces the FTS snippet markers with a terminal
// highlight style.
func HighlightSnippet(s string) string {
	for {
		start := strings.Index(s, ">>>")
		if start < 0 {
			break
		}
		end := strings.Index(s[start+3:], "<<<")
		if end < 0 {
			break
		}
		match := s[start+3 : start+3+end]
		s = s[:start] + matchStyle.Render(match) + s[start+3+end+3:]
	}
	return s
}

// FormatDuration renders seconds as "1h 23m", "45m 12s", or "30s".
func FormatDuration(secs float64) string {
	if secs <= 0 {
		return "-"
	}
	total := int(secs)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// FormatTimestamp renders seconds since the start of the recording as
// "mm:ss" or "h:mm:ss".
func FormatTimestamp(secs float64) string {
	total := int(secs)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}

// shortDate trims an ISO-8601 timestamp to its date part.
func shortDate(iso string) string {
	if len(iso) >= 10 {
		return iso[:10]
	}
	return iso
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
