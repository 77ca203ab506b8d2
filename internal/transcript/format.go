package transcript

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an input format.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatMarkdown
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatMarkdown:
		return "markdown"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// defaultSource is the source label used when neither the record nor the
// caller supplies one.
func (f Format) defaultSource() string {
	switch f {
	case FormatMarkdown:
		return "markdown"
	case FormatText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseFormat resolves a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	default:
		return FormatUnknown, fmt.Errorf("unknown format %q (use: json, markdown, text)", s)
	}
}

// DetectFormat infers the format from a file extension. Returns
// FormatUnknown for extensions that are not ingestible.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt", ".text":
		return FormatText
	default:
		return FormatUnknown
	}
}

// SniffFormat guesses the format of streamed content with no filename: a
// leading brace reads as JSON, a frontmatter fence as markdown, anything
// else as plain text.
func SniffFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))
	switch {
	case strings.HasPrefix(trimmed, "{"):
		return FormatJSON
	case strings.HasPrefix(trimmed, "---"):
		return FormatMarkdown
	default:
		return FormatText
	}
}
