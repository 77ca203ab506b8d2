package transcript

import "fmt"

// Parse dispatches raw content to the parser for the given format. The
// filename is only consulted for title/date defaults; pass StdinName for
// streamed input.
func Parse(content []byte, filename string, format Format) (*Draft, error) {
	if len(content) == 0 {
		return nil, &ParseError{Format: format, Err: fmt.Errorf("empty input")}
	}
	switch format {
	case FormatJSON:
		return ParseJSON(content)
	case FormatMarkdown:
		return ParseMarkdown(content, filename)
	case FormatText:
		return ParseText(content, filename)
	default:
		return nil, &ParseError{Format: format, Err: fmt.Errorf("no parser for format")}
	}
}
