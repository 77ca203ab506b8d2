package transcript

import (
	"os"
	"strings"
	"time"
)

// StdinName is the placeholder filename for content read from stdin.
const StdinName = "stdin"

// ParseText parses a plain text transcript: title from the base filename,
// date from the file's modification time, the whole body as one
// unattributed segment.
func ParseText(content []byte, path string) (*Draft, error) {
	title := filenameToTitle(path)
	if path == StdinName {
		title = "Untitled"
	}

	date := ""
	if path == StdinName {
		date = time.Now().UTC().Format(time.RFC3339)
	} else if st, err := os.Stat(path); err == nil {
		date = st.ModTime().UTC().Format(time.RFC3339)
	}

	d := &Draft{
		Format:  FormatText,
		Title:   title,
		Date:    date,
		RawText: strings.TrimSpace(string(content)),
	}
	if d.RawText != "" {
		d.Segments = []Segment{{Text: d.RawText}}
	}
	return d, nil
}
