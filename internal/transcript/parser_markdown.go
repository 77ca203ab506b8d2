package transcript

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// headingRe matches speaker headings of the form `## Alice (03:21)` or
// `## Alice (1:02:45)`. Minutes may exceed 59, seconds may not.
var headingRe = regexp.MustCompile(`(?m)^##\s+(.+?)\s+\((\d+:[0-5]\d(?::[0-5]\d)?)\)\s*$`)

// frontmatter is the optional YAML metadata block at the top of a
// markdown transcript.
type frontmatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Source   string   `yaml:"source"`
	Tags     []string `yaml:"tags"`
	Speakers []string `yaml:"speakers"`
}

// ParseMarkdown parses a markdown transcript with optional frontmatter.
// Each `## Speaker (MM:SS)` heading starts a segment whose text runs until
// the next heading; a body with no such headings becomes one unattributed
// segment. Missing frontmatter is not an error.
func ParseMarkdown(content []byte, filename string) (*Draft, error) {
	fmRaw, body := splitFrontmatter(string(content))

	d := &Draft{
		Format: FormatMarkdown,
		Title:  filenameToTitle(filename),
	}

	if fmRaw != "" {
		var fm frontmatter
		if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
			return nil, &ParseError{Format: FormatMarkdown, Field: "frontmatter", Err: err}
		}
		if fm.Title != "" {
			d.Title = fm.Title
		}
		d.Date = fm.Date
		d.Source = fm.Source
		d.Tags = fm.Tags
		d.Speakers = fm.Speakers

		// Keep any extra frontmatter keys as metadata.
		var all map[string]any
		if err := yaml.Unmarshal([]byte(fmRaw), &all); err == nil {
			for _, known := range []string{"title", "date", "source", "tags", "speakers"} {
				delete(all, known)
			}
			if len(all) > 0 {
				d.Metadata = all
			}
		}
	}

	d.RawText = strings.TrimSpace(body)
	d.Segments = parseSpeakerSegments(body)
	if len(d.Segments) == 0 && d.RawText != "" {
		d.Segments = []Segment{{Text: d.RawText}}
	}

	return d, nil
}

// splitFrontmatter separates a leading `---` fenced block from the body.
// Returns an empty frontmatter string when there is no block.
func splitFrontmatter(content string) (string, string) {
	trimmed := strings.TrimLeft(content, "\n\r\t ")
	if !strings.HasPrefix(trimmed, "---") {
		return "", content
	}
	rest := trimmed[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return "", content
	}
	body := rest[end+4:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = ""
	}
	return strings.TrimSpace(rest[:end]), body
}

func filenameToTitle(filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" {
		return "Untitled"
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(stem)
}

func parseSpeakerSegments(body string) []Segment {
	matches := headingRe.FindAllStringSubmatchIndex(body, -1)

	var segments []Segment
	for i, m := range matches {
		speaker := body[m[2]:m[3]]
		start := parseTimestamp(body[m[4]:m[5]])

		textStart := m[1]
		textEnd := len(body)
		if i+1 < len(matches) {
			textEnd = matches[i+1][0]
		}
		text := strings.TrimSpace(body[textStart:textEnd])
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Speaker: strings.TrimSpace(speaker),
			Text:    text,
			Start:   start,
			Index:   len(segments),
		})
	}

	// End offsets come from the following segment's start; the final
	// segment's end stays unknown.
	for i := 0; i+1 < len(segments); i++ {
		segments[i].End = segments[i+1].Start
	}

	return segments
}

// parseTimestamp converts MM:SS or HH:MM:SS to seconds.
func parseTimestamp(ts string) float64 {
	parts := strings.Split(ts, ":")
	var total float64
	for _, p := range parts {
		n, _ := strconv.ParseFloat(p, 64)
		total = total*60 + n
	}
	return total
}
