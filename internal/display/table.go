package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/krasmussen37/tss/internal/db"
	"github.com/krasmussen37/tss/internal/transcript"
)

// PrintTranscriptsTable prints transcript list or search hits in a
// formatted table.
func PrintTranscriptsTable(results []db.TranscriptResult, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tSOURCE\tDURATION\tTITLE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, shortDate(r.Date), r.Source, FormatDuration(r.Duration), truncate(r.Title, 60))
	}
	tw.Flush()
}

// PrintSearchResults prints transcript hits with their match snippets.
func PrintSearchResults(results []db.TranscriptResult, w io.Writer) {
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(r.Title),
			mutedStyle.Render(fmt.Sprintf("%s · %s · %s", shortDate(r.Date), r.Source, r.ID)))
		if r.Snippet != "" {
			fmt.Fprintf(w, "  %s\n", HighlightSnippet(r.Snippet))
		}
	}
}

// PrintSegmentResults prints segment-level hits grouped under their
// transcript.
func PrintSegmentResults(results []db.SegmentResult, w io.Writer) {
	lastID := ""
	for _, r := range results {
		if r.TranscriptID != lastID {
			if lastID != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(r.TranscriptTitle), mutedStyle.Render(r.TranscriptID))
			lastID = r.TranscriptID
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", FormatTimestamp(r.Start),
			speakerStyle.Render(r.Speaker), r.Text)
	}
}

// PrintTranscript prints one transcript's header, summary, and children.
// Segments are included when withSegments is set.
func PrintTranscript(t *transcript.Transcript, withSegments bool, w io.Writer) {
	fmt.Fprintln(w, titleStyle.Render(t.Title))
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("ID:"), t.ID)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Date:"), t.Date)
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Source:"), t.Source)
	if t.Duration > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Duration:"), FormatDuration(t.Duration))
	}
	if len(t.Speakers) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Speakers:"), joinList(t.Speakers))
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Tags:"), joinList(t.Tags))
	}
	if len(t.Keywords) > 0 {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("Keywords:"), joinList(t.Keywords))
	}
	if t.Summary != "" {
		fmt.Fprintf(w, "\n%s\n%s\n", labelStyle.Render("Summary:"), t.Summary)
	}
	if len(t.ActionItems) > 0 {
		fmt.Fprintf(w, "\n%s\n", labelStyle.Render("Action items:"))
		for _, ai := range t.ActionItems {
			fmt.Fprintf(w, "  - %s\n", ai.Text)
		}
	}
	if withSegments {
		fmt.Fprintln(w)
		PrintSegments(t.Segments, w)
	}
}

// PrintSegments prints a transcript's segments with timestamps and
// speakers.
func PrintSegments(segs []transcript.Segment, w io.Writer) {
	for _, s := range segs {
		speaker := s.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		fmt.Fprintf(w, "[%s] %s: %s\n", mutedStyle.Render(FormatTimestamp(s.Start)),
			speakerStyle.Render(speaker), s.Text)
	}
}

// PrintStats prints database statistics.
func PrintStats(st *db.Stats, dbPath string, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Database:\t%s\n", dbPath)
	fmt.Fprintf(tw, "Size:\t%s\n", FormatBytes(st.DBSizeBytes))
	fmt.Fprintf(tw, "Transcripts:\t%d\n", st.Transcripts)
	fmt.Fprintf(tw, "Segments:\t%d\n", st.Segments)
	fmt.Fprintf(tw, "Speakers:\t%d\n", st.Speakers)
	fmt.Fprintf(tw, "Tags:\t%d\n", st.Tags)
	fmt.Fprintf(tw, "Keywords:\t%d\n", st.Keywords)
	fmt.Fprintf(tw, "Action items:\t%d\n", st.ActionItems)
	tw.Flush()

	if len(st.Sources) > 0 {
		fmt.Fprintf(w, "\n%s\n", labelStyle.Render("By source:"))
		stw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, sc := range st.Sources {
			fmt.Fprintf(stw, "  %s\t%d\n", sc.Source, sc.Count)
		}
		stw.Flush()
	}
}

func joinList(items []string) string {
	out := ""
	for i, v := range items {
		if i > 0 {
			out += ", "
		}
		out += v
	}
	return out
}
