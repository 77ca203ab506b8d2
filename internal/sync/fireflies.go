package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/krasmussen37/tss/internal/transcript"
)

const (
	firefliesEndpoint = "https://api.fireflies.ai/graphql"
	firefliesPageSize = 50
)

// FirefliesConnector pulls transcripts from the Fireflies.ai GraphQL API.
type FirefliesConnector struct {
	client *resty.Client
}

// NewFireflies returns a connector authenticated with the given API key.
func NewFireflies(apiKey string) *FirefliesConnector {
	client := resty.New().
		SetBaseURL(firefliesEndpoint).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second)
	return &FirefliesConnector{client: client}
}

func (c *FirefliesConnector) Name() string { return "fireflies" }

func (c *FirefliesConnector) graphql(ctx context.Context, query string) (map[string]json.RawMessage, error) {
	var out struct {
		Data   map[string]json.RawMessage `json:"data"`
		Errors json.RawMessage            `json:"errors"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"query": query}).
		SetResult(&out).
		Post("")
	if err != nil {
		return nil, fmt.Errorf("fireflies request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fireflies API returned %s: %s", resp.Status(), resp.String())
	}
	if len(out.Errors) > 0 && string(out.Errors) != "null" {
		return nil, fmt.Errorf("fireflies graphql errors: %s", out.Errors)
	}
	return out.Data, nil
}

type firefliesListEntry struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Date  json.RawMessage `json:"date"` // epoch ms, number or string
}

func (c *FirefliesConnector) ListRemote(ctx context.Context, since string) ([]RemoteTranscript, error) {
	var sinceMS int64 = -1
	if since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, fmt.Errorf("parse sync cursor %q: %w", since, err)
		}
		sinceMS = ts.UnixMilli()
	}

	var all []RemoteTranscript
	for skip := 0; ; skip += firefliesPageSize {
		query := fmt.Sprintf(`query { transcripts(limit: %d, skip: %d) { id title date } }`, firefliesPageSize, skip)
		data, err := c.graphql(ctx, query)
		if err != nil {
			return nil, err
		}

		var page []firefliesListEntry
		if err := json.Unmarshal(data["transcripts"], &page); err != nil {
			return nil, fmt.Errorf("unexpected fireflies list response: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, e := range page {
			dateMS := epochMS(e.Date)
			if sinceMS >= 0 && dateMS <= sinceMS {
				continue
			}
			title := e.Title
			if title == "" {
				title = "Untitled"
			}
			all = append(all, RemoteTranscript{ID: e.ID, Title: title, Date: epochMSToISO(dateMS)})
		}

		if len(page) < firefliesPageSize {
			break
		}
	}
	return all, nil
}

type firefliesTranscript struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Date           json.RawMessage `json:"date"`
	Duration       float64         `json:"duration"` // minutes
	OrganizerEmail string          `json:"organizer_email"`
	Participants   []string        `json:"participants"`
	Summary        *struct {
		Keywords        []string `json:"keywords"`
		ActionItems     string   `json:"action_items"`
		Overview        string   `json:"overview"`
		ShorthandBullet string   `json:"shorthand_bullet"`
	} `json:"summary"`
	Sentences []struct {
		Text        string  `json:"text"`
		SpeakerName string  `json:"speaker_name"`
		StartTime   float64 `json:"start_time"`
		EndTime     float64 `json:"end_time"`
	} `json:"sentences"`
}

func (c *FirefliesConnector) FetchOne(ctx context.Context, id string) (*transcript.Draft, error) {
	// The transcript query only accepts an inlined id, not variables.
	query := fmt.Sprintf(`query { transcript(id: %q) {
        id title date duration organizer_email participants
        summary { keywords action_items overview shorthand_bullet }
        sentences { text speaker_name start_time end_time }
    } }`, id)

	data, err := c.graphql(ctx, query)
	if err != nil {
		return nil, err
	}

	var ff firefliesTranscript
	if err := json.Unmarshal(data["transcript"], &ff); err != nil {
		return nil, fmt.Errorf("parse fireflies transcript %s: %w", id, err)
	}

	title := ff.Title
	if title == "" {
		title = "Untitled"
	}

	d := &transcript.Draft{
		Format:   transcript.FormatJSON,
		ID:       ff.ID,
		Title:    title,
		Date:     epochMSToISO(epochMS(ff.Date)),
		Duration: ff.Duration * 60,
		Source:   "fireflies",
	}

	var rawLines []string
	for i, s := range ff.Sentences {
		speaker := s.SpeakerName
		if speaker == "" {
			speaker = "Unknown"
		}
		rawLines = append(rawLines, speaker+": "+s.Text)
		d.Segments = append(d.Segments, transcript.Segment{
			Speaker: speaker,
			Text:    s.Text,
			Start:   s.StartTime,
			End:     s.EndTime,
			Index:   i,
		})
	}
	d.RawText = strings.Join(rawLines, "\n")

	if ff.Summary != nil {
		var parts []string
		if ff.Summary.Overview != "" {
			parts = append(parts, ff.Summary.Overview)
		}
		if ff.Summary.ShorthandBullet != "" {
			parts = append(parts, ff.Summary.ShorthandBullet)
		}
		d.Summary = strings.Join(parts, "\n\n")
		d.Keywords = ff.Summary.Keywords
		d.ActionItems = parseActionItemBlock(ff.Summary.ActionItems)
	}

	if ff.OrganizerEmail != "" || len(ff.Participants) > 0 {
		d.Metadata = map[string]any{}
		if ff.OrganizerEmail != "" {
			d.Metadata["organizer_email"] = ff.OrganizerEmail
		}
		if len(ff.Participants) > 0 {
			d.Metadata["participants"] = ff.Participants
		}
	}
	return d, nil
}

// parseActionItemBlock splits the Fireflies action-items text block into
// individual items, dropping **section** headers and trivial lines.
func parseActionItemBlock(block string) []transcript.ActionItem {
	var items []transcript.ActionItem
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 5 {
			continue
		}
		if strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") {
			continue
		}
		clean := strings.TrimSpace(strings.TrimLeft(trimmed, "-•* "))
		if clean != "" {
			items = append(items, transcript.ActionItem{Text: clean})
		}
	}
	return items
}

// epochMS reads an epoch-milliseconds value that the API serves as either
// a number or a string.
func epochMS(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}
	var n int64
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return 0
}

func epochMSToISO(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02T15:04:05Z")
}
