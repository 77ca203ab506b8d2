package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/krasmussen37/tss/internal/transcript"
)

const (
	// DefaultPocketBaseURL is the public Pocket API root.
	DefaultPocketBaseURL = "https://public.heypocketai.com/api/v1"

	pocketPageSize = 50
)

// PocketConnector pulls recordings from the Pocket REST API. When TagID
// is set, listing is restricted to recordings carrying that tag.
type PocketConnector struct {
	client *resty.Client
	TagID  string
}

// NewPocket returns a connector for the given base URL, or the public
// API when baseURL is empty.
func NewPocket(apiKey, baseURL string) *PocketConnector {
	if baseURL == "" {
		baseURL = DefaultPocketBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("X-Api-Key", apiKey).
		SetTimeout(60 * time.Second)
	return &PocketConnector{client: client}
}

func (c *PocketConnector) Name() string { return "pocket" }

type pocketRecording struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	CreatedAt  string  `json:"created_at"`
	Duration   float64 `json:"duration"`
	Summary    string  `json:"summary"`
	Transcript []struct {
		Speaker string  `json:"speaker"`
		Text    string  `json:"text"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
	} `json:"transcript"`
	ActionItems []struct {
		Text string `json:"text"`
	} `json:"action_items"`
	Tags []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"tags"`
}

type pocketPage struct {
	Recordings []pocketRecording `json:"recordings"`
	Total      int               `json:"total"`
}

func (c *PocketConnector) ListRemote(ctx context.Context, since string) ([]RemoteTranscript, error) {
	var all []RemoteTranscript
	for page := 1; ; page++ {
		req := c.client.R().
			SetContext(ctx).
			SetQueryParam("page", fmt.Sprintf("%d", page)).
			SetQueryParam("per_page", fmt.Sprintf("%d", pocketPageSize))
		if c.TagID != "" {
			req.SetQueryParam("tag_ids", c.TagID)
		}

		var out pocketPage
		resp, err := req.SetResult(&out).Get("/public/recordings")
		if err != nil {
			return nil, fmt.Errorf("pocket request: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("pocket API returned %s: %s", resp.Status(), resp.String())
		}
		if len(out.Recordings) == 0 {
			break
		}

		for _, rec := range out.Recordings {
			if since != "" && rec.CreatedAt != "" && rec.CreatedAt <= since {
				continue
			}
			title := rec.Title
			if title == "" {
				title = "Untitled"
			}
			all = append(all, RemoteTranscript{ID: rec.ID, Title: title, Date: rec.CreatedAt})
		}

		if len(out.Recordings) < pocketPageSize {
			break
		}
	}
	return all, nil
}

func (c *PocketConnector) FetchOne(ctx context.Context, id string) (*transcript.Draft, error) {
	var rec pocketRecording
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&rec).
		Get("/public/recordings/" + id)
	if err != nil {
		return nil, fmt.Errorf("pocket request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("pocket API returned %s: %s", resp.Status(), resp.String())
	}

	title := rec.Title
	if title == "" {
		title = "Untitled"
	}
	d := &transcript.Draft{
		Format:   transcript.FormatJSON,
		ID:       rec.ID,
		Title:    title,
		Date:     rec.CreatedAt,
		Duration: rec.Duration,
		Source:   "pocket",
		Summary:  rec.Summary,
	}

	var rawLines []string
	for i, seg := range rec.Transcript {
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "Unknown"
		}
		rawLines = append(rawLines, speaker+": "+seg.Text)
		d.Segments = append(d.Segments, transcript.Segment{
			Speaker: speaker,
			Text:    seg.Text,
			Start:   seg.Start,
			End:     seg.End,
			Index:   i,
		})
	}
	d.RawText = strings.Join(rawLines, "\n")

	for _, ai := range rec.ActionItems {
		if strings.TrimSpace(ai.Text) != "" {
			d.ActionItems = append(d.ActionItems, transcript.ActionItem{Text: ai.Text})
		}
	}
	for _, tag := range rec.Tags {
		if tag.Name != "" {
			d.Tags = append(d.Tags, tag.Name)
		}
	}
	return d, nil
}

// ResolveTag looks up a tag's ID by name, case-insensitively. Callers
// cache the result in sync_state to avoid repeating the lookup.
func (c *PocketConnector) ResolveTag(ctx context.Context, name string) (string, error) {
	var out struct {
		Tags []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"tags"`
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/public/tags")
	if err != nil {
		return "", fmt.Errorf("pocket request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("pocket API returned %s: %s", resp.Status(), resp.String())
	}
	for _, tag := range out.Tags {
		if strings.EqualFold(tag.Name, name) {
			return tag.ID, nil
		}
	}
	return "", fmt.Errorf("pocket tag %q not found", name)
}
