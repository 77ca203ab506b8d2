package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
)

// jsonTranscript is the documented JSON wire format. All fields are
// optional; unknown fields are ignored. The legacy flat fields at the
// bottom are folded into metadata so older exports keep round-tripping.
type jsonTranscript struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Date        string           `json:"date"`
	Duration    float64          `json:"duration_seconds"`
	Source      string           `json:"source"`
	Summary     string           `json:"summary"`
	RawText     string           `json:"raw_text"`
	Segments    []jsonSegment    `json:"segments"`
	Speakers    []jsonSpeaker    `json:"speakers"`
	Tags        []string         `json:"tags"`
	Keywords    []string         `json:"keywords"`
	ActionItems []jsonActionItem `json:"action_items"`
	Metadata    map[string]any   `json:"metadata"`

	OrganizerEmail string         `json:"organizer_email"`
	TranscriptURL  string         `json:"transcript_url"`
	AudioURL       string         `json:"audio_url"`
	FilePath       string         `json:"file_path"`
	Participants   []string       `json:"participants"`
	CRMPeopleIDs   []string       `json:"crm_people_ids"`
	CRMCompanyIDs  []string       `json:"crm_company_ids"`
	CRMDealIDs     []string       `json:"crm_deal_ids"`
	LegacyMetadata map[string]any `json:"_metadata"`
}

type jsonSegment struct {
	Speaker string   `json:"speaker"`
	Text    string   `json:"text"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	// Older exports write start_time/end_time instead.
	StartTime *float64 `json:"start_time"`
	EndTime   *float64 `json:"end_time"`
}

type jsonSpeaker struct {
	Name string `json:"name"`
}

type jsonActionItem struct {
	Text        string `json:"text"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Subtasks    any    `json:"subtasks"`
	Priority    string `json:"priority"`
}

// ParseJSON parses the native JSON transcript format into a Draft.
func ParseJSON(content []byte) (*Draft, error) {
	var jt jsonTranscript
	if err := json.Unmarshal(content, &jt); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &ParseError{Format: FormatJSON, Field: typeErr.Field, Err: fmt.Errorf("expected %s", typeErr.Type)}
		}
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}

	d := &Draft{
		Format:   FormatJSON,
		ID:       jt.ID,
		Title:    jt.Title,
		Date:     jt.Date,
		Duration: jt.Duration,
		Source:   jt.Source,
		Summary:  jt.Summary,
		RawText:  jt.RawText,
		Tags:     jt.Tags,
		Keywords: jt.Keywords,
		Metadata: legacyMetadata(&jt),
	}
	if d.Title == "" {
		d.Title = "Untitled"
	}

	for _, s := range jt.Speakers {
		if s.Name != "" {
			d.Speakers = append(d.Speakers, s.Name)
		}
	}

	for i, s := range jt.Segments {
		d.Segments = append(d.Segments, Segment{
			Speaker: s.Speaker,
			Text:    s.Text,
			Start:   coalesce(s.Start, s.StartTime),
			End:     coalesce(s.End, s.EndTime),
			Index:   i,
		})
	}

	for _, ai := range jt.ActionItems {
		text := ai.Text
		if text == "" {
			text = ai.Title
		}
		if text == "" {
			text = ai.Description
		}
		var meta map[string]any
		if ai.Subtasks != nil || ai.Priority != "" {
			meta = map[string]any{}
			if ai.Subtasks != nil {
				meta["subtasks"] = ai.Subtasks
			}
			if ai.Priority != "" {
				meta["priority"] = ai.Priority
			}
		}
		d.ActionItems = append(d.ActionItems, ActionItem{Text: text, Metadata: meta})
	}

	return d, nil
}

func coalesce(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func legacyMetadata(jt *jsonTranscript) map[string]any {
	meta := jt.Metadata
	set := func(key string, val any) {
		if meta == nil {
			meta = map[string]any{}
		}
		meta[key] = val
	}
	if jt.OrganizerEmail != "" {
		set("organizer_email", jt.OrganizerEmail)
	}
	if jt.TranscriptURL != "" {
		set("transcript_url", jt.TranscriptURL)
	}
	if jt.AudioURL != "" {
		set("audio_url", jt.AudioURL)
	}
	if jt.FilePath != "" {
		set("file_path", jt.FilePath)
	}
	if len(jt.Participants) > 0 {
		set("participants", jt.Participants)
	}
	if len(jt.CRMPeopleIDs) > 0 {
		set("crm_people_ids", jt.CRMPeopleIDs)
	}
	if len(jt.CRMCompanyIDs) > 0 {
		set("crm_company_ids", jt.CRMCompanyIDs)
	}
	if len(jt.CRMDealIDs) > 0 {
		set("crm_deal_ids", jt.CRMDealIDs)
	}
	if len(jt.LegacyMetadata) > 0 {
		set("_original_metadata", jt.LegacyMetadata)
	}
	return meta
}
