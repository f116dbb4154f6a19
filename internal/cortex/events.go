package cortex

import (
	"bytes"
	"encoding/json"
	"strings"

	"salesroute/internal/model"
)

// EventMessageDelta carries incremental reply content
const EventMessageDelta = "message.delta"

// Event is one agent:run stream event
type Event struct {
	Event string    `json:"event"`
	Data  EventData `json:"data"`
}

type EventData struct {
	Delta Delta `json:"delta"`
}

type Delta struct {
	Content []Content `json:"content"`
}

// Content is a delta item: "text" or "tool_results"
type Content struct {
	Type        string       `json:"type"`
	Text        string       `json:"text,omitempty"`
	ToolResults *ToolResults `json:"tool_results,omitempty"`
}

type ToolResults struct {
	Content []ToolResultContent `json:"content"`
}

type ToolResultContent struct {
	Type string    `json:"type"`
	JSON *ToolJSON `json:"json,omitempty"`
}

// ToolJSON is the analyst/search tool payload
type ToolJSON struct {
	Text          string         `json:"text"`
	SQL           string         `json:"sql"`
	SearchResults []SearchResult `json:"searchResults"`
}

type SearchResult struct {
	SourceID FlexString `json:"source_id"`
	DocID    FlexString `json:"doc_id"`
}

// FlexString accepts a JSON string or number
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Reply is the flattened agent answer
type Reply struct {
	Text      string           `json:"text"`
	SQL       string           `json:"sql,omitempty"`
	Citations []model.Citation `json:"citations,omitempty"`
}

// ParseEvents folds message.delta events into a Reply. Text from text items and from
// json tool results is concatenated in order; the last non-empty SQL wins.
func ParseEvents(events []Event) Reply {
	var text strings.Builder
	reply := Reply{}

	for _, ev := range events {
		if ev.Event != EventMessageDelta {
			continue
		}
		for _, item := range ev.Data.Delta.Content {
			switch item.Type {
			case "text":
				text.WriteString(item.Text)
			case "tool_results":
				if item.ToolResults == nil {
					continue
				}
				for _, result := range item.ToolResults.Content {
					if result.Type != "json" || result.JSON == nil {
						continue
					}
					text.WriteString(result.JSON.Text)
					if result.JSON.SQL != "" {
						reply.SQL = result.JSON.SQL
					}
					for _, sr := range result.JSON.SearchResults {
						reply.Citations = append(reply.Citations, model.Citation{
							SourceID: string(sr.SourceID),
							DocID:    string(sr.DocID),
						})
					}
				}
			}
		}
	}

	reply.Text = text.String()
	return reply
}

var citationMarkers = strings.NewReplacer("【†", "[", "†】", "]")

// CleanCitationMarkers rewrites the agent's 【†n†】 markers to [n]
func CleanCitationMarkers(text string) string {
	return citationMarkers.Replace(text)
}

