package cortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sse"
	"go.uber.org/zap"
)

const (
	AgentRunEndpoint = "/api/v2/cortex/agent:run"
	DefaultModel     = "claude-4-sonnet"
	DefaultTimeout   = 50 * time.Second

	maxErrorBody = 4 << 10
)

// Config holds the Snowflake account and agent tool resources
type Config struct {
	AccountURL    string
	Token         string
	Model         string
	SearchService string
	SemanticModel string
	Timeout       time.Duration
}

// StatusError is returned when agent:run answers with a non-200 status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cortex agent: status %d: %s", e.StatusCode, e.Body)
}

// RunRequest is the agent:run payload
type RunRequest struct {
	Model         string                    `json:"model"`
	Messages      []RequestMessage          `json:"messages"`
	Tools         []Tool                    `json:"tools,omitempty"`
	ToolResources map[string]map[string]any `json:"tool_resources,omitempty"`
}

type RequestMessage struct {
	Role    string           `json:"role"`
	Content []RequestContent `json:"content"`
}

type RequestContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Tool struct {
	ToolSpec ToolSpec `json:"tool_spec"`
}

type ToolSpec struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// Client calls the Cortex agent REST API
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a Cortex agent client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.AccountURL = strings.TrimRight(cfg.AccountURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Ask sends a user question with the analyst, search and HERE maps tools enabled.
// limit caps the number of search results.
func (c *Client) Ask(ctx context.Context, query string, limit int) ([]Event, error) {
	req := RunRequest{
		Model:    c.cfg.Model,
		Messages: []RequestMessage{userMessage(query)},
		Tools: []Tool{
			{ToolSpec: ToolSpec{Type: "cortex_analyst_text_to_sql", Name: "analyst1"}},
			{ToolSpec: ToolSpec{Type: "cortex_search", Name: "search1"}},
			{ToolSpec: ToolSpec{Type: "http_request", Name: "here_maps"}},
		},
		ToolResources: map[string]map[string]any{
			"analyst1": {"semantic_model_file": c.cfg.SemanticModel},
			"search1": {
				"name":        c.cfg.SearchService,
				"max_results": limit,
				"id_column":   "conversation_id",
			},
		},
	}
	return c.Run(ctx, req)
}

// Complete sends a bare prompt without tools
func (c *Client) Complete(ctx context.Context, prompt string) ([]Event, error) {
	return c.Run(ctx, RunRequest{
		Model:    c.cfg.Model,
		Messages: []RequestMessage{userMessage(prompt)},
	})
}

// Run posts the payload to agent:run and decodes the events, from either a JSON
// array body or a text/event-stream body.
func (c *Client) Run(ctx context.Context, payload RunRequest) ([]Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AccountURL+AgentRunEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call cortex agent: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("cortex agent request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		return c.decodeStream(resp.Body)
	}
	return decodeArray(resp.Body)
}

func decodeArray(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode agent events: %w", err)
	}
	return events, nil
}

func (c *Client) decodeStream(r io.Reader) ([]Event, error) {
	raw, err := sse.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode agent event stream: %w", err)
	}

	events := make([]Event, 0, len(raw))
	for _, ev := range raw {
		out := Event{Event: ev.Event}

		data := sseData(ev.Data)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &out.Data); err != nil {
				c.logger.Debug("skipping non-JSON event data",
					zap.String("event", ev.Event),
					zap.Error(err),
				)
			}
		}
		events = append(events, out)
	}
	return events, nil
}

func sseData(v any) []byte {
	switch d := v.(type) {
	case nil:
		return nil
	case string:
		return []byte(d)
	case []byte:
		return d
	default:
		b, _ := json.Marshal(d)
		return b
	}
}

func userMessage(text string) RequestMessage {
	return RequestMessage{
		Role:    "user",
		Content: []RequestContent{{Type: "text", Text: text}},
	}
}
