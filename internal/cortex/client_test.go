package cortex

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		AccountURL:    srv.URL + "/",
		Token:         "token",
		SearchService: "db.schema.search",
		SemanticModel: "@db.schema.models/model.yaml",
	}, zap.NewNop())
}

func TestAsk_PayloadAndArrayBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, AgentRunEndpoint, r.URL.Path)
		assert.Equal(t, "Bearer token", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req RunRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, DefaultModel, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "who sold most?", req.Messages[0].Content[0].Text)
		require.Len(t, req.Tools, 3)
		assert.Equal(t, "cortex_analyst_text_to_sql", req.Tools[0].ToolSpec.Type)
		assert.Equal(t, "here_maps", req.Tools[2].ToolSpec.Name)
		assert.Equal(t, "@db.schema.models/model.yaml", req.ToolResources["analyst1"]["semantic_model_file"])
		assert.Equal(t, "db.schema.search", req.ToolResources["search1"]["name"])
		assert.EqualValues(t, 3, req.ToolResources["search1"]["max_results"])
		assert.Equal(t, "conversation_id", req.ToolResources["search1"]["id_column"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleEvents))
	})

	events, err := client.Ask(context.Background(), "who sold most?", 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, "SELECT 1;", ParseEvents(events).SQL)
}

func TestComplete_NoTools(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotContains(t, req, "tools")
		assert.NotContains(t, req, "tool_resources")
		_, _ = w.Write([]byte(`[]`))
	})

	events, err := client.Complete(context.Background(), "extract")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestRun_EventStream(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "event: message.delta\n"+
			`data: {"delta":{"content":[{"type":"text","text":"Hello "}]}}`+"\n\n"+
			"event: message.delta\n"+
			`data: {"delta":{"content":[{"type":"text","text":"world"}]}}`+"\n\n"+
			"event: done\n"+
			"data: [DONE]\n\n")
	})

	events, err := client.Complete(context.Background(), "hi")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "done", events[2].Event)
	assert.Equal(t, "Hello world", ParseEvents(events).Text)
}

func TestRun_StatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "warehouse suspended", http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), "hi")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "warehouse suspended")
}
