package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompletions serves a canned chat-completion answer and records the
// request for assertions.
func fakeCompletions(t *testing.T, reply string, capture *map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4-turbo-preview",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": reply},
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestAdapter(t *testing.T, reply string, capture *map[string]any) *IntentAdapter {
	t.Helper()
	server := fakeCompletions(t, reply, capture)
	return NewIntentAdapter(Config{
		APIKey:  "test-key",
		Model:   "gpt-4-turbo-preview",
		BaseURL: server.URL,
	})
}

func TestIntentAdapter_ParseIntent(t *testing.T) {
	var captured map[string]any
	adapter := newTestAdapter(t,
		`{"intent":"NAVIGATE","confidence":0.95,"parameters":{"target":"https://google.com"}}`,
		&captured)

	intent, err := adapter.ParseIntent(context.Background(), "go to google", nil)
	require.NoError(t, err)
	assert.Equal(t, "NAVIGATE", intent.Kind)
	assert.Equal(t, 0.95, intent.Confidence)
	assert.Equal(t, "https://google.com", intent.Parameters["target"])

	messages, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2, "system prompt plus user turn")
	user := messages[1].(map[string]any)
	assert.Contains(t, user["content"], "go to google")
}

func TestIntentAdapter_ParseIntent_WithContext(t *testing.T) {
	var captured map[string]any
	adapter := newTestAdapter(t, `{"intent":"CLICK","confidence":0.8,"parameters":{}}`, &captured)

	_, err := adapter.ParseIntent(context.Background(), "click it", map[string]any{
		"current_page": map[string]any{"url": "https://example.com"},
	})
	require.NoError(t, err)

	messages := captured["messages"].([]any)
	require.Len(t, messages, 4, "context adds an assistant/user pair")
	ctxMsg := messages[2].(map[string]any)
	assert.Contains(t, ctxMsg["content"], "example.com")
}

func TestIntentAdapter_ParseIntent_BadJSON(t *testing.T) {
	adapter := newTestAdapter(t, "sorry, I have no idea", nil)

	intent, err := adapter.ParseIntent(context.Background(), "mumble", nil)
	require.NoError(t, err, "parse failures surface as ERROR intents, not errors")
	assert.Equal(t, "ERROR", intent.Kind)
	assert.Zero(t, intent.Confidence)
	assert.Contains(t, intent.Context, "Failed to parse intent")
}

func TestIntentAdapter_ParseIntent_ServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()
	adapter := NewIntentAdapter(Config{APIKey: "k", BaseURL: server.URL})

	intent, err := adapter.ParseIntent(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", intent.Kind)
}

func TestIntentAdapter_ParseMultiStep(t *testing.T) {
	adapter := newTestAdapter(t, `[
		{"intent":"NAVIGATE","parameters":{"target":"https://amazon.com"}},
		{"intent":"SEARCH","parameters":{"text":"laptops"}},
		{"intent":"CLICK","parameters":{"selector":"first result"}}
	]`, nil)

	intents, err := adapter.ParseMultiStep(context.Background(), "go to amazon then search laptops then click the first result", nil)
	require.NoError(t, err)
	require.Len(t, intents, 3)
	assert.Equal(t, "NAVIGATE", intents[0].Kind)
	assert.Equal(t, "SEARCH", intents[1].Kind)
	assert.Equal(t, "first result", intents[2].Parameters["selector"])
}

func TestIntentAdapter_ParseMultiStep_FallsBackToSingle(t *testing.T) {
	// The model ignores the array instruction and returns one object; the
	// adapter re-parses as a single intent.
	adapter := newTestAdapter(t, `{"intent":"NAVIGATE","confidence":0.9,"parameters":{"target":"https://example.com"}}`, nil)

	intents, err := adapter.ParseMultiStep(context.Background(), "go to example", nil)
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, "NAVIGATE", intents[0].Kind)
}

func TestIntentAdapter_SerializesCalls(t *testing.T) {
	adapter := newTestAdapter(t, `{"intent":"SCREENSHOT","confidence":1,"parameters":{}}`, nil)

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := adapter.ParseIntent(context.Background(), "take a screenshot", nil)
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-done)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("key")
	assert.Equal(t, "key", cfg.APIKey)
	assert.NotEmpty(t, cfg.Model)
}
