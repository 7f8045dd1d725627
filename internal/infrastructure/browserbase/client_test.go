package browserbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, APIKey: "test-key"})
}

func TestClient_CreateSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sessions", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-BB-API-Key"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "proj-1", body["projectId"])

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"sess-1","connectUrl":"ws://example/devtools","projectId":"proj-1","status":"RUNNING"}`)
	})

	info, err := client.CreateSession(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "sess-1", info.ID)
	assert.Equal(t, "ws://example/devtools", info.ConnectURL)
	assert.Equal(t, "RUNNING", info.Status)
}

func TestClient_CreateSession_ProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":"quota exceeded"}`)
	})

	_, err := client.CreateSession(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_CreateSession_MissingID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	_, err := client.CreateSession(context.Background(), "proj-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

func TestClient_DeleteSession(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"OK", http.StatusOK, false},
		{"NoContent", http.StatusNoContent, false},
		{"AlreadyGone", http.StatusNotFound, false},
		{"ServerError", http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/sessions/sess-9", r.URL.Path)
				w.WriteHeader(tt.status)
			})

			err := client.DeleteSession(context.Background(), "sess-9")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClient_DebugURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sessions/sess-1/debug", r.URL.Path)
		fmt.Fprint(w, `{"debuggerFullscreenUrl":"https://debug.example/full","debuggerUrl":"https://debug.example/plain"}`)
	})

	url, err := client.DebugURL(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "https://debug.example/full", url)
}

func TestClient_DebugURL_FallsBackToPlain(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"debuggerUrl":"https://debug.example/plain"}`)
	})

	url, err := client.DebugURL(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "https://debug.example/plain", url)
}

func TestClient_ListSessions(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/sessions", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"id":"a","status":"RUNNING"},{"id":"b","status":"COMPLETED"}]}`)
	})

	sessions, err := client.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "COMPLETED", sessions[1].Status)
}
