package browserbase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"voicebrowser/internal/application/port/output"
	"voicebrowser/internal/domain/entity"
)

var _ output.SessionProviderPort = (*Client)(nil)

const apiKeyHeader = "X-BB-API-Key"

// Client talks to the hosting provider's Sessions API. Creation failures are
// fatal to the caller; deletion and debug lookups only ever log.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *zap.Logger
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 75 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     log.Named("browserbase"),
	}
}

type createSessionRequest struct {
	ProjectID string `json:"projectId,omitempty"`
}

type sessionResponse struct {
	ID         string    `json:"id"`
	ConnectURL string    `json:"connectUrl"`
	ProjectID  string    `json:"projectId"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

type debugResponse struct {
	DebuggerFullscreenURL string `json:"debuggerFullscreenUrl"`
	DebuggerURL           string `json:"debuggerUrl"`
}

type listResponse struct {
	Data []sessionResponse `json:"data"`
}

// CreateSession allocates a new remote browser session. Any non-2xx status
// is an error carrying the provider's status and body.
func (c *Client) CreateSession(ctx context.Context, projectID string) (entity.SessionInfo, error) {
	body, err := json.Marshal(createSessionRequest{ProjectID: projectID})
	if err != nil {
		return entity.SessionInfo{}, fmt.Errorf("encode session request: %w", err)
	}

	status, respBody, err := c.do(ctx, http.MethodPost, c.baseURL+"/sessions", body)
	if err != nil {
		return entity.SessionInfo{}, fmt.Errorf("create session: %w", err)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return entity.SessionInfo{}, fmt.Errorf("create session: provider returned %d: %s", status, string(respBody))
	}

	var resp sessionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return entity.SessionInfo{}, fmt.Errorf("decode session response: %w", err)
	}
	if resp.ID == "" {
		return entity.SessionInfo{}, fmt.Errorf("create session: provider response has no id")
	}

	c.log.Info("session created", zap.String("session_id", resp.ID))
	return entity.SessionInfo{
		ID:         resp.ID,
		ConnectURL: resp.ConnectURL,
		ProjectID:  resp.ProjectID,
		Status:     resp.Status,
		CreatedAt:  resp.CreatedAt,
	}, nil
}

// DeleteSession releases a remote session. Gone sessions are not an error.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	status, body, err := c.do(ctx, http.MethodDelete, c.baseURL+"/sessions/"+id, nil)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	switch status {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		c.log.Info("session released", zap.String("session_id", id), zap.Int("status", status))
		return nil
	default:
		return fmt.Errorf("delete session %s: provider returned %d: %s", id, status, string(body))
	}
}

// DebugURL fetches the human-observable viewer URL for a session.
func (c *Client) DebugURL(ctx context.Context, id string) (string, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.baseURL+"/sessions/"+id+"/debug", nil)
	if err != nil {
		return "", fmt.Errorf("session debug info %s: %w", id, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("session debug info %s: provider returned %d", id, status)
	}
	var resp debugResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode debug info: %w", err)
	}
	if resp.DebuggerFullscreenURL != "" {
		return resp.DebuggerFullscreenURL, nil
	}
	return resp.DebuggerURL, nil
}

// ListSessions returns the provider's current allocations. Used by cleanup.
func (c *Client) ListSessions(ctx context.Context) ([]entity.SessionInfo, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.baseURL+"/sessions", nil)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list sessions: provider returned %d: %s", status, string(body))
	}
	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode session list: %w", err)
	}
	out := make([]entity.SessionInfo, 0, len(resp.Data))
	for _, s := range resp.Data {
		out = append(out, entity.SessionInfo{
			ID:         s.ID,
			ConnectURL: s.ConnectURL,
			ProjectID:  s.ProjectID,
			Status:     s.Status,
			CreatedAt:  s.CreatedAt,
		})
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	// Always drain the body so the connection can be reused.
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}
