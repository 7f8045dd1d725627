package entity

import "time"

// SessionInfo describes one remote browser allocation as the hosting
// provider reports it. The live connection handle built on top of it lives
// in the browser layer; this record is what gets persisted between runs.
type SessionInfo struct {
	ID          string    `json:"id"`
	ConnectURL  string    `json:"connectUrl"`
	DebuggerURL string    `json:"debuggerUrl,omitempty"`
	ProjectID   string    `json:"projectId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Status      string    `json:"status,omitempty"`
}

// ConversationTurn is one transcript/response pair of a voice session.
type ConversationTurn struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Transcript string    `json:"transcript"`
	Response   string    `json:"response,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// MemoryHit is one long-term memory search result.
type MemoryHit struct {
	ID         string
	Content    string
	Similarity float32
	Metadata   map[string]string
}
