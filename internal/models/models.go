package models

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

// Message is a single turn in a conversation. Immutable once appended.
type Message struct {
	Role      MessageRole    `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type ChatRequest struct {
	Message     string            `json:"message"`
	SessionID   string            `json:"session_id,omitempty"`
	UserID      int64             `json:"user_id,omitempty"`
	UserContext map[string]string `json:"user_context,omitempty"`
}

type ChatResponse struct {
	Message   string         `json:"message"`
	SessionID string         `json:"session_id"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type HealthStatus struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Version   string          `json:"version"`
	Services  map[string]bool `json:"services"`
	Details   map[string]any  `json:"details,omitempty"`
}
