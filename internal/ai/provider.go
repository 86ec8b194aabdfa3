package ai

import "context"

// Turn roles as used across the app. Providers translate these to whatever
// their wire format expects.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider completes a conversation: it receives the full ordered context
// (ending with the newest user message) and returns the model's reply text.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
