package domain

import "time"

// Role identifies the author of a chat message. The assistant role keeps the
// wire value "model" used by the Gemini API and the stored transcripts.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "model"
)

// Message is a single immutable entry of a conversation transcript.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
