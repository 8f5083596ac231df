package events

import (
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventConversationStarted   EventType = "conversation_started"
	EventConversationTurn      EventType = "conversation_turn"
	EventConversationHandedOff EventType = "conversation_handed_off"
	EventSessionRecorded       EventType = "session_recorded"
)

// Event represents a domain event emitted by the conversation engine.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	ConversationID string      `json:"conversation_id"`
	ClientID       string      `json:"client_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// ConversationStartedPayload payload.
type ConversationStartedPayload struct {
	CompanyName string `json:"company_name"`
	Greeted     bool   `json:"greeted"`
}

// ConversationTurnPayload payload.
type ConversationTurnPayload struct {
	UserPreview string `json:"user_preview"`
	Recovered   bool   `json:"recovered"`
}

// ConversationHandedOffPayload payload.
type ConversationHandedOffPayload struct {
	CompanyName string            `json:"company_name"`
	Department  domain.Department `json:"department"`
	Summary     string            `json:"summary"`
}

// SessionRecordedPayload payload.
type SessionRecordedPayload struct {
	SessionID  string                  `json:"session_id"`
	Department domain.Department       `json:"department"`
	Resolution domain.ResolutionStatus `json:"resolution"`
}
