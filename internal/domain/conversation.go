package domain

// ConversationStatus enumerates lifecycle states of a live conversation.
type ConversationStatus string

const (
	ConversationActive    ConversationStatus = "ACTIVE"
	ConversationHandedOff ConversationStatus = "HANDED_OFF"
	ConversationAborted   ConversationStatus = "ABORTED"
)

// HandoffRequest is the structured alternative to a text reply produced by
// the model capability; it triggers the terminal transition of a
// conversation.
type HandoffRequest struct {
	Department Department `json:"department"`
	Summary    string     `json:"summary"`
}
