package dto

import (
	"time"

	"github.com/spec-kit/support-portal/internal/domain"
)

// ChatMessageRequest payload for one user turn.
type ChatMessageRequest struct {
	Text string `json:"text"`
}

// MessageView is the outward transcript entry shape.
type MessageView struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationView is the outward live conversation shape.
type ConversationView struct {
	ConversationID string        `json:"conversation_id"`
	Status         string        `json:"status"`
	Messages       []MessageView `json:"messages"`
}

// SessionView is the outward ledger record shape.
type SessionView struct {
	ID         string        `json:"id"`
	Client     ClientView    `json:"client"`
	Department string        `json:"department"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Transcript []MessageView `json:"transcript"`
	Resolution string        `json:"resolution"`
	Summary    string        `json:"summary"`
}

// NewMessageViews maps a transcript.
func NewMessageViews(messages []domain.Message) []MessageView {
	views := make([]MessageView, 0, len(messages))
	for _, message := range messages {
		views = append(views, MessageView{
			Role:      string(message.Role),
			Content:   message.Content,
			Timestamp: message.Timestamp,
		})
	}
	return views
}

// NewConversationView maps a live conversation state.
func NewConversationView(id string, status domain.ConversationStatus, messages []domain.Message) ConversationView {
	return ConversationView{
		ConversationID: id,
		Status:         string(status),
		Messages:       NewMessageViews(messages),
	}
}

// NewSessionView maps a ledger record.
func NewSessionView(session domain.ChatSession) SessionView {
	return SessionView{
		ID:         session.ID,
		Client:     NewClientView(session.Client),
		Department: string(session.Department),
		StartTime:  session.StartTime,
		EndTime:    session.EndTime,
		Transcript: NewMessageViews(session.Transcript),
		Resolution: string(session.Resolution),
		Summary:    session.Summary,
	}
}

// NewSessionViews maps the full ledger.
func NewSessionViews(sessions []domain.ChatSession) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, NewSessionView(session))
	}
	return views
}
