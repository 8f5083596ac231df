package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/repository"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// LedgerService is the append-only log of completed conversations. Records
// are never updated or deleted; review tooling filters on its own side.
type LedgerService struct {
	mu         sync.Mutex
	sessions   repository.SessionRepository
	dispatcher events.Dispatcher
}

// NewLedgerService builds the service.
func NewLedgerService(sessions repository.SessionRepository, dispatcher events.Dispatcher) *LedgerService {
	return &LedgerService{sessions: sessions, dispatcher: dispatcher}
}

// Save appends one finished session to the ledger.
func (s *LedgerService) Save(ctx context.Context, session domain.ChatSession) error {
	s.mu.Lock()
	err := s.sessions.Append(ctx, session)
	s.mu.Unlock()
	if err != nil {
		return apperrors.MapError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:             uuid.NewString(),
			Type:           events.EventSessionRecorded,
			ConversationID: session.ID,
			ClientID:       session.Client.ID,
			Timestamp:      time.Now(),
			Payload: events.SessionRecordedPayload{
				SessionID:  session.ID,
				Department: session.Department,
				Resolution: session.Resolution,
			},
		})
	}
	return nil
}

// List returns all sessions in insertion order.
func (s *LedgerService) List(ctx context.Context) ([]domain.ChatSession, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sessions, nil
}
