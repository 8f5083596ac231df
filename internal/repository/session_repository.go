package repository

import (
	"context"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/store"
)

// SessionRepository defines persistence access for the session ledger. The
// ledger is append-only; no update or delete exists at this layer.
type SessionRepository interface {
	List(ctx context.Context) ([]domain.ChatSession, error)
	Append(ctx context.Context, session domain.ChatSession) error
}

type sessionRepository struct {
	records store.RecordStore
}

// NewSessionRepository returns a record-store backed implementation.
func NewSessionRepository(records store.RecordStore) SessionRepository {
	return &sessionRepository{records: records}
}

func (r *sessionRepository) List(ctx context.Context) ([]domain.ChatSession, error) {
	var sessions []domain.ChatSession
	if err := r.records.Read(ctx, store.CollectionSessions, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Append(ctx context.Context, session domain.ChatSession) error {
	sessions, err := r.List(ctx)
	if err != nil {
		return err
	}
	return r.records.Write(ctx, store.CollectionSessions, append(sessions, session))
}
