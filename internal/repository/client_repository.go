package repository

import (
	"context"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/store"
)

// ClientRepository defines persistence access for client records. Mutations
// go through ReplaceAll so the read-full, mutate, write-full cycle stays in
// the caller's hands.
type ClientRepository interface {
	List(ctx context.Context) ([]domain.ClientInfo, error)
	GetByID(ctx context.Context, id string) (*domain.ClientInfo, error)
	ReplaceAll(ctx context.Context, clients []domain.ClientInfo) error
}

type clientRepository struct {
	records store.RecordStore
}

// NewClientRepository returns a record-store backed implementation.
func NewClientRepository(records store.RecordStore) ClientRepository {
	return &clientRepository{records: records}
}

func (r *clientRepository) List(ctx context.Context) ([]domain.ClientInfo, error) {
	var clients []domain.ClientInfo
	if err := r.records.Read(ctx, store.CollectionClients, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.ClientInfo, error) {
	clients, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range clients {
		if clients[i].ID == id {
			return &clients[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *clientRepository) ReplaceAll(ctx context.Context, clients []domain.ClientInfo) error {
	return r.records.Write(ctx, store.CollectionClients, clients)
}
