package repository

import (
	"context"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/store"
)

// SpecialistRepository defines persistence access for specialist records.
type SpecialistRepository interface {
	List(ctx context.Context) ([]domain.Specialist, error)
	GetByID(ctx context.Context, id string) (*domain.Specialist, error)
	GetByUsername(ctx context.Context, username string) (*domain.Specialist, error)
	ReplaceAll(ctx context.Context, specialists []domain.Specialist) error
}

type specialistRepository struct {
	records store.RecordStore
}

// NewSpecialistRepository returns a record-store backed implementation.
func NewSpecialistRepository(records store.RecordStore) SpecialistRepository {
	return &specialistRepository{records: records}
}

func (r *specialistRepository) List(ctx context.Context) ([]domain.Specialist, error) {
	var specialists []domain.Specialist
	if err := r.records.Read(ctx, store.CollectionSpecialists, &specialists); err != nil {
		return nil, err
	}
	return specialists, nil
}

func (r *specialistRepository) GetByID(ctx context.Context, id string) (*domain.Specialist, error) {
	specialists, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range specialists {
		if specialists[i].ID == id {
			return &specialists[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *specialistRepository) GetByUsername(ctx context.Context, username string) (*domain.Specialist, error) {
	specialists, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range specialists {
		if specialists[i].Username == username {
			return &specialists[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *specialistRepository) ReplaceAll(ctx context.Context, specialists []domain.Specialist) error {
	return r.records.Write(ctx, store.CollectionSpecialists, specialists)
}
