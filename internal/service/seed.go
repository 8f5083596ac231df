package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/store"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// Reset clears all three collections and reseeds the demo records. Calling
// it repeatedly yields the same state every time.
func (s *DirectoryService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.records.Clear(ctx, store.Collections()...); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.seed(ctx); err != nil {
		return err
	}
	s.logger.Info("application data reset to seed state")
	return nil
}

// SeedIfEmpty seeds the demo records when the directory has never been
// written, mirroring first-run behavior.
func (s *DirectoryService) SeedIfEmpty(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.clients.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	specialists, err := s.specialists.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	if len(clients) > 0 || len(specialists) > 0 {
		return nil
	}
	return s.seed(ctx)
}

// seed writes the two demo clients and two demo specialists. Callers hold
// the mutex.
func (s *DirectoryService) seed(ctx context.Context) error {
	demoPassword, err := s.verifier.Hash("123")
	if err != nil {
		return apperrors.MapError(err)
	}

	clients := []domain.ClientInfo{
		{
			ID:          "cli_001",
			CompanyName: "Padaria Pão Quente",
			ContactName: "João Silva",
			Email:       "joao@paoquente.com",
			CNPJ:        "11.111.111/0001-11",
			Password:    &demoPassword,
			Assignments: map[domain.Department]domain.Assignment{
				domain.DepartmentAccounting: {
					SpecialistID: "spec_ana.c",
					Status:       domain.AssignmentAccepted,
				},
			},
		},
		{
			ID:          "cli_002",
			CompanyName: "Oficina Mecânica Veloz",
			ContactName: "Maria Souza",
			Email:       "maria@oficinaveloz.com",
			CNPJ:        "22.222.222/0001-22",
			Password:    nil,
		},
	}
	specialists := []domain.Specialist{
		{
			ID:         "spec_ana.c",
			Username:   "ana.c",
			Name:       "Ana Costa",
			Department: domain.DepartmentAccounting,
			Password:   &demoPassword,
		},
		{
			ID:         "spec_bruno.f",
			Username:   "bruno.f",
			Name:       "Bruno Fernandes",
			Department: domain.DepartmentTax,
			Password:   nil,
		},
	}

	if err := s.clients.ReplaceAll(ctx, clients); err != nil {
		return apperrors.MapError(err)
	}
	if err := s.specialists.ReplaceAll(ctx, specialists); err != nil {
		return apperrors.MapError(err)
	}
	s.logger.Info("seeded demo directory data", zap.Int("clients", len(clients)), zap.Int("specialists", len(specialists)))
	return nil
}
