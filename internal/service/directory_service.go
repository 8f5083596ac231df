package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/store"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// DirectoryService owns client and specialist records, including assignment
// bookkeeping. Every mutation runs a read-full, mutate, write-full cycle
// against the record store; the cycle is serialized by a per-process mutex
// because the store itself has no multi-writer protection.
type DirectoryService struct {
	mu          sync.Mutex
	clients     repository.ClientRepository
	specialists repository.SpecialistRepository
	records     store.RecordStore
	verifier    auth.Verifier
	logger      *zap.Logger
}

// DirectoryDependencies bundles the service requirements.
type DirectoryDependencies struct {
	ClientRepo     repository.ClientRepository
	SpecialistRepo repository.SpecialistRepository
	Records        store.RecordStore
	Verifier       auth.Verifier
}

// NewDirectoryService builds the service.
func NewDirectoryService(deps DirectoryDependencies, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{
		clients:     deps.ClientRepo,
		specialists: deps.SpecialistRepo,
		records:     deps.Records,
		verifier:    deps.Verifier,
		logger:      logger,
	}
}

// ClientCreateInput describes the admin-entered client fields.
type ClientCreateInput struct {
	CompanyName string
	ContactName string
	Email       string
	CNPJ        string
}

// SpecialistCreateInput describes the admin-entered specialist fields.
type SpecialistCreateInput struct {
	Username   string
	Name       string
	Department domain.Department
}

// ListClients returns every client record.
func (s *DirectoryService) ListClients(ctx context.Context) ([]domain.ClientInfo, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return clients, nil
}

// GetClient returns one client by id.
func (s *DirectoryService) GetClient(ctx context.Context, id string) (*domain.ClientInfo, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("client", map[string]any{"client_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return client, nil
}

// CreateClient registers a new client with an unset password.
func (s *DirectoryService) CreateClient(ctx context.Context, input ClientCreateInput) (*domain.ClientInfo, error) {
	if strings.TrimSpace(input.CompanyName) == "" || strings.TrimSpace(input.ContactName) == "" {
		return nil, apperrors.NewValidationError("company and contact names required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	client := domain.ClientInfo{
		ID:          "cli_" + uuid.NewString()[:8],
		CompanyName: input.CompanyName,
		ContactName: input.ContactName,
		Email:       input.Email,
		CNPJ:        input.CNPJ,
		Password:    nil,
	}
	if err := s.clients.ReplaceAll(ctx, append(clients, client)); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &client, nil
}

// SetClientPassword completes the first-login flow. Passwords are set once;
// overwriting an existing one requires an admin reset first.
func (s *DirectoryService) SetClientPassword(ctx context.Context, clientID, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("password required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.clients.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	for i := range clients {
		if clients[i].ID != clientID {
			continue
		}
		if clients[i].Password != nil {
			return apperrors.NewConflict("password already set", map[string]any{"client_id": clientID})
		}
		stored, err := s.verifier.Hash(newPassword)
		if err != nil {
			return apperrors.MapError(err)
		}
		clients[i].Password = &stored
		return apperrors.MapError(s.clients.ReplaceAll(ctx, clients))
	}
	return apperrors.NewNotFound("client", map[string]any{"client_id": clientID})
}

// ResetClientPassword clears the stored password so the client goes through
// the set-password flow again.
func (s *DirectoryService) ResetClientPassword(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.clients.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	for i := range clients {
		if clients[i].ID != clientID {
			continue
		}
		clients[i].Password = nil
		return apperrors.MapError(s.clients.ReplaceAll(ctx, clients))
	}
	return apperrors.NewNotFound("client", map[string]any{"client_id": clientID})
}

// ListSpecialists returns every specialist record.
func (s *DirectoryService) ListSpecialists(ctx context.Context) ([]domain.Specialist, error) {
	specialists, err := s.specialists.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return specialists, nil
}

// GetSpecialist returns one specialist by id.
func (s *DirectoryService) GetSpecialist(ctx context.Context, id string) (*domain.Specialist, error) {
	specialist, err := s.specialists.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("specialist", map[string]any{"specialist_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return specialist, nil
}

// CreateSpecialist registers a new specialist. Usernames are unique across
// all specialists; a duplicate leaves the collection unchanged.
func (s *DirectoryService) CreateSpecialist(ctx context.Context, input SpecialistCreateInput) (*domain.Specialist, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("username and name required", nil)
	}
	if !input.Department.Valid() {
		return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": input.Department})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specialists, err := s.specialists.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range specialists {
		if specialists[i].Username == username {
			return nil, apperrors.NewConflict("username already in use", map[string]any{"username": username})
		}
	}

	specialist := domain.Specialist{
		ID:         "spec_" + username,
		Username:   username,
		Name:       input.Name,
		Department: input.Department,
		Password:   nil,
	}
	if err := s.specialists.ReplaceAll(ctx, append(specialists, specialist)); err != nil {
		return nil, apperrors.MapError(err)
	}
	return &specialist, nil
}

// SetSpecialistPassword completes the specialist first-login flow.
func (s *DirectoryService) SetSpecialistPassword(ctx context.Context, specialistID, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewValidationError("password required", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specialists, err := s.specialists.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	for i := range specialists {
		if specialists[i].ID != specialistID {
			continue
		}
		if specialists[i].Password != nil {
			return apperrors.NewConflict("password already set", map[string]any{"specialist_id": specialistID})
		}
		stored, err := s.verifier.Hash(newPassword)
		if err != nil {
			return apperrors.MapError(err)
		}
		specialists[i].Password = &stored
		return apperrors.MapError(s.specialists.ReplaceAll(ctx, specialists))
	}
	return apperrors.NewNotFound("specialist", map[string]any{"specialist_id": specialistID})
}

// ResetSpecialistPassword clears the stored password.
func (s *DirectoryService) ResetSpecialistPassword(ctx context.Context, specialistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	specialists, err := s.specialists.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	for i := range specialists {
		if specialists[i].ID != specialistID {
			continue
		}
		specialists[i].Password = nil
		return apperrors.MapError(s.specialists.ReplaceAll(ctx, specialists))
	}
	return apperrors.NewNotFound("specialist", map[string]any{"specialist_id": specialistID})
}

// DeleteSpecialist removes the specialist and cascades: every assignment
// referencing it is removed from every client, leaving other assignments
// untouched.
func (s *DirectoryService) DeleteSpecialist(ctx context.Context, specialistID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	specialists, err := s.specialists.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}

	remaining := specialists[:0]
	found := false
	for _, specialist := range specialists {
		if specialist.ID == specialistID {
			found = true
			continue
		}
		remaining = append(remaining, specialist)
	}
	if !found {
		return apperrors.NewNotFound("specialist", map[string]any{"specialist_id": specialistID})
	}
	if err := s.specialists.ReplaceAll(ctx, remaining); err != nil {
		return apperrors.MapError(err)
	}

	clients, err := s.clients.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	for i := range clients {
		for department, assignment := range clients[i].Assignments {
			if assignment.SpecialistID == specialistID {
				delete(clients[i].Assignments, department)
			}
		}
	}
	return apperrors.MapError(s.clients.ReplaceAll(ctx, clients))
}

// AssignSpecialist creates a pending assignment for the client under the
// given department. The specialist must belong to that department.
func (s *DirectoryService) AssignSpecialist(ctx context.Context, clientID, specialistID string, department domain.Department) error {
	if !department.Valid() {
		return apperrors.NewValidationError("unknown department", map[string]any{"department": department})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	specialist, err := s.specialists.GetByID(ctx, specialistID)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NewNotFound("specialist", map[string]any{"specialist_id": specialistID})
		}
		return apperrors.MapError(err)
	}
	if specialist.Department != department {
		return apperrors.NewValidationError("specialist does not belong to this department", map[string]any{
			"specialist_id": specialistID,
			"department":    department,
		})
	}

	clients, err := s.clients.List(ctx)
	if err != nil {
		return apperrors.MapError(err)
	}
	for i := range clients {
		if clients[i].ID != clientID {
			continue
		}
		if clients[i].Assignments == nil {
			clients[i].Assignments = make(map[domain.Department]domain.Assignment)
		}
		clients[i].Assignments[department] = domain.Assignment{
			SpecialistID: specialistID,
			Status:       domain.AssignmentPending,
		}
		return apperrors.MapError(s.clients.ReplaceAll(ctx, clients))
	}
	return apperrors.NewNotFound("client", map[string]any{"client_id": clientID})
}

// AcceptAssignment transitions the pending assignment matching the client
// and specialist pair to accepted. It reports false when no pending
// assignment matches, mutating nothing.
func (s *DirectoryService) AcceptAssignment(ctx context.Context, clientID, specialistID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.clients.List(ctx)
	if err != nil {
		return false, apperrors.MapError(err)
	}
	for i := range clients {
		if clients[i].ID != clientID {
			continue
		}
		for department, assignment := range clients[i].Assignments {
			if assignment.SpecialistID != specialistID || assignment.Status != domain.AssignmentPending {
				continue
			}
			assignment.Status = domain.AssignmentAccepted
			clients[i].Assignments[department] = assignment
			if err := s.clients.ReplaceAll(ctx, clients); err != nil {
				return false, apperrors.MapError(err)
			}
			return true, nil
		}
		return false, nil
	}
	return false, nil
}

// ClientsAssignedTo returns clients holding an assignment for the given
// specialist, for the specialist dashboard.
func (s *DirectoryService) ClientsAssignedTo(ctx context.Context, specialistID string) ([]domain.ClientInfo, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	var assigned []domain.ClientInfo
	for _, client := range clients {
		for _, assignment := range client.Assignments {
			if assignment.SpecialistID == specialistID {
				assigned = append(assigned, client)
				break
			}
		}
	}
	return assigned, nil
}
