package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/auth"
	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/store"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

func newDirectoryForTest(t *testing.T) *DirectoryService {
	t.Helper()
	records := store.NewMemoryStore()
	svc := NewDirectoryService(DirectoryDependencies{
		ClientRepo:     repository.NewClientRepository(records),
		SpecialistRepo: repository.NewSpecialistRepository(records),
		Records:        records,
		Verifier:       auth.PlaintextVerifier{},
	}, zap.NewNop())
	if err := svc.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return svc
}

func TestSeedState(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	client, err := svc.GetClient(ctx, "cli_001")
	if err != nil {
		t.Fatalf("get cli_001: %v", err)
	}
	assignment, ok := client.Assignments[domain.DepartmentAccounting]
	if !ok {
		t.Fatalf("cli_001 should carry an accounting assignment")
	}
	if assignment.SpecialistID != "spec_ana.c" || assignment.Status != domain.AssignmentAccepted {
		t.Fatalf("unexpected seed assignment: %+v", assignment)
	}

	second, err := svc.GetClient(ctx, "cli_002")
	if err != nil {
		t.Fatalf("get cli_002: %v", err)
	}
	if second.Password != nil {
		t.Fatalf("cli_002 should start without a password")
	}
}

func TestResetIsIdempotent(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	if _, err := svc.CreateClient(ctx, ClientCreateInput{CompanyName: "Extra", ContactName: "Alguém"}); err != nil {
		t.Fatalf("create client: %v", err)
	}
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("second reset: %v", err)
	}

	clients, err := svc.ListClients(ctx)
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	if len(clients) != 2 {
		t.Fatalf("expected 2 seeded clients after reset, got %d", len(clients))
	}
}

func TestCreateSpecialistDuplicateUsername(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	_, err := svc.CreateSpecialist(ctx, SpecialistCreateInput{
		Username:   "ana.c",
		Name:       "Outra Ana",
		Department: domain.DepartmentTax,
	})
	if err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", domainErr.Code)
	}

	specialists, err := svc.ListSpecialists(ctx)
	if err != nil {
		t.Fatalf("list specialists: %v", err)
	}
	if len(specialists) != 2 {
		t.Fatalf("directory changed on rejected create: %d specialists", len(specialists))
	}
}

func TestAssignSpecialistDepartmentMismatch(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	// spec_bruno.f belongs to Fiscal, not DP.
	err := svc.AssignSpecialist(ctx, "cli_002", "spec_bruno.f", domain.DepartmentPayroll)
	if err == nil {
		t.Fatalf("expected department mismatch to be rejected")
	}
	if apperrors.ToDomainError(err).Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", apperrors.ToDomainError(err).Code)
	}
}

func TestAssignAndAccept(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	if err := svc.AssignSpecialist(ctx, "cli_002", "spec_bruno.f", domain.DepartmentTax); err != nil {
		t.Fatalf("assign: %v", err)
	}
	client, err := svc.GetClient(ctx, "cli_002")
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if client.Assignments[domain.DepartmentTax].Status != domain.AssignmentPending {
		t.Fatalf("new assignment should be pending")
	}

	accepted, err := svc.AcceptAssignment(ctx, "cli_002", "spec_bruno.f")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if !accepted {
		t.Fatalf("expected the pending assignment to be accepted")
	}

	client, err = svc.GetClient(ctx, "cli_002")
	if err != nil {
		t.Fatalf("get client: %v", err)
	}
	if client.Assignments[domain.DepartmentTax].Status != domain.AssignmentAccepted {
		t.Fatalf("assignment should be accepted")
	}
}

func TestAcceptAssignmentWithoutPending(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	// cli_001's accounting assignment is already accepted; nothing pending.
	accepted, err := svc.AcceptAssignment(ctx, "cli_001", "spec_ana.c")
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted {
		t.Fatalf("accept should report false when nothing is pending")
	}
}

func TestDeleteSpecialistCascadesAssignments(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	if err := svc.AssignSpecialist(ctx, "cli_002", "spec_bruno.f", domain.DepartmentTax); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := svc.DeleteSpecialist(ctx, "spec_ana.c"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	first, err := svc.GetClient(ctx, "cli_001")
	if err != nil {
		t.Fatalf("get cli_001: %v", err)
	}
	if _, ok := first.Assignments[domain.DepartmentAccounting]; ok {
		t.Fatalf("cli_001 assignment to deleted specialist should be removed")
	}

	second, err := svc.GetClient(ctx, "cli_002")
	if err != nil {
		t.Fatalf("get cli_002: %v", err)
	}
	if _, ok := second.Assignments[domain.DepartmentTax]; !ok {
		t.Fatalf("unrelated assignment must survive the cascade")
	}

	if _, err := svc.GetSpecialist(ctx, "spec_ana.c"); err == nil {
		t.Fatalf("deleted specialist should not resolve")
	}
}

func TestSetClientPasswordOnce(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	if err := svc.SetClientPassword(ctx, "cli_002", "nova-senha"); err != nil {
		t.Fatalf("set password: %v", err)
	}
	err := svc.SetClientPassword(ctx, "cli_002", "outra")
	if err == nil {
		t.Fatalf("second set must be rejected")
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", apperrors.ToDomainError(err).Code)
	}

	if err := svc.ResetClientPassword(ctx, "cli_002"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if err := svc.SetClientPassword(ctx, "cli_002", "outra"); err != nil {
		t.Fatalf("set after reset: %v", err)
	}
}

func TestClientsAssignedTo(t *testing.T) {
	svc := newDirectoryForTest(t)
	ctx := context.Background()

	clients, err := svc.ClientsAssignedTo(ctx, "spec_ana.c")
	if err != nil {
		t.Fatalf("assigned clients: %v", err)
	}
	if len(clients) != 1 || clients[0].ID != "cli_001" {
		t.Fatalf("expected cli_001 assigned to spec_ana.c, got %+v", clients)
	}

	none, err := svc.ClientsAssignedTo(ctx, "spec_bruno.f")
	if err != nil {
		t.Fatalf("assigned clients: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("spec_bruno.f should have no assigned clients yet")
	}
}
