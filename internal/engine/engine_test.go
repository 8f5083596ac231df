package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/genai"
	"github.com/spec-kit/support-portal/internal/repository"
	"github.com/spec-kit/support-portal/internal/service"
	"github.com/spec-kit/support-portal/internal/store"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// scriptedModel returns canned replies in order; the first Send is the
// greeting request.
type scriptedModel struct {
	replies []*genai.Reply
	errs    []error
	calls   int
}

func (m *scriptedModel) Send(_ context.Context, _ string) (*genai.Reply, error) {
	i := m.calls
	m.calls++
	var err error
	if i < len(m.errs) {
		err = m.errs[i]
	}
	if err != nil {
		return nil, err
	}
	if i < len(m.replies) {
		return m.replies[i], nil
	}
	return &genai.Reply{Text: "ok"}, nil
}

func factoryFor(model ModelSession) SessionFactory {
	return func(context.Context) (ModelSession, error) {
		return model, nil
	}
}

func newEngineForTest(t *testing.T, factory SessionFactory, cfg Config) (*Engine, *service.LedgerService) {
	t.Helper()
	records := store.NewMemoryStore()
	ledger := service.NewLedgerService(repository.NewSessionRepository(records), nil)
	return NewEngine(factory, ledger, nil, cfg, zap.NewNop()), ledger
}

func testClient() domain.ClientInfo {
	return domain.ClientInfo{ID: "cli_001", CompanyName: "Padaria Pão Quente"}
}

func TestStartUsesModelGreeting(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{{Text: "Bom dia! Em que posso ajudar?"}}}
	eng, _ := newEngineForTest(t, factoryFor(model), Config{})

	conv := eng.Start(context.Background(), testClient())

	messages := conv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected one greeting message, got %d", len(messages))
	}
	if messages[0].Role != domain.RoleAssistant || messages[0].Content != "Bom dia! Em que posso ajudar?" {
		t.Fatalf("unexpected greeting: %+v", messages[0])
	}
	if conv.Status() != domain.ConversationActive {
		t.Fatalf("new conversation should be active")
	}
}

func TestStartFallsBackWhenFactoryFails(t *testing.T) {
	factory := func(context.Context) (ModelSession, error) {
		return nil, genai.ErrNotConfigured
	}
	eng, _ := newEngineForTest(t, factory, Config{})

	conv := eng.Start(context.Background(), testClient())

	messages := conv.Messages()
	if len(messages) != 1 || messages[0].Content != fallbackGreeting {
		t.Fatalf("expected fallback greeting, got %+v", messages)
	}
	if conv.Status() != domain.ConversationActive {
		t.Fatalf("conversation should open even without a model backend")
	}
}

func TestStartFallsBackWhenGreetingFails(t *testing.T) {
	model := &scriptedModel{errs: []error{errors.New("boom")}}
	eng, _ := newEngineForTest(t, factoryFor(model), Config{})

	conv := eng.Start(context.Background(), testClient())
	messages := conv.Messages()
	if len(messages) != 1 || messages[0].Content != fallbackGreeting {
		t.Fatalf("expected fallback greeting, got %+v", messages)
	}
}

func TestSendTurnOptimisticOrdering(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{
		{Text: "Olá!"},
		{Text: "Claro, posso ajudar com isso."},
	}}
	eng, _ := newEngineForTest(t, factoryFor(model), Config{})
	conv := eng.Start(context.Background(), testClient())

	messages, status, err := conv.SendTurn(context.Background(), "Preciso da segunda via do balancete")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != domain.ConversationActive {
		t.Fatalf("plain turn must keep the conversation active")
	}
	if len(messages) != 3 {
		t.Fatalf("expected greeting + user + reply, got %d", len(messages))
	}
	if messages[1].Role != domain.RoleUser || messages[1].Content != "Preciso da segunda via do balancete" {
		t.Fatalf("user message must precede the reply: %+v", messages[1])
	}
	if messages[2].Role != domain.RoleAssistant {
		t.Fatalf("reply must follow the user message: %+v", messages[2])
	}
}

func TestSendTurnRejectsEmptyText(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{{Text: "Olá!"}}}
	eng, _ := newEngineForTest(t, factoryFor(model), Config{})
	conv := eng.Start(context.Background(), testClient())

	_, _, err := conv.SendTurn(context.Background(), "   ")
	if err == nil {
		t.Fatalf("blank text must be rejected")
	}
	if apperrors.ToDomainError(err).Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %s", apperrors.ToDomainError(err).Code)
	}
}

func TestSendTurnRecoversFromModelError(t *testing.T) {
	model := &scriptedModel{
		replies: []*genai.Reply{{Text: "Olá!"}, nil, {Text: "Agora sim."}},
		errs:    []error{nil, errors.New("timeout"), nil},
	}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{})
	conv := eng.Start(context.Background(), testClient())

	messages, status, err := conv.SendTurn(context.Background(), "primeira tentativa")
	if err != nil {
		t.Fatalf("turn errors must be recovered in place: %v", err)
	}
	if status != domain.ConversationActive {
		t.Fatalf("conversation must stay active after a failed turn")
	}
	last := messages[len(messages)-1]
	if last.Content != turnErrorMessage {
		t.Fatalf("expected the apologetic message, got %q", last.Content)
	}

	// The conversation is still usable.
	messages, _, err = conv.SendTurn(context.Background(), "segunda tentativa")
	if err != nil {
		t.Fatalf("send after recovery: %v", err)
	}
	if messages[len(messages)-1].Content != "Agora sim." {
		t.Fatalf("expected a normal reply after recovery")
	}

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("no ledger record before a terminal transition")
	}
}

func TestHandoffFinalizesAndRecords(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{
		{Text: "Olá!"},
		{Handoffs: []domain.HandoffRequest{{
			Department: domain.DepartmentTax,
			Summary:    "Dúvida sobre nota fiscal",
		}}},
	}}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{HandoffDelay: 0})
	conv := eng.Start(context.Background(), testClient())

	messages, status, err := conv.SendTurn(context.Background(), "Como emito nota fiscal?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != domain.ConversationHandedOff {
		t.Fatalf("zero delay must finalize synchronously, got %s", status)
	}

	confirmation := messages[len(messages)-1]
	if confirmation.Role != domain.RoleAssistant {
		t.Fatalf("confirmation must come from the assistant")
	}
	if !strings.Contains(confirmation.Content, "Fiscal") || !strings.Contains(confirmation.Content, "Dúvida sobre nota fiscal") {
		t.Fatalf("confirmation must name department and summary: %q", confirmation.Content)
	}

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected exactly one ledger record, got %d", len(sessions))
	}
	session := sessions[0]
	if session.Resolution != domain.ResolutionForwarded {
		t.Fatalf("resolution = %s, want %s", session.Resolution, domain.ResolutionForwarded)
	}
	if session.Department != domain.DepartmentTax {
		t.Fatalf("department = %s, want %s", session.Department, domain.DepartmentTax)
	}
	if session.Summary != "Dúvida sobre nota fiscal" {
		t.Fatalf("summary = %q", session.Summary)
	}
	if len(session.Transcript) != len(messages) {
		t.Fatalf("transcript length %d, want %d", len(session.Transcript), len(messages))
	}

	// Terminal state rejects further turns.
	_, _, err = conv.SendTurn(context.Background(), "mais uma coisa")
	if err == nil {
		t.Fatalf("handed-off conversation must reject new turns")
	}
}

func TestHandoffDelayedFinalization(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{
		{Text: "Olá!"},
		{Handoffs: []domain.HandoffRequest{{
			Department: domain.DepartmentPayroll,
			Summary:    "Folha de pagamento",
		}}},
	}}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{HandoffDelay: 20 * time.Millisecond})
	conv := eng.Start(context.Background(), testClient())

	_, status, err := conv.SendTurn(context.Background(), "Dúvida de folha")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != domain.ConversationActive {
		t.Fatalf("conversation stays active while the confirmation is shown")
	}

	deadline := time.Now().Add(2 * time.Second)
	for conv.Status() != domain.ConversationHandedOff {
		if time.Now().After(deadline) {
			t.Fatalf("conversation never finalized")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected one ledger record after finalization, got %d", len(sessions))
	}
}

func TestHandoffPublishesEventOnce(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	var handoffs int
	dispatcher.Subscribe(events.EventConversationHandedOff, func(context.Context, events.Event) error {
		handoffs++
		return nil
	})

	model := &scriptedModel{replies: []*genai.Reply{
		{Text: "Olá!"},
		{Handoffs: []domain.HandoffRequest{
			{Department: domain.DepartmentCorporate, Summary: "Alteração contratual"},
			{Department: domain.DepartmentFinance, Summary: "duplicado"},
		}},
	}}
	records := store.NewMemoryStore()
	ledger := service.NewLedgerService(repository.NewSessionRepository(records), nil)
	eng := NewEngine(factoryFor(model), ledger, dispatcher, Config{}, zap.NewNop())
	conv := eng.Start(context.Background(), testClient())

	if _, _, err := conv.SendTurn(context.Background(), "Preciso alterar o contrato social"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if handoffs != 1 {
		t.Fatalf("expected exactly one handoff event, got %d", handoffs)
	}

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Department != domain.DepartmentCorporate {
		t.Fatalf("only the first handoff request is honored: %+v", sessions)
	}
}

func TestLeaveDiscardsByDefault(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{{Text: "Olá!"}, {Text: "claro"}}}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{})
	conv := eng.Start(context.Background(), testClient())

	if _, _, err := conv.SendTurn(context.Background(), "oi"); err != nil {
		t.Fatalf("send: %v", err)
	}
	conv.Leave(context.Background())

	if conv.Status() != domain.ConversationAborted {
		t.Fatalf("status = %s, want aborted", conv.Status())
	}
	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("abandoned conversations are not persisted by default")
	}
}

func TestLeavePersistsWhenConfigured(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{{Text: "Olá!"}}}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{PersistAborted: true})
	conv := eng.Start(context.Background(), testClient())

	conv.Leave(context.Background())

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected the aborted session to be recorded")
	}
	if sessions[0].Resolution != domain.ResolutionUnresolved {
		t.Fatalf("resolution = %s, want %s", sessions[0].Resolution, domain.ResolutionUnresolved)
	}
}

func TestLeaveAfterHandoffIsNoop(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{
		{Text: "Olá!"},
		{Handoffs: []domain.HandoffRequest{{
			Department: domain.DepartmentAccounting,
			Summary:    "Balancete",
		}}},
	}}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{HandoffDelay: 20 * time.Millisecond})
	conv := eng.Start(context.Background(), testClient())

	if _, _, err := conv.SendTurn(context.Background(), "balancete por favor"); err != nil {
		t.Fatalf("send: %v", err)
	}
	conv.Leave(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for conv.Status() != domain.ConversationHandedOff {
		if time.Now().After(deadline) {
			t.Fatalf("leaving must not cancel a decided handoff; status = %s", conv.Status())
		}
		time.Sleep(5 * time.Millisecond)
	}

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Resolution != domain.ResolutionForwarded {
		t.Fatalf("the handoff record must win: %+v", sessions)
	}
}

func TestSendTurnRejectedDuringHandoffWindow(t *testing.T) {
	model := &scriptedModel{replies: []*genai.Reply{
		{Text: "Olá!"},
		{Handoffs: []domain.HandoffRequest{{
			Department: domain.DepartmentTax,
			Summary:    "Dúvida sobre nota fiscal",
		}}},
		{Handoffs: []domain.HandoffRequest{{
			Department: domain.DepartmentPayroll,
			Summary:    "Folha de pagamento",
		}}},
	}}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{HandoffDelay: 50 * time.Millisecond})
	conv := eng.Start(context.Background(), testClient())

	messages, _, err := conv.SendTurn(context.Background(), "Como emito nota fiscal?")
	if err != nil {
		t.Fatalf("first turn: %v", err)
	}

	// The conversation still shows as active while the confirmation is on
	// screen, but a decided handoff no longer accepts input.
	_, _, err = conv.SendTurn(context.Background(), "e a folha de pagamento?")
	if err == nil {
		t.Fatalf("turn inside the handoff window must be rejected")
	}
	if apperrors.ToDomainError(err).Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %s", apperrors.ToDomainError(err).Code)
	}

	deadline := time.Now().Add(2 * time.Second)
	for conv.Status() != domain.ConversationHandedOff {
		if time.Now().After(deadline) {
			t.Fatalf("conversation never finalized")
		}
		time.Sleep(5 * time.Millisecond)
	}

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("expected one ledger record, got %d", len(sessions))
	}
	session := sessions[0]
	if session.Department != domain.DepartmentTax || session.Summary != "Dúvida sobre nota fiscal" {
		t.Fatalf("record must carry the decided handoff's fields: %s %q", session.Department, session.Summary)
	}
	if len(session.Transcript) != len(messages) {
		t.Fatalf("transcript must match the messages at handoff time: %d != %d",
			len(session.Transcript), len(messages))
	}
}

// gatedModel blocks its second Send until released, so a teardown can race
// the in-flight turn deterministically.
type gatedModel struct {
	entered chan struct{}
	release chan struct{}
	calls   int
}

func (m *gatedModel) Send(_ context.Context, _ string) (*genai.Reply, error) {
	m.calls++
	if m.calls == 1 {
		return &genai.Reply{Text: "Olá!"}, nil
	}
	close(m.entered)
	<-m.release
	return &genai.Reply{Text: "tarde demais"}, nil
}

func TestLateReplyAfterLeaveIsDropped(t *testing.T) {
	model := &gatedModel{entered: make(chan struct{}), release: make(chan struct{})}
	eng, ledger := newEngineForTest(t, factoryFor(model), Config{})
	conv := eng.Start(context.Background(), testClient())

	type result struct {
		messages []domain.Message
		status   domain.ConversationStatus
		err      error
	}
	done := make(chan result, 1)
	go func() {
		messages, status, err := conv.SendTurn(context.Background(), "alguém aí?")
		done <- result{messages, status, err}
	}()

	<-model.entered
	conv.Leave(context.Background())
	close(model.release)

	res := <-done
	if res.err != nil {
		t.Fatalf("late turn: %v", res.err)
	}
	if res.status != domain.ConversationAborted {
		t.Fatalf("status = %s, want aborted", res.status)
	}
	last := res.messages[len(res.messages)-1]
	if last.Role != domain.RoleUser {
		t.Fatalf("the late model reply must be dropped, got %+v", last)
	}

	conv.mu.Lock()
	pending := conv.pending
	conv.mu.Unlock()
	if pending {
		t.Fatalf("pending must be cleared once the in-flight turn returns")
	}

	sessions, err := ledger.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("discarded conversation must not be persisted")
	}
}

func TestPreviewKeepsRuneBoundaries(t *testing.T) {
	long := strings.Repeat("ã", 60) // 120 bytes
	got := preview(long)
	if len(got) > 80 {
		t.Fatalf("preview too long: %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("preview split a rune: %q", got)
	}
	if preview("curto") != "curto" {
		t.Fatalf("short text must pass through unchanged")
	}
}

func TestSendTurnWithoutModelBackend(t *testing.T) {
	factory := func(context.Context) (ModelSession, error) {
		return nil, genai.ErrNotConfigured
	}
	eng, _ := newEngineForTest(t, factory, Config{})
	conv := eng.Start(context.Background(), testClient())

	messages, status, err := conv.SendTurn(context.Background(), "alguém aí?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if status != domain.ConversationActive {
		t.Fatalf("conversation stays active without a backend")
	}
	if messages[len(messages)-1].Content != turnErrorMessage {
		t.Fatalf("expected the apologetic message, got %q", messages[len(messages)-1].Content)
	}
}
