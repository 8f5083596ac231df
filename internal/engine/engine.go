package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/domain"
	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/genai"
	"github.com/spec-kit/support-portal/internal/service"
	apperrors "github.com/spec-kit/support-portal/pkg/util/errorutil"
)

// Fixed assistant texts. The greeting is substituted whenever the model
// backend cannot produce one, so the user always sees an opening message.
const (
	openingUtterance  = "Olá"
	fallbackGreeting  = "Olá! Sou o assistente virtual da ATX Contadores. Como posso te ajudar hoje?"
	turnErrorMessage  = "Desculpe, ocorreu um erro ao processar sua solicitação. Por favor, tente novamente mais tarde."
	confirmationModel = "Entendido. Sua solicitação sobre \"%s\" foi encaminhada para o departamento %s. Um de nossos especialistas entrará em contato em breve. Este atendimento será encerrado. Obrigado por contatar a ATX Contadores!"
)

// ModelSession is one running chat with the model capability.
type ModelSession interface {
	Send(ctx context.Context, text string) (*genai.Reply, error)
}

// SessionFactory obtains a fresh model session for a new conversation.
type SessionFactory func(ctx context.Context) (ModelSession, error)

// Config tunes engine behavior.
type Config struct {
	// HandoffDelay keeps the confirmation message visible before the
	// conversation is finalized and the ledger record is written.
	HandoffDelay time.Duration
	// PersistAborted records abandoned conversations with an unresolved
	// status instead of discarding them.
	PersistAborted bool
}

// Engine creates and finalizes conversations.
type Engine struct {
	factory    SessionFactory
	ledger     *service.LedgerService
	dispatcher events.Dispatcher
	cfg        Config
	logger     *zap.Logger
}

// NewEngine builds the engine.
func NewEngine(factory SessionFactory, ledger *service.LedgerService, dispatcher events.Dispatcher, cfg Config, logger *zap.Logger) *Engine {
	return &Engine{
		factory:    factory,
		ledger:     ledger,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger,
	}
}

// Conversation is one live chat owned by the engine. All state transitions
// go through its mutex; the handoff finalizer runs on a timer goroutine.
type Conversation struct {
	id     string
	client domain.ClientInfo
	engine *Engine
	model  ModelSession

	mu        sync.Mutex
	messages  []domain.Message
	status    domain.ConversationStatus
	pending   bool
	startedAt time.Time
	handoff   *domain.HandoffRequest
}

// Start opens a conversation for the client. It requests a model session
// and a greeting synchronously; any backend failure falls back to the fixed
// greeting, so Start never fails observably.
func (e *Engine) Start(ctx context.Context, client domain.ClientInfo) *Conversation {
	conv := &Conversation{
		id:        uuid.NewString(),
		client:    client,
		engine:    e,
		status:    domain.ConversationActive,
		startedAt: time.Now(),
	}

	greeting := fallbackGreeting
	greeted := false

	model, err := e.factory(ctx)
	if err != nil {
		e.logger.Warn("model session unavailable; using fallback greeting",
			zap.String("conversation_id", conv.id), zap.Error(err))
	} else {
		conv.model = model
		reply, err := model.Send(ctx, openingUtterance)
		switch {
		case err != nil:
			e.logger.Warn("greeting request failed; using fallback greeting",
				zap.String("conversation_id", conv.id), zap.Error(err))
		case strings.TrimSpace(reply.Text) != "":
			greeting = strings.TrimSpace(reply.Text)
			greeted = true
		}
	}

	conv.messages = append(conv.messages, domain.Message{
		Role:      domain.RoleAssistant,
		Content:   greeting,
		Timestamp: time.Now(),
	})

	e.publish(ctx, events.EventConversationStarted, conv, events.ConversationStartedPayload{
		CompanyName: client.CompanyName,
		Greeted:     greeted,
	})
	return conv
}

// SendTurn runs one turn of the protocol: the user message is appended
// before the backend round trip, then the model reply either extends the
// transcript, triggers the handoff, or is recovered in place with the fixed
// apologetic message.
func (c *Conversation) SendTurn(ctx context.Context, text string) ([]domain.Message, domain.ConversationStatus, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return nil, "", apperrors.NewValidationError("message text required", nil)
	}

	c.mu.Lock()
	// A decided handoff closes the conversation for input even while the
	// confirmation message is still on screen; a turn accepted in that
	// window would let a second handoff overwrite the first before its
	// finalizer runs.
	if c.status != domain.ConversationActive || c.handoff != nil {
		c.mu.Unlock()
		return nil, "", apperrors.NewConflict("conversation is not accepting messages", map[string]any{"status": c.status})
	}
	if c.pending {
		c.mu.Unlock()
		return nil, "", apperrors.NewConflict("a reply is already pending", nil)
	}
	c.pending = true
	c.append(domain.RoleUser, input)
	c.mu.Unlock()

	var reply *genai.Reply
	var err error
	if c.model == nil {
		err = genai.ErrNotConfigured
	} else {
		reply, err = c.model.Send(ctx, input)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The conversation may have been discarded while the call was in
	// flight; a late reply has no state to apply to. pending is cleared so
	// the flag always means "a turn is in flight".
	c.pending = false
	if c.status != domain.ConversationActive {
		return c.snapshot(), c.status, nil
	}

	if err != nil {
		c.engine.logger.Error("model turn failed",
			zap.String("conversation_id", c.id), zap.Error(err))
		c.append(domain.RoleAssistant, turnErrorMessage)
		c.publishLocked(ctx, events.EventConversationTurn, events.ConversationTurnPayload{
			UserPreview: preview(input),
			Recovered:   true,
		})
		return c.snapshot(), c.status, nil
	}

	if reply.HandedOff() {
		// Only the first handoff request is honored.
		c.beginHandoff(ctx, reply.Handoffs[0])
		return c.snapshot(), c.status, nil
	}

	c.append(domain.RoleAssistant, strings.TrimSpace(reply.Text))
	c.publishLocked(ctx, events.EventConversationTurn, events.ConversationTurnPayload{
		UserPreview: preview(input),
	})
	return c.snapshot(), c.status, nil
}

// beginHandoff appends the confirmation message, notifies the outbound
// channel through the dispatcher and arms the finalization timer. Callers
// hold the mutex.
func (c *Conversation) beginHandoff(ctx context.Context, handoff domain.HandoffRequest) {
	c.handoff = &handoff
	c.append(domain.RoleAssistant, fmt.Sprintf(confirmationModel, handoff.Summary, handoff.Department))

	c.publishLocked(ctx, events.EventConversationHandedOff, events.ConversationHandedOffPayload{
		CompanyName: c.client.CompanyName,
		Department:  handoff.Department,
		Summary:     handoff.Summary,
	})

	transcript := c.snapshot()
	delay := c.engine.cfg.HandoffDelay
	if delay <= 0 {
		c.finalizeLocked(transcript)
		return
	}
	time.AfterFunc(delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.finalizeLocked(transcript)
	})
}

// finalizeLocked transitions to HandedOff and emits the single immutable
// ledger record. Callers hold the mutex.
func (c *Conversation) finalizeLocked(transcript []domain.Message) {
	if c.status != domain.ConversationActive || c.handoff == nil {
		return
	}
	c.status = domain.ConversationHandedOff

	session := domain.ChatSession{
		ID:         "session_" + uuid.NewString()[:8],
		Client:     c.client,
		Department: c.handoff.Department,
		StartTime:  c.startedAt,
		EndTime:    time.Now(),
		Transcript: transcript,
		Resolution: domain.ResolutionForwarded,
		Summary:    c.handoff.Summary,
	}
	if err := c.engine.ledger.Save(context.Background(), session); err != nil {
		c.engine.logger.Error("failed to record chat session",
			zap.String("conversation_id", c.id), zap.Error(err))
	}
}

// Leave discards an active conversation. Nothing is persisted unless the
// engine is configured to keep aborted transcripts; once a handoff has been
// decided, leaving does not cancel finalization.
func (c *Conversation) Leave(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != domain.ConversationActive || c.handoff != nil {
		return
	}
	c.status = domain.ConversationAborted

	if !c.engine.cfg.PersistAborted {
		return
	}
	session := domain.ChatSession{
		ID:         "session_" + uuid.NewString()[:8],
		Client:     c.client,
		StartTime:  c.startedAt,
		EndTime:    time.Now(),
		Transcript: c.snapshot(),
		Resolution: domain.ResolutionUnresolved,
	}
	if err := c.engine.ledger.Save(ctx, session); err != nil {
		c.engine.logger.Error("failed to record aborted session",
			zap.String("conversation_id", c.id), zap.Error(err))
	}
}

// ID returns the conversation identifier.
func (c *Conversation) ID() string {
	return c.id
}

// Client returns the client the conversation belongs to.
func (c *Conversation) Client() domain.ClientInfo {
	return c.client
}

// Messages returns a copy of the transcript so far.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Status returns the current lifecycle state.
func (c *Conversation) Status() domain.ConversationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Conversation) append(role domain.Role, content string) {
	c.messages = append(c.messages, domain.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
}

func (c *Conversation) snapshot() []domain.Message {
	out := make([]domain.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) publishLocked(ctx context.Context, eventType events.EventType, payload interface{}) {
	c.engine.publish(ctx, eventType, c, payload)
}

func (e *Engine) publish(ctx context.Context, eventType events.EventType, conv *Conversation, payload interface{}) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(ctx, events.Event{
		ID:             uuid.NewString(),
		Type:           eventType,
		ConversationID: conv.id,
		ClientID:       conv.client.ID,
		Timestamp:      time.Now(),
		Payload:        payload,
	})
}

func preview(text string) string {
	const max = 80
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
