package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/events"
	"github.com/spec-kit/support-portal/internal/notify"
)

// NotificationService forwards handoff summaries to the configured outbound
// channel. Delivery is best-effort: failures are logged and swallowed, and
// they never block the conversation's terminal transition.
type NotificationService struct {
	dispatcher events.Dispatcher
	notifier   notify.Notifier
	configured bool
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifier notify.Notifier, configured bool, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		notifier:   notifier,
		configured: configured,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventConversationHandedOff, n.handleConversationHandedOff)
}

func (n *NotificationService) handleConversationHandedOff(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ConversationHandedOffPayload)
	if !ok {
		return nil
	}
	if !n.configured {
		n.logger.Warn("notification channel not configured; skipping handoff notification",
			zap.String("conversation_id", event.ConversationID))
		return nil
	}

	message := FormatHandoffNotification(payload.CompanyName, string(payload.Department), payload.Summary)
	if err := n.notifier.Notify(ctx, message); err != nil {
		n.logger.Error("handoff notification failed",
			zap.String("conversation_id", event.ConversationID),
			zap.Error(err))
		return nil
	}
	n.logger.Info("handoff notification sent",
		zap.String("conversation_id", event.ConversationID),
		zap.String("department", string(payload.Department)))
	return nil
}

// FormatHandoffNotification renders the outbound channel message.
func FormatHandoffNotification(companyName, department, summary string) string {
	return fmt.Sprintf("*Nova Solicitação de Cliente*\n\n*Cliente:* %s\n*Departamento:* %s\n*Resumo:* %s",
		companyName, department, summary)
}
