package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/config"
)

// Notifier delivers a text message to an external channel. Delivery is
// best-effort; callers are expected to swallow failures.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// TelegramNotifier posts messages to a Telegram chat through the Bot API.
type TelegramNotifier struct {
	cfg        config.TelegramConfig
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTelegramNotifier builds a Telegram-backed notifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		cfg:        cfg,
		baseURL:    "https://api.telegram.org",
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// Notify sends the message with Markdown formatting enabled.
func (t *TelegramNotifier) Notify(ctx context.Context, message string) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    t.cfg.ChatID,
		"text":       message,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read telegram response: %w", err)
	}

	var apiResponse struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return fmt.Errorf("decode telegram response: %w", err)
	}
	if !apiResponse.OK {
		return fmt.Errorf("telegram api error: %s", apiResponse.Description)
	}

	t.logger.Debug("telegram notification sent")
	return nil
}

// NopNotifier is used when the channel is not configured; every delivery is
// a silent skip.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) error {
	return nil
}
