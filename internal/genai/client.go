package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-portal/internal/config"
	"github.com/spec-kit/support-portal/internal/domain"
)

// ErrNotConfigured is returned when no API key is available; callers fall
// back to canned content.
var ErrNotConfigured = errors.New("gemini api key not configured")

// Reply is the normalized model output for one turn: either text, or one or
// more structured handoff requests.
type Reply struct {
	Text     string
	Handoffs []domain.HandoffRequest
}

// HandedOff reports whether the model requested a department handoff.
func (r *Reply) HandedOff() bool {
	return len(r.Handoffs) > 0
}

// Client talks to the Gemini generateContent REST API.
type Client struct {
	cfg        config.GeminiConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a Gemini client.
func NewClient(cfg config.GeminiConfig, logger *zap.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}
}

// Session is one running chat with server history kept client-side. A
// session is not safe for concurrent use; the engine serializes turns.
type Session struct {
	client  *Client
	history []content
}

// StartSession prepares a new chat session with the triage system prompt
// and the notifyDepartment tool attached.
func (c *Client) StartSession(_ context.Context) (*Session, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}
	return &Session{client: c}, nil
}

// wire types for the generateContent endpoint

type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Enum        []string          `json:"enum,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

type functionDeclaration struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  schema `json:"parameters"`
}

type functionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type part struct {
	Text         string        `json:"text,omitempty"`
	FunctionCall *functionCall `json:"functionCall,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"system_instruction,omitempty"`
	Contents          []content `json:"contents"`
	Tools             []struct {
		FunctionDeclarations []functionDeclaration `json:"function_declarations"`
	} `json:"tools,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Send appends the user text to the running history, calls the model and
// returns the normalized reply. On success the model turn is appended to
// the history as well.
func (s *Session) Send(ctx context.Context, text string) (*Reply, error) {
	userTurn := content{Role: "user", Parts: []part{{Text: text}}}

	reqBody := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction()}}},
		Contents:          append(append([]content{}, s.history...), userTurn),
	}
	reqBody.Tools = append(reqBody.Tools, struct {
		FunctionDeclarations []functionDeclaration `json:"function_declarations"`
	}{FunctionDeclarations: []functionDeclaration{notifyDepartmentDeclaration()}})

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent",
		strings.TrimRight(s.client.cfg.BaseURL, "/"), s.client.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.client.cfg.APIKey)

	res, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read model response: %w", err)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		s.client.logger.Warn("gemini returned non-2xx",
			zap.Int("status", res.StatusCode),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("unexpected model status: %s", res.Status)
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("model error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return nil, errors.New("model returned no candidates")
	}

	modelTurn := parsed.Candidates[0].Content
	reply, err := normalizeReply(modelTurn)
	if err != nil {
		return nil, err
	}

	s.history = append(s.history, userTurn, modelTurn)
	return reply, nil
}

func normalizeReply(modelTurn content) (*Reply, error) {
	reply := &Reply{}
	var texts []string
	for _, p := range modelTurn.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		if p.FunctionCall == nil || p.FunctionCall.Name != notifyDepartmentTool {
			continue
		}
		var args struct {
			Department string `json:"department"`
			Summary    string `json:"summary"`
		}
		if err := json.Unmarshal(p.FunctionCall.Args, &args); err != nil {
			return nil, fmt.Errorf("decode %s args: %w", notifyDepartmentTool, err)
		}
		department, err := domain.ParseDepartment(args.Department)
		if err != nil {
			return nil, err
		}
		reply.Handoffs = append(reply.Handoffs, domain.HandoffRequest{
			Department: department,
			Summary:    args.Summary,
		})
	}
	reply.Text = strings.TrimSpace(strings.Join(texts, "\n"))
	return reply, nil
}
