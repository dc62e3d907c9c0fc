package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"biovault/internal/platform/httpclient"
	"biovault/internal/ports/assistant"
)

var (
	ErrNotConfigured = errors.New("gemini client not configured")
	ErrUpstream      = errors.New("gemini upstream error")
	ErrEmptyReply    = errors.New("gemini returned no candidates")
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"

	// systemPrompt ancla al asistente: responde sobre la salud del usuario
	// usando solo el contexto de la bóveda, sin inventar diagnósticos.
	systemPrompt = "You are a helpful health assistant for a personal health " +
		"record vault. Answer questions about the user's stored records, " +
		"access grants and emergency settings. Do not provide diagnoses; " +
		"suggest consulting a clinician for medical decisions."
)

// Config del cliente Gemini. APIKey normalmente viene de env vars.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client implementa assistant.Client contra la API generateContent.
type Client struct {
	http   *httpclient.Client
	apiKey string
	model  string
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:   hc,
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

// Formato wire de generateContent (subset que usamos).
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generateRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Chat manda el historial completo a generateContent y devuelve el texto
// del primer candidato.
func (c *Client) Chat(ctx context.Context, messages []assistant.Message) (string, error) {
	if !c.IsConfigured() {
		return "", ErrNotConfigured
	}

	req := generateRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: systemPrompt}},
		},
	}
	for _, m := range messages {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		req.Contents = append(req.Contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}

	path := fmt.Sprintf("/models/%s:generateContent", c.model)
	headers := map[string]string{"x-goog-api-key": c.apiKey}

	var resp generateResponse
	if err := c.http.DoJSON(ctx, "POST", path, headers, req, &resp); err != nil {
		var herr *httpclient.HTTPError
		if errors.As(err, &herr) {
			return "", fmt.Errorf("%w: status=%d", ErrUpstream, herr.StatusCode)
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if len(resp.Candidates) == 0 {
		return "", ErrEmptyReply
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}
