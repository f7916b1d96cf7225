package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"
)

// DefaultResendEndpoint is the Resend send-email API.
const DefaultResendEndpoint = "https://api.resend.com/emails"

// maxErrorBody bounds how much of a provider error reply is relayed.
const maxErrorBody = 8 << 10

// Resend delivers through the Resend HTTP API.
type Resend struct {
	apiKey   string
	endpoint string
	from     string
	to       string
	client   *http.Client
}

// ResendConfig configures a Resend mailer.
type ResendConfig struct {
	APIKey   string
	Endpoint string
	From     string
	To       string
	Timeout  time.Duration
}

// NewResend returns a Resend mailer. Empty endpoint and timeout take
// defaults.
func NewResend(cfg ResendConfig) *Resend {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultResendEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Resend{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		from:     cfg.From,
		to:       cfg.To,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

func (r *Resend) Name() string { return "resend" }

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

// Send posts msg to Resend. A non-2xx reply becomes a *ProviderError with
// the response body as text.
func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	payload, err := json.Marshal(resendRequest{
		From:    r.from,
		To:      []string{r.to},
		ReplyTo: msg.Email,
		Subject: "New portfolio message from " + msg.Name,
		HTML:    renderHTML(msg),
	})
	if err != nil {
		return "", fmt.Errorf("encoding resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending to resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &ProviderError{Provider: r.Name(), Status: resp.StatusCode, Body: string(body)}
	}

	var out resendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return "", fmt.Errorf("decoding resend response: %w", err)
	}
	if out.ID == "" {
		return "sent", nil
	}
	return out.ID, nil
}

func renderHTML(msg Message) string {
	return fmt.Sprintf("<p><strong>From:</strong> %s (%s)</p><p>%s</p>",
		html.EscapeString(msg.Name),
		html.EscapeString(msg.Email),
		html.EscapeString(msg.Message),
	)
}
