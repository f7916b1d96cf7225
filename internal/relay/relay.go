// Package relay forwards contact form submissions to an email provider.
// It is a one-shot relay: no retries, no queueing, nothing stored.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
)

var (
	// ErrMissingFields means name, email or message was empty.
	ErrMissingFields = errors.New("relay: missing required fields")
	// ErrNotConfigured means no provider credential is set. No network
	// call is attempted.
	ErrNotConfigured = errors.New("relay: email service not configured")
)

// Message is one contact form submission.
type Message struct {
	Name    string `json:"name" form:"name" binding:"required"`
	Email   string `json:"email" form:"email" binding:"required"`
	Message string `json:"message" form:"message" binding:"required"`
}

// Validate checks that every field is present. The email address format is
// left to the browser.
func (m Message) Validate() error {
	if m.Name == "" || m.Email == "" || m.Message == "" {
		return ErrMissingFields
	}
	return nil
}

// ProviderError carries a non-2xx provider reply verbatim.
type ProviderError struct {
	Provider string
	Status   int
	Body     string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Body)
}

// Mailer delivers one message and returns the provider's message id.
type Mailer interface {
	Name() string
	Send(ctx context.Context, msg Message) (id string, err error)
}

// Relay validates submissions and hands them to a Mailer.
type Relay struct {
	mailer Mailer
}

// New returns a relay. A nil mailer yields a relay that reports
// ErrNotConfigured for every valid submission.
func New(m Mailer) *Relay {
	return &Relay{mailer: m}
}

// Configured reports whether a provider is available.
func (r *Relay) Configured() bool { return r.mailer != nil }

// Provider returns the mailer name, or "" when unconfigured.
func (r *Relay) Provider() string {
	if r.mailer == nil {
		return ""
	}
	return r.mailer.Name()
}

// Send validates msg and forwards it once.
func (r *Relay) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	if r.mailer == nil {
		return "", ErrNotConfigured
	}

	id, err := r.mailer.Send(ctx, msg)
	if err != nil {
		log.Printf("level=error msg=\"contact relay failed\" provider=%s err=%q", r.mailer.Name(), err)
		return "", err
	}
	log.Printf("level=info msg=\"contact relayed\" provider=%s id=%s", r.mailer.Name(), id)
	return id, nil
}

// ClientDelivery holds the public credentials for browser-side delivery.
// The public key is meant to be shipped to the browser.
type ClientDelivery struct {
	ServiceID  string `json:"serviceId,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
	PublicKey  string `json:"publicKey,omitempty"`
}

// Enabled reports whether all three credentials are present.
func (c ClientDelivery) Enabled() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}
