package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Addr != ":8080" {
		t.Errorf("expected default addr %q, got %q", ":8080", cfg.Addr)
	}
	if cfg.Content.Database != ":memory:" {
		t.Errorf("expected in-memory content database, got %q", cfg.Content.Database)
	}
	if cfg.Contact.RateLimit != 0 {
		t.Errorf("expected rate_limit disabled by default, got %v", cfg.Contact.RateLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.yml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Templates != "templates" {
		t.Errorf("expected defaults, got templates=%q", cfg.Templates)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.yml")
	data := `
addr: ":9090"
content:
  file: content.yaml
  watch: true
contact:
  to: me@example.dev
  rate_limit: 5s
  smtp:
    host: mail.example.dev
cors:
  allowed_origins: ["https://example.dev"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("addr: got %q", cfg.Addr)
	}
	if !cfg.Content.Watch || cfg.Content.File != "content.yaml" {
		t.Errorf("content: got %+v", cfg.Content)
	}
	if cfg.Contact.RateLimit != 5*time.Second {
		t.Errorf("rate_limit: got %v", cfg.Contact.RateLimit)
	}
	if cfg.Contact.SMTP.Host != "mail.example.dev" {
		t.Errorf("smtp.host: got %q", cfg.Contact.SMTP.Host)
	}
	// Untouched keys keep their defaults.
	if cfg.Contact.Timeout != 10*time.Second {
		t.Errorf("timeout: got %v", cfg.Contact.Timeout)
	}
	if len(cfg.CORS.AllowedOrigins) != 1 || cfg.CORS.AllowedOrigins[0] != "https://example.dev" {
		t.Errorf("allowed_origins: got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoadWellKnownEnv(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("RESEND_API_KEY", "re_123")
	t.Setenv("SMTP_USER", "me@example.dev")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("EMAILJS_SERVICE_ID", "svc")
	t.Setenv("EMAILJS_TEMPLATE_ID", "tpl")
	t.Setenv("EMAILJS_PUBLIC_KEY", "pub")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("addr: got %q", cfg.Addr)
	}
	if cfg.Contact.ResendAPIKey != "re_123" {
		t.Errorf("resend_api_key: got %q", cfg.Contact.ResendAPIKey)
	}
	if cfg.Contact.SMTP.User != "me@example.dev" || cfg.Contact.SMTP.Pass != "secret" {
		t.Errorf("smtp: got %+v", cfg.Contact.SMTP)
	}
	if cfg.Contact.EmailJS.PublicKey != "pub" {
		t.Errorf("emailjs: got %+v", cfg.Contact.EmailJS)
	}
}

func TestLoadRecipientPrecedence(t *testing.T) {
	t.Setenv("TO_EMAIL", "legacy@example.dev")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Contact.To != "legacy@example.dev" {
		t.Errorf("TO_EMAIL alone: got %q", cfg.Contact.To)
	}

	t.Setenv("CONTACT_TO", "inbox@example.dev")
	for i := 0; i < 5; i++ {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Contact.To != "inbox@example.dev" {
			t.Fatalf("both set: got %q, want CONTACT_TO", cfg.Contact.To)
		}
	}
}

func TestLoadPrefixedOverrides(t *testing.T) {
	t.Setenv("PORTFOLIO_CONTACT__RATE_LIMIT", "45s")
	t.Setenv("PORTFOLIO_CONTENT__WATCH", "true")
	t.Setenv("PORTFOLIO_CONTENT__FILE", "site.yaml")
	t.Setenv("PORTFOLIO_CORS__ALLOWED_ORIGINS", "https://a.dev, https://b.dev")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Contact.RateLimit != 45*time.Second {
		t.Errorf("rate_limit: got %v", cfg.Contact.RateLimit)
	}
	if !cfg.Content.Watch || cfg.Content.File != "site.yaml" {
		t.Errorf("content: got %+v", cfg.Content)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.dev" {
		t.Errorf("allowed_origins: got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty addr", func(c *Config) { c.Addr = "" }, true},
		{"negative rate limit", func(c *Config) { c.Contact.RateLimit = -time.Second }, true},
		{"watch without file", func(c *Config) { c.Content.Watch = true }, true},
		{"resend without recipient", func(c *Config) { c.Contact.ResendAPIKey = "k"; c.Contact.To = "" }, true},
		{"smtp user without pass", func(c *Config) { c.Contact.SMTP.User = "u" }, true},
		{"rate limit disabled", func(c *Config) { c.Contact.RateLimit = 0 }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
