// Package config loads the server configuration.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "portfolio.yml"

// Config is the top-level server configuration, corresponding to portfolio.yml.
type Config struct {
	Addr      string        `yaml:"addr" koanf:"addr"`
	Templates string        `yaml:"templates" koanf:"templates"`
	Images    string        `yaml:"images" koanf:"images"`
	Audio     string        `yaml:"audio" koanf:"audio"`
	Wasm      string        `yaml:"wasm" koanf:"wasm"`
	Content   ContentConfig `yaml:"content" koanf:"content"`
	Contact   ContactConfig `yaml:"contact" koanf:"contact"`
	CORS      CORSConfig    `yaml:"cors" koanf:"cors"`
}

// ContentConfig controls where site content comes from.
type ContentConfig struct {
	File     string `yaml:"file" koanf:"file"`
	Database string `yaml:"database" koanf:"database"`
	Watch    bool   `yaml:"watch" koanf:"watch"`
}

// ContactConfig holds contact relay settings.
type ContactConfig struct {
	ResendAPIKey   string        `yaml:"resend_api_key" koanf:"resend_api_key"`
	ResendEndpoint string        `yaml:"resend_endpoint" koanf:"resend_endpoint"`
	From           string        `yaml:"from" koanf:"from"`
	To             string        `yaml:"to" koanf:"to"`
	Timeout        time.Duration `yaml:"timeout" koanf:"timeout"`
	// RateLimit is the minimum interval between delivered messages per
	// client. Zero, the default, disables the limit.
	RateLimit      time.Duration `yaml:"rate_limit" koanf:"rate_limit"`
	SMTP           SMTPConfig    `yaml:"smtp" koanf:"smtp"`
	EmailJS        EmailJSConfig `yaml:"emailjs" koanf:"emailjs"`
}

// SMTPConfig holds SMTP submission credentials.
type SMTPConfig struct {
	Host string `yaml:"host" koanf:"host"`
	Port string `yaml:"port" koanf:"port"`
	User string `yaml:"user" koanf:"user"`
	Pass string `yaml:"pass" koanf:"pass"`
}

// EmailJSConfig holds the public browser-side delivery credentials.
type EmailJSConfig struct {
	ServiceID  string `yaml:"service_id" koanf:"service_id"`
	TemplateID string `yaml:"template_id" koanf:"template_id"`
	PublicKey  string `yaml:"public_key" koanf:"public_key"`
}

// CORSConfig lists origins allowed to call /api/*.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Addr:      ":8080",
		Templates: "templates",
		Images:    "images",
		Audio:     "audio",
		Wasm:      "wasm",
		Content: ContentConfig{
			Database: ":memory:",
		},
		Contact: ContactConfig{
			From:    "Portfolio <noreply@yourdomain.dev>",
			To:      "zachkordaspotter@gmail.com",
			Timeout: 10 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// wellKnownEnv maps the conventional deployment variables onto config keys.
var wellKnownEnv = map[string]string{
	"RESEND_API_KEY":      "contact.resend_api_key",
	"CONTACT_TO":          "contact.to",
	"CONTACT_FROM":        "contact.from",
	"SMTP_HOST":           "contact.smtp.host",
	"SMTP_PORT":           "contact.smtp.port",
	"SMTP_USER":           "contact.smtp.user",
	"SMTP_PASS":           "contact.smtp.pass",
	"EMAILJS_SERVICE_ID":  "contact.emailjs.service_id",
	"EMAILJS_TEMPLATE_ID": "contact.emailjs.template_id",
	"EMAILJS_PUBLIC_KEY":  "contact.emailjs.public_key",
}

// Load reads configuration from the given YAML file, then overlays the
// well-known environment variables and PORTFOLIO_* overrides. A missing
// file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// PORT=3000 -> addr ":3000", RESEND_API_KEY -> contact.resend_api_key.
	if err := k.Load(env.ProviderWithValue("", ".", func(key, value string) (string, interface{}) {
		if key == "PORT" {
			if value == "" {
				return "", nil
			}
			return "addr", ":" + value
		}
		// TO_EMAIL is the older name; CONTACT_TO wins when both are set.
		if key == "TO_EMAIL" {
			if os.Getenv("CONTACT_TO") != "" {
				return "", nil
			}
			return "contact.to", value
		}
		return wellKnownEnv[key], value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	// PORTFOLIO_CONTACT__RATE_LIMIT -> contact.rate_limit.
	if err := k.Load(env.ProviderWithValue("PORTFOLIO_", ".", func(key, value string) (string, interface{}) {
		name := strings.ToLower(strings.TrimPrefix(key, "PORTFOLIO_"))
		name = strings.ReplaceAll(name, "__", ".")
		if name == "cors.allowed_origins" {
			return name, splitList(value)
		}
		return name, value
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.Templates == "" {
		return fmt.Errorf("templates is required")
	}
	if c.Content.Watch && c.Content.File == "" {
		return fmt.Errorf("content.watch requires content.file")
	}
	if c.Contact.RateLimit < 0 {
		return fmt.Errorf("contact.rate_limit must be non-negative")
	}
	if c.Contact.Timeout < 0 {
		return fmt.Errorf("contact.timeout must be non-negative")
	}
	if c.Contact.ResendAPIKey != "" && c.Contact.To == "" {
		return fmt.Errorf("contact.to is required when resend_api_key is set")
	}
	if c.Contact.SMTP.User != "" && c.Contact.SMTP.Pass == "" {
		return fmt.Errorf("contact.smtp.pass is required when smtp.user is set")
	}
	return nil
}
