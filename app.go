package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/portfolio/internal/assets"
	"github.com/Zachkp/portfolio/internal/catalog"
	"github.com/Zachkp/portfolio/internal/config"
	"github.com/Zachkp/portfolio/internal/relay"
)

// App is the application root. Everything a handler needs hangs off it.
type App struct {
	cfg     *config.Config
	catalog *catalog.Catalog
	relay   *relay.Relay
	client  relay.ClientDelivery
	bundle  *assets.Bundle
	thumbs  *assets.Thumbnailer
	guard   *contactGuard
}

// AppOption customizes NewApp.
type AppOption func(*appOptions)

type appOptions struct {
	mailer    relay.Mailer
	hasMailer bool
	clock     clock.Clock
}

// WithMailer replaces the mailer chosen from config. nil disables sending.
func WithMailer(m relay.Mailer) AppOption {
	return func(o *appOptions) { o.mailer, o.hasMailer = m, true }
}

// WithClock sets the clock used by the contact rate limit.
func WithClock(c clock.Clock) AppOption {
	return func(o *appOptions) { o.clock = c }
}

// NewApp opens the content store, loads content and wires the relay.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	store, err := catalog.Open(cfg.Content.Database)
	if err != nil {
		return nil, fmt.Errorf("opening content store: %w", err)
	}
	cat := catalog.New(store)
	if err := cat.Load(ctx, cfg.Content.File); err != nil {
		store.Close()
		return nil, fmt.Errorf("loading content: %w", err)
	}

	mailer := o.mailer
	if !o.hasMailer {
		mailer = newMailer(cfg.Contact)
	}

	a := &App{
		cfg:     cfg,
		catalog: cat,
		relay:   relay.New(mailer),
		client: relay.ClientDelivery{
			ServiceID:  cfg.Contact.EmailJS.ServiceID,
			TemplateID: cfg.Contact.EmailJS.TemplateID,
			PublicKey:  cfg.Contact.EmailJS.PublicKey,
		},
		bundle: assets.NewBundle(),
		thumbs: assets.NewThumbnailer(os.DirFS(cfg.Images), assets.DefaultThumbWidth),
		guard:  newContactGuard(cfg.Contact.RateLimit, o.clock),
	}

	if a.relay.Configured() {
		log.Printf("level=info msg=\"contact relay ready\" provider=%s", a.relay.Provider())
	} else {
		log.Printf("level=warn msg=\"contact relay disabled\" hint=\"set RESEND_API_KEY or SMTP_USER/SMTP_PASS\"")
	}
	return a, nil
}

// newMailer prefers Resend, then SMTP. No credentials means no mailer.
func newMailer(cfg config.ContactConfig) relay.Mailer {
	switch {
	case cfg.ResendAPIKey != "":
		return relay.NewResend(relay.ResendConfig{
			APIKey:   cfg.ResendAPIKey,
			Endpoint: cfg.ResendEndpoint,
			From:     cfg.From,
			To:       cfg.To,
			Timeout:  cfg.Timeout,
		})
	case cfg.SMTP.User != "" && cfg.SMTP.Pass != "":
		return relay.NewSMTP(relay.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			To:   cfg.To,
			From: cfg.From,
		})
	default:
		return nil
	}
}

// Close releases the content store.
func (a *App) Close() error {
	return a.catalog.Close()
}

// Serve runs the HTTP server, and the content watcher when enabled, until
// ctx is done.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("level=info msg=\"listening\" addr=%s", a.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Printf("level=info msg=\"shutting down\"")
		return srv.Shutdown(shutdownCtx)
	})
	if a.cfg.Content.Watch {
		g.Go(func() error {
			return a.catalog.Watch(ctx, a.cfg.Content.File, nil)
		})
	}
	return g.Wait()
}
