package relay

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"sync/atomic"
	"testing"
)

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		msg     Message
		wantErr bool
	}{
		{Message{Name: "Ada", Email: "a@b.com", Message: "hi"}, false},
		{Message{Name: "", Email: "a@b.com", Message: "hi"}, true},
		{Message{Name: "Ada", Email: "", Message: "hi"}, true},
		{Message{Name: "Ada", Email: "a@b.com", Message: ""}, true},
		{Message{Name: "Ada", Email: "not-an-email", Message: "hi"}, false},
	}
	for _, tc := range tests {
		err := tc.msg.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("Validate(%+v) = %v, wantErr %v", tc.msg, err, tc.wantErr)
		}
	}
}

func TestRelayNotConfiguredMakesNoCall(t *testing.T) {
	r := New(nil)
	_, err := r.Send(context.Background(), Message{Name: "Ada", Email: "a@b.com", Message: "hi"})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if r.Configured() || r.Provider() != "" {
		t.Error("unconfigured relay reports a provider")
	}
}

func TestRelayValidatesBeforeConfig(t *testing.T) {
	_, err := New(nil).Send(context.Background(), Message{Email: "a@b.com", Message: "hi"})
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
}

func newResendServer(t *testing.T, status int, body string) (*httptest.Server, *int32, *resendRequest) {
	t.Helper()
	var calls int32
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer re_test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &got
}

func TestResendSuccess(t *testing.T) {
	srv, calls, got := newResendServer(t, http.StatusOK, `{"id":"abc"}`)
	r := New(NewResend(ResendConfig{APIKey: "re_test", Endpoint: srv.URL, From: "Portfolio <noreply@example.dev>", To: "me@example.dev"}))

	id, err := r.Send(context.Background(), Message{Name: "Ada <script>", Email: "a@b.com", Message: "hi <b>there</b>"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != "abc" {
		t.Errorf("id = %q, want abc", id)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("calls = %d, want 1", *calls)
	}
	if len(got.To) != 1 || got.To[0] != "me@example.dev" {
		t.Errorf("to = %v", got.To)
	}
	if got.ReplyTo != "a@b.com" {
		t.Errorf("reply_to = %q", got.ReplyTo)
	}
	if strings.Contains(got.HTML, "<script>") || strings.Contains(got.HTML, "<b>") {
		t.Errorf("html not escaped: %s", got.HTML)
	}
	if !strings.Contains(got.Subject, "Ada") {
		t.Errorf("subject = %q", got.Subject)
	}
}

func TestResendMissingIDReportsSent(t *testing.T) {
	srv, _, _ := newResendServer(t, http.StatusOK, `{}`)
	id, err := NewResend(ResendConfig{APIKey: "re_test", Endpoint: srv.URL}).Send(context.Background(), Message{Name: "a", Email: "b", Message: "c"})
	if err != nil || id != "sent" {
		t.Fatalf("id, err = %q, %v", id, err)
	}
}

func TestResendProviderErrorIsVerbatim(t *testing.T) {
	const reply = `{"statusCode":422,"message":"Invalid from field"}`
	srv, calls, _ := newResendServer(t, http.StatusUnprocessableEntity, reply)
	r := New(NewResend(ResendConfig{APIKey: "re_test", Endpoint: srv.URL}))

	_, err := r.Send(context.Background(), Message{Name: "a", Email: "b", Message: "c"})
	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ProviderError", err)
	}
	if perr.Status != http.StatusUnprocessableEntity || perr.Body != reply {
		t.Errorf("provider error = %+v", perr)
	}
	if atomic.LoadInt32(calls) != 1 {
		t.Errorf("calls = %d, want exactly one attempt", *calls)
	}
}

func TestResendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewResend(ResendConfig{APIKey: "k", Endpoint: url}).Send(context.Background(), Message{Name: "a", Email: "b", Message: "c"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	var perr *ProviderError
	if errors.As(err, &perr) {
		t.Error("transport failure reported as provider error")
	}
}

func TestSMTPComposesAndSends(t *testing.T) {
	m := NewSMTP(SMTPConfig{User: "me@example.dev", Pass: "app-pass", To: "inbox@example.dev"})
	var gotAddr string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotMsg = addr, msg
		return nil
	}

	id, err := m.Send(context.Background(), Message{Name: "Eve\r\nBcc: x@y.z", Email: "eve@example.com", Message: "hello"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id == "" {
		t.Error("empty message id")
	}
	if gotAddr != "smtp.gmail.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	raw := string(gotMsg)
	if strings.Contains(raw, "\r\nBcc:") {
		t.Errorf("header injection not neutralised:\n%s", raw)
	}
	if !strings.Contains(raw, "Message-ID: <"+id+"@smtp.gmail.com>") {
		t.Errorf("missing Message-ID header:\n%s", raw)
	}
}

func TestSMTPFromHeader(t *testing.T) {
	tests := []struct {
		from string
		want string
	}{
		{"Portfolio <noreply@yourdomain.dev>", "From: \"Portfolio\" <me@example.dev>\r\n"},
		{"noreply@yourdomain.dev", "From: me@example.dev\r\n"},
		{"", "From: me@example.dev\r\n"},
		{"not an address", "From: me@example.dev\r\n"},
	}
	for _, tc := range tests {
		raw := string(composeSMTP(SMTPConfig{Host: "smtp.example.dev", User: "me@example.dev", To: "inbox@example.dev", From: tc.from},
			Message{Name: "a", Email: "b@c.d", Message: "hi"}, "id"))
		if !strings.Contains(raw, tc.want) {
			t.Errorf("From %q: want %q in\n%s", tc.from, tc.want, raw)
		}
	}
}

func TestSMTPHonoursCancelledContext(t *testing.T) {
	m := NewSMTP(SMTPConfig{})
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send called with cancelled context")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Send(ctx, Message{Name: "a", Email: "b", Message: "c"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestClientDeliveryEnabled(t *testing.T) {
	if (ClientDelivery{ServiceID: "s", TemplateID: "t"}).Enabled() {
		t.Error("enabled with missing public key")
	}
	if !(ClientDelivery{ServiceID: "s", TemplateID: "t", PublicKey: "p"}).Enabled() {
		t.Error("not enabled with all credentials")
	}
}
