package mail

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"studio/internal/infra"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPMailerSetsHeaders(t *testing.T) {
	d := &recordingDialer{}
	m := &SMTPMailer{from: "site@example.com", dialer: d}

	err := m.Send(context.Background(), Message{To: "owner@example.com", ReplyTo: "ana@example.com", Subject: "Hi", HTML: "<p>x</p>"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if len(d.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(d.sent))
	}
	gm := d.sent[0]
	if got := gm.GetHeader("Reply-To"); len(got) != 1 || got[0] != "ana@example.com" {
		t.Fatalf("Reply-To = %v", got)
	}
	if got := gm.GetHeader("From"); len(got) != 1 || got[0] != "site@example.com" {
		t.Fatalf("From = %v", got)
	}
}

func TestSMTPMailerWrapsDialError(t *testing.T) {
	boom := errors.New("connection refused")
	m := &SMTPMailer{from: "a@b.co", dialer: &recordingDialer{err: boom}}
	if err := m.Send(context.Background(), Message{To: "x@y.co"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped dial error, got %v", err)
	}
	if err := m.Send(context.Background(), Message{}); !errors.Is(err, ErrNoRecipient) {
		t.Fatalf("expected ErrNoRecipient, got %v", err)
	}
}

func TestFromConfigFallsBackToLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	mailer := FromConfig(&infra.Config{}, logger)
	if _, ok := mailer.(LogMailer); !ok {
		t.Fatalf("expected LogMailer, got %T", mailer)
	}
	if err := mailer.Send(context.Background(), Message{To: "owner@example.com", Subject: "New"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if !strings.Contains(buf.String(), "smtp disabled") {
		t.Fatalf("expected log line, got %q", buf.String())
	}

	if _, ok := FromConfig(&infra.Config{SMTPHost: "smtp.example.com", SMTPPort: 587}, logger).(*SMTPMailer); !ok {
		t.Fatalf("expected SMTPMailer when host configured")
	}
}
