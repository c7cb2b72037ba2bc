// Package mailer delivers outgoing email. Senders are interchangeable:
// log output for development, direct SMTP, or a Redis list drained by Relay.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
	"sync"
	"time"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("mail", "to", msg.To, "subject", msg.Subject, "body", msg.Body)
	return nil
}

type SMTPSender struct {
	addr string
	from string
	auth smtp.Auth
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		from: from,
		auth: auth,
	}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{msg.To}, s.compose(msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) compose(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// AsyncSender hands messages to next on a background goroutine and returns
// immediately. Delivery failures are logged and never reach the caller.
type AsyncSender struct {
	next    Sender
	logger  *slog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsyncSender(next Sender, logger *slog.Logger, timeout time.Duration) *AsyncSender {
	return &AsyncSender{next: next, logger: logger, timeout: timeout}
}

func (s *AsyncSender) Send(_ context.Context, msg Message) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// The request context is gone by the time delivery runs.
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.next.Send(ctx, msg); err != nil {
			s.logger.Error("mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every in-flight delivery has finished.
func (s *AsyncSender) Wait() {
	s.wg.Wait()
}
