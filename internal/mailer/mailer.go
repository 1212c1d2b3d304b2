// Package mailer delivers transactional email such as password-reset links.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the structured log instead of sending them.
// It is the default until an outbound mail provider is configured.
type LogMailer struct {
	logger *slog.Logger
	from   string
}

func NewLogMailer(logger *slog.Logger, from string) *LogMailer {
	return &LogMailer{logger: logger, from: from}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("mail recipient is empty")
	}
	m.logger.InfoContext(ctx, "outbound email",
		slog.String("from", m.from),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}
