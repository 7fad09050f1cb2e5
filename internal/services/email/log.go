// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import (
	"context"
	"log/slog"
)

// LogSender only logs that a message would have been sent. Bodies carry
// flow tokens and are never logged.
type LogSender struct{}

// Send logs the recipient and subject of msg.
func (LogSender) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "email_suppressed", "to", msg.To, "subject", msg.Subject)
	return nil
}
