// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package testutil

import (
	"context"
	"regexp"
	"sync"

	"codeberg.org/mainda/accounts/internal/services/email"
)

var tokenPattern = regexp.MustCompile(`[?&]token=([0-9a-f-]{36})`)

// RecordingSender captures every message instead of delivering it.
// Setting Err makes every Send fail with it.
type RecordingSender struct {
	mu       sync.Mutex
	messages []email.Message
	Err      error
}

// Send records msg and returns r.Err.
func (r *RecordingSender) Send(_ context.Context, msg email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *RecordingSender) Messages() []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.Message(nil), r.messages...)
}

// Last returns the most recent message and whether there was one.
func (r *RecordingSender) Last() (email.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return email.Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// TokenFrom extracts the flow token from the link in msg, or "".
func TokenFrom(msg email.Message) string {
	m := tokenPattern.FindStringSubmatch(msg.TextBody)
	if m == nil {
		return ""
	}
	return m[1]
}

// Links are the client URLs used by test email services.
var Links = email.Links{
	VerifyEmailURL:   "https://app.example/verify-email",
	ResetPasswordURL: "https://app.example/reset-password",
}
