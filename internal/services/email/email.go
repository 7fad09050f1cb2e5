// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package email renders account notifications and hands them to a Sender.
package email

import (
	"context"
	"fmt"
	"net/url"

	"codeberg.org/mainda/accounts/internal/metrics"
	"codeberg.org/mainda/accounts/internal/templates"
)

// Message is one outgoing email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Reason selects the wording of a verification email.
type Reason string

const (
	ReasonRegistration Reason = "registration"
	ReasonEmailChanged Reason = "email-changed"
	ReasonResend       Reason = "resend"
)

// Notification kinds, used as metric labels.
const (
	KindVerification      = "verification"
	KindPasswordReset     = "password_reset"
	KindChildResetRequest = "child_reset_request"
)

// Links are the client pages that consume flow tokens.
type Links struct {
	VerifyEmailURL   string
	ResetPasswordURL string
}

// Service renders localized account emails and sends them.
type Service struct {
	sender Sender
	links  Links
}

// NewService creates a new email service.
func NewService(sender Sender, links Links) (*Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if links.VerifyEmailURL == "" || links.ResetPasswordURL == "" {
		return nil, fmt.Errorf("client verify and reset URLs are required")
	}
	return &Service{sender: sender, links: links}, nil
}

// SendVerification mails a verification link carrying token to a parent.
func (s *Service) SendVerification(ctx context.Context, to, firstName, token string, reason Reason) error {
	body := templates.VerifyEmailBody(ctx, string(reason), firstName, tokenLink(s.links.VerifyEmailURL, token))
	return s.deliver(ctx, KindVerification, to, body)
}

// SendPasswordReset mails a password-reset link carrying token to a parent.
func (s *Service) SendPasswordReset(ctx context.Context, to, token string) error {
	body := templates.PasswordResetBody(ctx, tokenLink(s.links.ResetPasswordURL, token))
	return s.deliver(ctx, KindPasswordReset, to, body)
}

// SendChildResetRequest tells a parent that their child asked for a new password.
func (s *Service) SendChildResetRequest(ctx context.Context, parentEmail, childFirstName string) error {
	body := templates.ChildResetRequestBody(ctx, childFirstName)
	return s.deliver(ctx, KindChildResetRequest, parentEmail, body)
}

func (s *Service) deliver(ctx context.Context, kind, to string, body templates.Body) error {
	html, err := templates.RenderString(ctx, templates.Email(body))
	if err != nil {
		metrics.Notification(kind, err)
		return fmt.Errorf("rendering %s email: %w", kind, err)
	}

	err = s.sender.Send(ctx, Message{
		To:       to,
		Subject:  body.Subject,
		HTMLBody: html,
		TextBody: templates.Text(body),
	})
	metrics.Notification(kind, err)
	if err != nil {
		return fmt.Errorf("sending %s email: %w", kind, err)
	}
	return nil
}

// tokenLink appends token as the "token" query parameter of base.
func tokenLink(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}
