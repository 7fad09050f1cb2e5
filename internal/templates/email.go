// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"strings"
)

// Body is the localized content of one email. Link and Action are empty for
// messages without a call to action.
type Body struct {
	Subject   string
	Heading   string
	Paragraph string
	Link      string
	Action    string
	Footer    string
}

// VerifyEmailBody builds the body of a verification email. reason selects
// the wording: "registration", "email-changed" or "resend".
func VerifyEmailBody(ctx context.Context, reason, firstName, link string) Body {
	key := "resend"
	subject := T(ctx, "email_verify_subject")
	switch reason {
	case "registration":
		key = "registration"
	case "email-changed":
		key = "changed"
		subject = T(ctx, "email_verify_changed_subject")
	}

	return Body{
		Subject:   subject,
		Heading:   TData(ctx, "email_verify_"+key+"_heading", map[string]any{"FirstName": firstName}),
		Paragraph: T(ctx, "email_verify_"+key+"_intro"),
		Link:      link,
		Action:    T(ctx, "email_verify_action"),
		Footer:    T(ctx, "email_verify_"+key+"_footer"),
	}
}

// PasswordResetBody builds the body of a parent password-reset email.
func PasswordResetBody(ctx context.Context, link string) Body {
	return Body{
		Subject:   T(ctx, "email_reset_subject"),
		Heading:   T(ctx, "email_reset_heading"),
		Paragraph: T(ctx, "email_reset_intro"),
		Link:      link,
		Action:    T(ctx, "email_reset_action"),
		Footer:    T(ctx, "email_reset_footer"),
	}
}

// ChildResetRequestBody builds the notice sent to a parent when their child
// asks for a new password.
func ChildResetRequestBody(ctx context.Context, childFirstName string) Body {
	data := map[string]any{"FirstName": childFirstName}
	return Body{
		Subject:   T(ctx, "email_child_reset_subject"),
		Heading:   TData(ctx, "email_child_reset_heading", data),
		Paragraph: TData(ctx, "email_child_reset_body", data),
		Footer:    T(ctx, "email_child_reset_footer"),
	}
}

// Text renders b as plain text.
func Text(b Body) string {
	parts := []string{b.Heading, b.Paragraph}
	if b.Link != "" {
		parts = append(parts, b.Link)
	}
	parts = append(parts, b.Footer)
	return strings.Join(parts, "\n\n") + "\n"
}
