// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email_test

import (
	"context"
	"errors"
	"testing"

	"codeberg.org/mainda/accounts/internal/services/email"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestNewSESSenderWithClient_RequiresFrom(t *testing.T) {
	_, err := email.NewSESSenderWithClient(&fakeSES{}, "", "Mainda")
	assert.Error(t, err)
}

func TestSESSender_Send(t *testing.T) {
	client := &fakeSES{}
	s, err := email.NewSESSenderWithClient(client, "noreply@example.com", "Mainda")
	require.NoError(t, err)

	err = s.Send(context.Background(), email.Message{
		To:       "a@x.com",
		Subject:  "Password Reset Request",
		HTMLBody: "<p>reset</p>",
		TextBody: "reset",
	})
	require.NoError(t, err)

	in := client.input
	require.NotNil(t, in)
	assert.Equal(t, `"Mainda" <noreply@example.com>`, aws.ToString(in.FromEmailAddress))
	assert.Equal(t, []string{"a@x.com"}, in.Destination.ToAddresses)
	assert.Equal(t, "Password Reset Request", aws.ToString(in.Content.Simple.Subject.Data))
	assert.Equal(t, "<p>reset</p>", aws.ToString(in.Content.Simple.Body.Html.Data))
	assert.Equal(t, "reset", aws.ToString(in.Content.Simple.Body.Text.Data))
}

func TestSESSender_TextOnly(t *testing.T) {
	client := &fakeSES{}
	s, err := email.NewSESSenderWithClient(client, "noreply@example.com", "")
	require.NoError(t, err)

	require.NoError(t, s.Send(context.Background(), email.Message{To: "a@x.com", TextBody: "plain"}))

	assert.Equal(t, "noreply@example.com", aws.ToString(client.input.FromEmailAddress))
	assert.Nil(t, client.input.Content.Simple.Body.Html)
}

func TestSESSender_Error(t *testing.T) {
	client := &fakeSES{err: errors.New("throttled")}
	s, err := email.NewSESSenderWithClient(client, "noreply@example.com", "")
	require.NoError(t, err)

	err = s.Send(context.Background(), email.Message{To: "a@x.com"})

	assert.ErrorIs(t, err, client.err)
}
