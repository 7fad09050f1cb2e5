// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package email

import "github.com/wneessen/go-mail"

func (s *SMTPSender) BuildMsg(msg Message) (*mail.Msg, error) {
	return s.buildMsg(msg)
}
