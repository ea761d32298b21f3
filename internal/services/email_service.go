package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type EmailService struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewEmailService(host, port, username, password, from string) *EmailService {
	return &EmailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

func (s *EmailService) SendReportReady(_ context.Context, to, name, downloadURL string) error {
	subject := "Your Wellness Blueprint is ready"
	body := fmt.Sprintf(
		"Hi %s,\r\n\r\nYour personalized wellness blueprint has been generated.\r\n\r\nDownload it here: %s\r\n\r\nThe link stays valid for 30 days.\r\n",
		name, downloadURL,
	)

	var msg strings.Builder
	msg.WriteString("From: " + s.from + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := s.host + ":" + s.port
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}
