package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/mokki-app/mokki/config"
)

type EmailService struct {
	cfg *config.Config
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt to: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("smtp close data: %w", err)
	}

	return nil
}

func (s *EmailService) GenerateEmailBody(templatePath string, data interface{}) (string, error) {
	t, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", templatePath, err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", templatePath, err)
	}

	return body.String(), nil
}

func (s *EmailService) SendConfirmationEmail(userEmail, tokenHash string, houseID int) error {
	subject := "Welcome to Mökki, confirm your email"
	confirmLink := fmt.Sprintf("%s/auth/confirm?token_hash=%s&type=signup", s.cfg.PublicURL, tokenHash)
	if houseID > 0 {
		confirmLink = fmt.Sprintf("%s&house=%d", confirmLink, houseID)
	}
	data := struct {
		Email       string
		ConfirmLink string
	}{
		Email:       userEmail,
		ConfirmLink: confirmLink,
	}
	htmlBody, err := s.GenerateEmailBody("templates/emails/confirmation_email.html", data)
	if err != nil {
		return fmt.Errorf("render confirmation email: %w", err)
	}
	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}

func (s *EmailService) SendMagicLinkEmail(userEmail, code string) error {
	subject := "Your Mökki sign-in link"
	data := struct {
		SignInLink string
	}{
		SignInLink: fmt.Sprintf("%s/auth/confirm?code=%s", s.cfg.PublicURL, code),
	}
	htmlBody, err := s.GenerateEmailBody("templates/emails/magic_link_email.html", data)
	if err != nil {
		return fmt.Errorf("render magic link email: %w", err)
	}
	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}

func (s *EmailService) SendHouseInviteEmail(userEmail, houseName, inviteLink string) error {
	subject := fmt.Sprintf("You've been invited to %s on Mökki", houseName)
	data := struct {
		HouseName  string
		InviteLink string
	}{
		HouseName:  houseName,
		InviteLink: inviteLink,
	}
	htmlBody, err := s.GenerateEmailBody("templates/emails/house_invite_email.html", data)
	if err != nil {
		return fmt.Errorf("render invite email: %w", err)
	}
	return s.SendEmail([]string{userEmail}, subject, htmlBody)
}
