package services

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/dimitrije/gatekeeper/internal/config"
)

//go:embed templates/magic_link.html
var magicLinkTemplateHTML string

var magicLinkTemplate = template.Must(template.New("magic_link").Parse(magicLinkTemplateHTML))

const (
	defaultMagicLinkSubject = "Your sign-in link"
	defaultButtonText       = "Sign in"
)

type EmailService struct {
	cfg config.SMTPConfig
	// send is smtp.SendMail outside of tests.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

type magicLinkData struct {
	Link       string
	ButtonText string
	ExpiryText string
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg, send: smtp.SendMail}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

func (s *EmailService) Send(to, subject, body string) error {
	return s.sendMessage(s.cfg.From, "", to, subject, body)
}

func (s *EmailService) sendMessage(from, replyTo, to, subject, body string) error {
	if !s.IsConfigured() {
		slog.Warn("SMTP not configured, email dropped", "subject", subject)
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	return s.send(addr, auth, from, []string{to}, buildMessage(from, replyTo, to, subject, body))
}

func buildMessage(from, replyTo, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\nTo: %s\r\n", from, to)
	if replyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", replyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", subject, body)
	return []byte(b.String())
}

// SendMagicLink mails a one-time sign-in link. tmpl may be nil; a non-empty
// tmpl.Template replaces the built-in body and sees the same fields.
func (s *EmailService) SendMagicLink(to, link string, tmpl *config.EmailTemplate) error {
	subject, from, replyTo := defaultMagicLinkSubject, s.cfg.From, ""
	data := magicLinkData{
		Link:       link,
		ButtonText: defaultButtonText,
		ExpiryText: "1 hour",
	}
	t := magicLinkTemplate

	if tmpl != nil {
		if tmpl.Subject != "" {
			subject = tmpl.Subject
		}
		if tmpl.From != "" {
			from = tmpl.From
		}
		replyTo = tmpl.ReplyTo
		if tmpl.ButtonText != "" {
			data.ButtonText = tmpl.ButtonText
		}
		if tmpl.ExpiryHours > 0 {
			data.ExpiryText = fmt.Sprintf("%d hours", tmpl.ExpiryHours)
			if tmpl.ExpiryHours == 1 {
				data.ExpiryText = "1 hour"
			}
		}
		if tmpl.Template != "" {
			custom, err := template.New("custom").Parse(tmpl.Template)
			if err != nil {
				return fmt.Errorf("parse email template: %w", err)
			}
			t = custom
		}
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("render email template: %w", err)
	}

	return s.sendMessage(from, replyTo, to, subject, body.String())
}
