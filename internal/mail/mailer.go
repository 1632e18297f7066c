package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/smtp"

	"reelgram-backend/internal/env"
)

// Mailer delivers account emails. Delivery is an external collaborator:
// failures are reported to the caller but must never abort registration.
type Mailer interface {
	SendVerificationEmail(to, username, verificationURL string) error
}

type SMTPMailer struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{
		host: env.Get(env.SMTPHost),
		port: env.GetOrDefault(env.SMTPPort, "587"),
		user: env.Get(env.SMTPUser),
		pass: env.Get(env.SMTPPass),
		from: env.GetOrDefault(env.EmailFrom, "noreply@reelgram.local"),
	}
}

// NewFromEnv returns the SMTP mailer when SMTP_HOST is configured and a
// log-only mailer otherwise (development).
func NewFromEnv() Mailer {
	if env.Get(env.SMTPHost) == "" {
		return &LogMailer{}
	}
	return NewSMTPMailer()
}

var verificationTemplate = template.Must(template.New("verification").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to Reelgram, {{.Username}}!</h2>
  <p>To complete your registration, verify your email address:</p>
  <p><a href="{{.URL}}">Verify Email Address</a></p>
  <p>If the link doesn't work, copy and paste it into your browser:</p>
  <p>{{.URL}}</p>
  <p style="color: #999; font-size: 12px;">This link expires in 24 hours. If you didn't create this account, ignore this email.</p>
</div>`))

func (m *SMTPMailer) SendVerificationEmail(to, username, verificationURL string) error {
	var body bytes.Buffer
	err := verificationTemplate.Execute(&body, struct {
		Username string
		URL      string
	}{Username: username, URL: verificationURL})
	if err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Verify your Reelgram account\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.from, to, body.String())

	addr := m.host + ":" + m.port
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	if err := smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// LogMailer logs instead of delivering. Used when SMTP is not configured.
type LogMailer struct{}

func (m *LogMailer) SendVerificationEmail(to, username, verificationURL string) error {
	log.Printf("mail: verification for %s (%s): %s", username, to, verificationURL)
	return nil
}
