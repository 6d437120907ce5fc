package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"

	"kumbam-backend/internal/config"
	"kumbam-backend/internal/util"
)

// SMTPMailer sends plain-text mail over SMTP with STARTTLS. Gmail with an
// app password is the usual deployment, but any 587 submission endpoint
// works.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	fromName string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	smtpConfig := cfg.SMTP
	return &SMTPMailer{
		host:     smtpConfig.Host,
		port:     smtpConfig.Port,
		username: smtpConfig.Username,
		password: smtpConfig.Password,
		fromName: smtpConfig.FromName,
	}
}

// Send delivers a single plain-text message. The context deadline bounds
// the whole exchange, dial included.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(m.host, fmt.Sprintf("%d", m.port))

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial smtp server: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("starttls failed: %w", err)
		}
	}

	if m.username != "" {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth failed: %w", err)
		}
	}

	if err := c.Mail(m.username); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write([]byte(m.buildMessage(to, subject, body))); err != nil {
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	if err := c.Quit(); err != nil {
		util.Warn("smtp QUIT failed", zap.Error(err))
	}

	util.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject))

	return nil
}

func (m *SMTPMailer) buildMessage(to, subject, body string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s <%s>\r\n", m.fromName, m.username))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")
	return sb.String()
}
