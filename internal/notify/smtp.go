package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/PratikDhanave/trapwatch-service/internal/escalation"
)

// SMTPConfig holds mail transport settings.
type SMTPConfig struct {
	Addr     string // host:port
	From     string
	Username string
	Password string
}

// SMTPNotifier mails the alert to a contact that is an email address.
type SMTPNotifier struct {
	cfg    SMTPConfig
	host   string
	logger *slog.Logger
}

func NewSMTPNotifier(cfg SMTPConfig, logger *slog.Logger) (*SMTPNotifier, error) {
	if cfg.Addr == "" {
		return nil, errors.New("SMTP_ADDR is required")
	}
	host, _, err := net.SplitHostPort(cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_ADDR: %w", err)
	}
	if _, err := mail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid SMTP_FROM: %w", err)
	}
	return &SMTPNotifier{cfg: cfg, host: host, logger: logger}, nil
}

func (n *SMTPNotifier) Notify(ctx context.Context, contact string, alert escalation.Alert) error {
	to, err := mail.ParseAddress(contact)
	if err != nil {
		return fmt.Errorf("smtp contact %q is not an email address: %w", contact, err)
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", n.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, n.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: n.host, MinVersion: tls.VersionTLS12}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if n.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	if err := c.Rcpt(to.Address); err != nil {
		return fmt.Errorf("smtp RCPT TO: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(buildMessage(n.cfg.From, to.Address, alert)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end DATA: %w", err)
	}
	if err := c.Quit(); err != nil {
		n.logger.Debug("smtp quit", "error", err)
	}

	n.logger.Debug("smtp alert delivered", "contact", to.Address, "alert_id", alert.ID)
	return nil
}

func buildMessage(from, to string, alert escalation.Alert) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", alert.Subject()) + "\r\n")
	b.WriteString("Date: " + alert.RaisedAt.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("Message-ID: <" + alert.ID + "@trapwatch>\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(alert.Body(), "\n", "\r\n"))
	return []byte(b.String())
}
