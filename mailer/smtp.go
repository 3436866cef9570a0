package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPConfig configures the plain SMTP fallback transport.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Pass     string
	From     string
	Security string
}

type smtpTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport builds the SMTP fallback. Security is one of "starttls"
// (default), "ssl", or "none".
func NewSMTPTransport(cfg SMTPConfig) Transport {
	cfg.Host = strings.TrimSpace(cfg.Host)
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.User = strings.TrimSpace(cfg.User)
	cfg.From = strings.TrimSpace(cfg.From)
	cfg.Security = strings.ToLower(strings.TrimSpace(cfg.Security))

	if cfg.Security == "" {
		cfg.Security = "starttls"
	}

	if cfg.Port == "" {
		cfg.Port = "587"
	}

	return &smtpTransport{cfg: cfg}
}

func (t *smtpTransport) Name() string {
	return "smtp"
}

func (t *smtpTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := encode(t.cfg.From, msg)

	switch t.cfg.Security {
	case "ssl", "smtps":
		return t.sendSSL(msg.To, raw)
	case "none":
		return smtp.SendMail(t.addr(), nil, t.cfg.From, []string{msg.To}, raw)
	default:
		return t.sendStartTLS(msg.To, raw)
	}
}

func (t *smtpTransport) sendStartTLS(to string, raw []byte) error {
	addr := t.addr()
	host, _, _ := net.SplitHostPort(addr)

	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		cfg := &tls.Config{ServerName: host}
		if err := client.StartTLS(cfg); err != nil {
			return err
		}
	}

	if t.cfg.User != "" && t.cfg.Pass != "" {
		auth := smtp.PlainAuth("", t.cfg.User, t.cfg.Pass, host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	return t.submit(client, to, raw)
}

func (t *smtpTransport) sendSSL(to string, raw []byte) error {
	conn, err := tls.Dial("tcp", t.addr(), &tls.Config{ServerName: t.cfg.Host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, t.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if t.cfg.User != "" && t.cfg.Pass != "" {
		auth := smtp.PlainAuth("", t.cfg.User, t.cfg.Pass, t.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	return t.submit(client, to, raw)
}

func (t *smtpTransport) submit(client *smtp.Client, to string, raw []byte) error {
	if err := client.Mail(t.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err := w.Write(raw); err != nil {
		w.Close()
		return err
	}

	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func (t *smtpTransport) addr() string {
	return net.JoinHostPort(t.cfg.Host, t.cfg.Port)
}

func encode(from string, msg Message) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTMLBody)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
