package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

// SMTPProvider implements email sending via SMTP
type SMTPProvider struct {
	host     string
	port     string
	username string
	password string
	from     string
	fromName string
}

// SMTPConfig holds SMTP connection settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// NewSMTPProvider creates a new SMTP email provider
func NewSMTPProvider(config SMTPConfig) *SMTPProvider {
	return &SMTPProvider{
		host:     config.Host,
		port:     fmt.Sprintf("%d", config.Port),
		username: config.Username,
		password: config.Password,
		from:     config.From,
		fromName: config.FromName,
	}
}

// Send sends an email via SMTP
func (p *SMTPProvider) Send(ctx context.Context, message *Message) error {
	from := p.from
	if p.fromName != "" {
		from = fmt.Sprintf("%s <%s>", p.fromName, p.from)
	}
	if message.From != "" {
		from = message.From
		if message.FromName != "" {
			from = fmt.Sprintf("%s <%s>", message.FromName, message.From)
		}
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = message.To
	headers["Subject"] = message.Subject
	headers["MIME-Version"] = "1.0"
	if message.ReplyTo != "" {
		headers["Reply-To"] = message.ReplyTo
	}

	var body string
	if message.BodyHTML != "" {
		headers["Content-Type"] = "text/html; charset=utf-8"
		body = message.BodyHTML
	} else {
		headers["Content-Type"] = "text/plain; charset=utf-8"
		body = message.Body
	}

	var emailBuilder strings.Builder
	for k, v := range headers {
		emailBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	emailBuilder.WriteString("\r\n")
	emailBuilder.WriteString(body)

	auth := smtp.PlainAuth("", p.username, p.password, p.host)
	addr := net.JoinHostPort(p.host, p.port)

	tlsConfig := &tls.Config{ServerName: p.host}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		// Fall back to STARTTLS / plain negotiation
		return smtp.SendMail(addr, auth, p.from, []string{message.To}, []byte(emailBuilder.String()))
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, p.host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return err
	}
	if err = client.Mail(p.from); err != nil {
		return err
	}
	if err = client.Rcpt(message.To); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write([]byte(emailBuilder.String())); err != nil {
		return err
	}
	return w.Close()
}

// GetName returns the provider name
func (p *SMTPProvider) GetName() string {
	return "SMTP"
}
