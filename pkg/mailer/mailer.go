package mailer

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

// Config describes the outbound SMTP relay.
type Config struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
	UseTLS   bool
	UseSSL   bool
	Timeout  time.Duration
}

// Client sends a single multi-recipient HTML message per call over SMTP,
// with implicit TLS or opportunistic STARTTLS depending on configuration.
type Client struct {
	cfg    Config
	policy *bluemonday.Policy
	logger zerolog.Logger
}

// New builds a Client. The body sanitization policy allows basic formatting
// markup and strips everything else before the text is embedded in HTML.
func New(cfg Config, logger zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		cfg:    cfg,
		policy: bluemonday.UGCPolicy(),
		logger: logger.With().Str("component", "mailer").Logger(),
	}
}

// Enabled reports whether the client has everything it needs to deliver.
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.Username != "" && c.cfg.Password != ""
}

// Send delivers one message to all configured recipients. The body is plain
// notification text; it is sanitized and rendered as HTML with newlines
// converted to <br>.
func (c *Client) Send(subject, body string) error {
	if len(c.cfg.To) == 0 {
		return fmt.Errorf("no email recipients configured")
	}

	from := c.cfg.From
	if from == "" {
		from = c.cfg.Username
	}

	msg := c.buildMessage(from, subject, body)
	addr := fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port)

	var client *smtp.Client
	var err error
	if c.cfg.UseSSL {
		client, err = c.dialTLS(addr)
	} else {
		client, err = c.dialPlain(addr)
	}
	if err != nil {
		return fmt.Errorf("connect to smtp relay: %w", err)
	}
	defer client.Quit()

	if c.cfg.UseTLS && !c.cfg.UseSSL {
		tlsConfig := &tls.Config{ServerName: c.cfg.Host}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, recipient := range c.cfg.To {
		if err := client.Rcpt(recipient); err != nil {
			return fmt.Errorf("rcpt %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close message: %w", err)
	}

	c.logger.Debug().Int("recipients", len(c.cfg.To)).Msg("email message accepted by relay")
	return nil
}

func (c *Client) dialPlain(addr string) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: c.cfg.Timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) dialTLS(addr string) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: c.cfg.Timeout}
	tlsConfig := &tls.Config{ServerName: c.cfg.Host}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, tlsConfig)
	if err != nil {
		return nil, err
	}
	client, err := smtp.NewClient(conn, c.cfg.Host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return client, nil
}

func (c *Client) buildMessage(from, subject, body string) string {
	htmlBody := strings.ReplaceAll(c.policy.Sanitize(body), "\n", "<br>")

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(c.cfg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return b.String()
}
