// Package email implements an SMTP-based email notifier
package email

import (
	"context"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/lrchart/chartai/internal/core"
	"github.com/lrchart/chartai/internal/notifier"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Email implements the Notifier interface for SMTP email
type Email struct {
	host     string
	port     int
	username string
	password string
	from     string
	to       []string
	send     sendFunc
}

// New creates a new Email notifier
func New(host string, port int, username, password, from string, to []string) *Email {
	return &Email{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		to:       to,
		send:     smtp.SendMail,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Init(cfg notifier.Config) error {
	if host, ok := cfg.Params["host"].(string); ok {
		e.host = host
	}
	if port, ok := cfg.Params["port"].(int); ok {
		e.port = port
	}
	if username, ok := cfg.Params["username"].(string); ok {
		e.username = username
	}
	if password, ok := cfg.Params["password"].(string); ok {
		e.password = password
	}
	if from, ok := cfg.Params["from"].(string); ok {
		e.from = from
	}
	if to, ok := cfg.Params["to"].([]string); ok {
		e.to = to
	}
	if e.port == 0 {
		e.port = 587
	}
	if e.send == nil {
		e.send = smtp.SendMail
	}

	if e.host == "" || e.from == "" || len(e.to) == 0 {
		return fmt.Errorf("email: host, from, and to are required")
	}
	return nil
}

// Publish mails the report. Messages with signals are sent as HTML with
// the plain report in a <pre> block.
func (e *Email) Publish(ctx context.Context, msg notifier.Message) error {
	if msg.Text == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := "LR - CHART AI"
	if msg.Title != "" {
		subject += ": " + msg.Title
	}

	body := msg.Text
	if len(msg.Signals) > 0 {
		body = e.formatHTML(msg)
	}
	return e.sendEmail(subject, body)
}

func (e *Email) formatHTML(msg notifier.Message) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	fmt.Fprintf(&sb, "<h2>%s</h2>", html.EscapeString(msg.Title))
	if msg.Pair != "" {
		fmt.Fprintf(&sb, "<p><strong>Pair:</strong> %s</p>", html.EscapeString(msg.Pair))
	}
	sb.WriteString("<table cellpadding=\"4\">")
	for _, s := range msg.Signals {
		sb.WriteString(e.formatSignalHTML(s))
	}
	sb.WriteString("</table><hr>")
	fmt.Fprintf(&sb, "<pre>%s</pre>", html.EscapeString(msg.Text))
	sb.WriteString("</body></html>")
	return sb.String()
}

func (e *Email) formatSignalHTML(s core.FutureSignal) string {
	color := "#28a745" // green for CALL
	if s.Direction == core.DirectionPut {
		color = "#dc3545"
	}

	row := fmt.Sprintf(`<tr><td>%s</td><td>%s</td><td style="color: %s;"><strong>%s</strong></td>`,
		html.EscapeString(s.Time),
		html.EscapeString(s.Pair),
		color,
		s.Direction,
	)
	if s.Reason != "" {
		row += "<td>" + html.EscapeString(s.Reason) + "</td>"
	}
	return row + "</tr>"
}

func (e *Email) sendEmail(subject, body string) error {
	addr := fmt.Sprintf("%s:%d", e.host, e.port)

	var auth smtp.Auth
	if e.username != "" {
		auth = smtp.PlainAuth("", e.username, e.password, e.host)
	}

	contentType := "text/plain"
	if strings.HasPrefix(body, "<html>") {
		contentType = "text/html"
	}

	msg := fmt.Sprintf("From: %s\r\n"+
		"To: %s\r\n"+
		"Subject: %s\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: %s; charset=UTF-8\r\n"+
		"\r\n"+
		"%s",
		e.from,
		strings.Join(e.to, ","),
		subject,
		contentType,
		body,
	)

	if err := e.send(addr, auth, e.from, e.to, []byte(msg)); err != nil {
		return fmt.Errorf("email: send failed: %w", err)
	}
	return nil
}
