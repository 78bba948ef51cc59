package email

import (
	"bytes"
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/cmlabs-hris/fieldforce-backend-go/internal/config"
	"golang.org/x/time/rate"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// EmailService sends payroll notifications.
type EmailService interface {
	SendPayrollReport(ctx context.Context, to []string, data PayrollReportData, attachment Attachment) error
}

// Attachment is a file sent along with a message.
type Attachment struct {
	FileName    string
	ContentType string
	Content     []byte
}

// PayrollReportData fills the payroll report template.
type PayrollReportData struct {
	OfficeName    string
	CycleStart    string
	CycleEnd      string
	EmployeeCount int
	GeneratedAt   string
	FileName      string
	URL           string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	limiter   *rate.Limiter
	send      sendFunc
	backoff   time.Duration
}

// NewEmailService creates a new email service instance. Outgoing messages are
// throttled to cfg.RatePerMinute.
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	return newEmailService(cfg, smtp.SendMail)
}

func newEmailService(cfg config.SMTPConfig, send sendFunc) (*emailServiceImpl, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	perMinute := cfg.RatePerMinute
	if perMinute <= 0 {
		perMinute = 30
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		send:      send,
		backoff:   time.Second,
	}, nil
}

// SendPayrollReport mails the rendered payroll workbook to every recipient.
func (s *emailServiceImpl) SendPayrollReport(ctx context.Context, to []string, data PayrollReportData, attachment Attachment) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "payroll_report.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("Payroll %s - %s (%s)", data.CycleStart, data.CycleEnd, data.OfficeName)
	return s.sendWithAttachment(ctx, to, subject, body.String(), attachment)
}

func (s *emailServiceImpl) sendWithAttachment(ctx context.Context, to []string, subject, htmlBody string, attachment Attachment) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	message, err := s.buildMessage(to, subject, htmlBody, attachment)
	if err != nil {
		return err
	}

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("email rate limiter: %w", err)
		}

		err := s.send(addr, auth, s.cfg.From, to, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s, 4s
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff << (attempt - 1)):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

func (s *emailServiceImpl) buildMessage(to []string, subject, htmlBody string, attachment Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	htmlPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create html part: %w", err)
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, fmt.Errorf("failed to write html part: %w", err)
	}

	if len(attachment.Content) > 0 {
		filePart, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {attachment.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", attachment.FileName)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create attachment part: %w", err)
		}
		if err := writeBase64Lines(filePart, attachment.Content); err != nil {
			return nil, fmt.Errorf("failed to write attachment: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close message: %w", err)
	}
	return buf.Bytes(), nil
}

// writeBase64Lines writes content as base64 wrapped at 76 columns.
func writeBase64Lines(w interface{ Write([]byte) (int, error) }, content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 0 {
		n := min(76, len(encoded))
		if _, err := w.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
