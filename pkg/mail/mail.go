// Package mail distributes finished reports over SMTP with the PDF and an
// optional JSON attachment.
package mail

import (
	"context"
	"fmt"
	"html"
	"os"

	"github.com/rs/zerolog"
	gomail "github.com/wneessen/go-mail"

	"github.com/Sternrassler/artic-report/pkg/logging"
	"github.com/Sternrassler/artic-report/pkg/report"
)

// Config holds SMTP settings. The From address defaults to the username.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Validate checks that the settings needed for sending are present.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.Username == "" {
		return fmt.Errorf("smtp username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("smtp password is required")
	}
	return nil
}

// Sender sends report emails.
type Sender struct {
	cfg    Config
	logger zerolog.Logger
}

// NewSender creates a Sender with the given SMTP configuration.
func NewSender(cfg Config) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Sender{
		cfg:    cfg,
		logger: logging.NewLogger("mailer"),
	}, nil
}

// SendReport emails the report artifacts to the spec's recipients. A spec
// without recipients is skipped with a warning, not an error. The JSON
// attachment is included only when jsonPath names an existing file.
func (s *Sender) SendReport(ctx context.Context, spec report.Spec, pdfPath, jsonPath string) error {
	if len(spec.Recipients) == 0 {
		s.logger.Warn().Str("report", spec.Name).Msg("No recipients defined, skipping email send")
		return nil
	}

	hasJSON := jsonPath != "" && fileExists(jsonPath)

	msg, err := s.buildMessage(spec, pdfPath, jsonPath, hasJSON)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(s.cfg.Host,
		gomail.WithPort(s.cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.cfg.Username),
		gomail.WithPassword(s.cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	s.logger.Info().
		Str("report", spec.Name).
		Int("recipients", len(spec.Recipients)).
		Msg("Sending report email")

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send report email: %w", err)
	}
	return nil
}

// buildMessage constructs the MIME message: plain and HTML alternative body
// plus the attachments.
func (s *Sender) buildMessage(spec report.Spec, pdfPath, jsonPath string, hasJSON bool) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(spec.Recipients...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject("Report: " + spec.Name)

	formats := "PDF"
	if hasJSON {
		formats = "PDF and JSON"
	}
	msg.SetBodyString(gomail.TypeTextPlain,
		fmt.Sprintf("Attached report '%s' in %s format.", spec.Name, formats))
	msg.AddAlternativeString(gomail.TypeTextHTML, bodyHTML(spec.Name, formats))

	msg.AttachFile(pdfPath)
	if hasJSON {
		msg.AttachFile(jsonPath)
	}
	return msg, nil
}

func bodyHTML(name, formats string) string {
	return fmt.Sprintf(`<html><body>
<p>Attached report <strong>%s</strong> in %s format.</p>
<p style="color:#666;font-size:small">Generated by artic-report.</p>
</body></html>`, html.EscapeString(name), formats)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
