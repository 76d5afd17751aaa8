package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	gomail "github.com/wneessen/go-mail"

	"contactsapi/internal/config"
)

var verifyTmpl = template.Must(template.New("verify").Parse(`<html>
<body>
  <p>Hello {{.To}},</p>
  <p>Please confirm your email address by following the link below:</p>
  <p><a href="{{.BaseURL}}/api/auth/confirmed_email/{{.Token}}">Confirm email</a></p>
  <p>The link is valid for 24 hours. If you did not sign up, ignore this message.</p>
</body>
</html>`))

var resetTmpl = template.Must(template.New("reset").Parse(`<html>
<body>
  <p>Hello {{.To}},</p>
  <p>A password reset was requested for your account. Use this token to set a new password:</p>
  <p><code>{{.Token}}</code></p>
  <p>The token is valid for 1 hour. If you did not request a reset, ignore this message.</p>
</body>
</html>`))

type templateData struct {
	To      string
	BaseURL string
	Token   string
}

// smtpMailer implements Mailer over SMTP.
type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTP builds an SMTP-backed Mailer. Connectivity is not checked here:
// mail servers are often reachable only when a message is actually sent.
func NewSMTP(cfg config.SMTPConfig) (Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mail from address is required")
	}
	return &smtpMailer{cfg: cfg}, nil
}

func (m *smtpMailer) send(ctx context.Context, to, subject string, tmpl *template.Template, data templateData) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render mail body: %w", err)
	}

	msg := gomail.NewMsg()
	if err := msg.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, body.String())

	opts := []gomail.Option{
		gomail.WithPort(m.cfg.Port),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.cfg.User),
			gomail.WithPassword(m.cfg.Password),
		)
	}
	if m.cfg.StartTLS {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func (m *smtpMailer) SendVerificationEmail(ctx context.Context, to, baseURL, token string) error {
	return m.send(ctx, to, "Verifying your email", verifyTmpl, templateData{
		To:      to,
		BaseURL: baseURL,
		Token:   token,
	})
}

func (m *smtpMailer) SendPasswordResetEmail(ctx context.Context, to, baseURL, token string) error {
	return m.send(ctx, to, "Password Reset Request", resetTmpl, templateData{
		To:      to,
		BaseURL: baseURL,
		Token:   token,
	})
}
