package mailservice

import (
	"time"

	"github.com/go-mail/mail/v2"
)

const smtpTimeout = 5 * time.Second

// NewMailer connects to the SMTP relay lazily; nothing is dialed until the first email.
func NewMailer(host string, port int, username, password, sender string, tp TemplateRenderer) *Mail {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = smtpTimeout

	return &Mail{
		dialer:   dialer,
		sender:   sender,
		renderer: tp,
	}
}

// sendPostGenerated tells an author their generated draft is ready for review.
func (m *Mail) sendPostGenerated(recipient string, data postGeneratedData) error {
	return m.deliver(recipient, postGeneratedTemplate, data)
}

func (m *Mail) deliver(recipient, templateName string, data any) error {
	rendered, err := m.renderer.Render(templateName, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", rendered.Subject)
	msg.SetBody("text/plain", rendered.PlainBody)
	msg.AddAlternative("text/html", rendered.HTMLBody)

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.dialer.DialAndSend(msg)
}
