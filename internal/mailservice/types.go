package mailservice

import (
	"context"
	"sync"
	"time"

	"github.com/go-mail/mail/v2"

	"github.com/sushihentaime/quillpress/internal/common"
)

const postGeneratedTemplate = "post_generated.html"

type MailService struct {
	mb        common.MessageConsumer
	m         Mailer
	logger    MailLogger
	appURL    string
	baseDelay time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

type MailLogger interface {
	Error(msg string, args ...any)
	Info(msg string, args ...any)
}

// Mail serializes deliveries over a single SMTP dialer.
type Mail struct {
	mu       sync.Mutex
	dialer   Dialer
	renderer TemplateRenderer
	sender   string
}

type Mailer interface {
	sendPostGenerated(recipient string, data postGeneratedData) error
}

type Template struct {
	sets map[string]*emailTemplate
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type TemplateRenderer interface {
	Render(name string, data any) (*renderedMail, error)
}

// postGeneratedData feeds post_generated.html.
type postGeneratedData struct {
	Title           string
	PostURL         string
	TokensUsed      int
	RemainingTokens int
}
