package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/sushihentaime/quillpress/internal/common"
)

const (
	maxRetries       = 5
	defaultBaseDelay = 500 * time.Millisecond
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	// AppURL is the public base URL used to link to a post from an email.
	AppURL string
}

func NewMailService(mb common.MessageConsumer, cfg Config, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mb,
		m:         NewMailer(cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Sender, NewTemplate()),
		logger:    logger,
		appURL:    strings.TrimSuffix(cfg.AppURL, "/"),
		baseDelay: defaultBaseDelay,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SendPostGeneratedEmails tells authors that a generated post is waiting for review.
func (s *MailService) SendPostGeneratedEmails() {
	msgs, err := s.mb.Consume(common.PostGeneratedKey, common.BlogExchange, common.PostGeneratedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handlePostGenerated(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendPostGeneratedEmails due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) handlePostGenerated(msg amqp.Delivery) {
	var event common.PostGeneratedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		msg.Ack(false)
		return
	}

	if event.Email == "" {
		s.logger.Info("skipping post.generated event without recipient", slog.String("post_id", event.PostID))
		msg.Ack(false)
		return
	}

	payload := postGeneratedData{
		Title:           event.Title,
		PostURL:         s.appURL + "/dashboard/posts/" + event.PostID,
		TokensUsed:      event.TokensUsed,
		RemainingTokens: event.RemainingTokens,
	}

	// exponential backoff with jitter
	var (
		attempt int
		err     error
	)
	for attempt = 0; attempt < maxRetries; attempt++ {
		err = s.m.sendPostGenerated(event.Email, payload)
		if err == nil {
			s.logger.Info("post ready email sent", slog.String("email", event.Email))
			break
		}

		delay := time.Duration(rand.Int63n(int64(s.baseDelay) << uint(attempt)))
		s.logger.Info("delaying post ready email", slog.String("email", event.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			msg.Nack(false, true)
			return
		}
	}

	if attempt == maxRetries {
		s.logger.Error("could not send post ready email", slog.String("email", event.Email), slog.String("error", err.Error()))
	}

	msg.Ack(false)
}

func (s *MailService) Close() {
	s.cancel()
}
