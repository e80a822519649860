package mailservice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sushihentaime/quillpress/internal/common"
)

func setupTestService(mc common.MessageConsumer, mailer Mailer) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:        mc,
		m:         mailer,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		appURL:    "https://quillpress.test",
		baseDelay: time.Millisecond,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func waitForSend(t *testing.T, m *MockMailer) string {
	t.Helper()

	select {
	case email := <-m.Sent:
		return email
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email")
		return ""
	}
}

func TestSendPostGeneratedEmails(t *testing.T) {
	event := common.PostGeneratedEvent{
		PostID:          "3f7c1a9e-0000-4000-8000-000000000001",
		Title:           "Ten Lessons",
		Email:           "author@example.com",
		TokensUsed:      2,
		RemainingTokens: 8,
	}

	t.Run("sends email", func(t *testing.T) {
		mc := &MockMessageConsumer{Events: []common.PostGeneratedEvent{event}}
		mc.On("Consume", common.PostGeneratedKey, common.BlogExchange, common.PostGeneratedQueue).Return(nil)

		mailer := NewMockMailer()
		expected := postGeneratedData{
			Title:           "Ten Lessons",
			PostURL:         "https://quillpress.test/dashboard/posts/" + event.PostID,
			TokensUsed:      2,
			RemainingTokens: 8,
		}
		mailer.On("sendPostGenerated", "author@example.com", expected).Return(nil)

		s := setupTestService(mc, mailer)
		t.Cleanup(s.Close)

		s.SendPostGeneratedEmails()

		assert.Equal(t, "author@example.com", waitForSend(t, mailer))
		mc.AssertExpectations(t)
	})

	t.Run("retries until delivered", func(t *testing.T) {
		mc := &MockMessageConsumer{Events: []common.PostGeneratedEvent{event}}
		mc.On("Consume", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		mailer := NewMockMailer()
		mailer.On("sendPostGenerated", mock.Anything, mock.Anything).Return(errors.New("smtp unavailable")).Twice()
		mailer.On("sendPostGenerated", mock.Anything, mock.Anything).Return(nil).Once()

		s := setupTestService(mc, mailer)
		t.Cleanup(s.Close)

		s.SendPostGeneratedEmails()

		for i := 0; i < 3; i++ {
			waitForSend(t, mailer)
		}
		mailer.AssertNumberOfCalls(t, "sendPostGenerated", 3)
	})

	t.Run("skips events without recipient", func(t *testing.T) {
		noEmail := event
		noEmail.Email = ""
		mc := &MockMessageConsumer{Events: []common.PostGeneratedEvent{noEmail, event}}
		mc.On("Consume", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		mailer := NewMockMailer()
		mailer.On("sendPostGenerated", mock.Anything, mock.Anything).Return(nil)

		s := setupTestService(mc, mailer)
		t.Cleanup(s.Close)

		s.SendPostGeneratedEmails()

		assert.Equal(t, "author@example.com", waitForSend(t, mailer))
		mailer.AssertNumberOfCalls(t, "sendPostGenerated", 1)
	})

	t.Run("consume failure", func(t *testing.T) {
		mc := &MockMessageConsumer{}
		mc.On("Consume", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))

		mailer := NewMockMailer()
		s := setupTestService(mc, mailer)
		t.Cleanup(s.Close)

		s.SendPostGeneratedEmails()
		mailer.AssertNotCalled(t, "sendPostGenerated", mock.Anything, mock.Anything)
	})
}
