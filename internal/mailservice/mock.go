package mailservice

import (
	"encoding/json"

	"github.com/go-mail/mail/v2"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"

	"github.com/sushihentaime/quillpress/internal/common"
)

type MockTemplate struct {
	mock.Mock
}

func (m *MockTemplate) Render(name string, data any) (*renderedMail, error) {
	args := m.Called(name, data)
	rendered, _ := args.Get(0).(*renderedMail)
	return rendered, args.Error(1)
}

type MockDialer struct {
	mock.Mock
}

func (d *MockDialer) DialAndSend(m ...*mail.Message) error {
	args := d.Called(m)
	return args.Error(0)
}

// MockMailer reports every send on Sent.
type MockMailer struct {
	mock.Mock
	Sent chan string
}

func NewMockMailer() *MockMailer {
	return &MockMailer{Sent: make(chan string, 16)}
}

func (m *MockMailer) sendPostGenerated(recipient string, data postGeneratedData) error {
	args := m.Called(recipient, data)
	m.Sent <- recipient
	return args.Error(0)
}

// MockMessageConsumer delivers Events once and then closes the channel.
type MockMessageConsumer struct {
	mock.Mock
	Events []common.PostGeneratedEvent
}

func (m *MockMessageConsumer) Consume(key common.BindingKey, exchange common.Exchange, queue common.Queue) (<-chan amqp.Delivery, error) {
	args := m.Called(key, exchange, queue)
	if args.Error(0) != nil {
		return nil, args.Error(0)
	}

	msgsChan := make(chan amqp.Delivery)
	go func() {
		defer close(msgsChan)

		for _, ev := range m.Events {
			body, _ := json.Marshal(ev)
			msgsChan <- amqp.Delivery{Body: body}
		}
	}()

	return msgsChan, nil
}
