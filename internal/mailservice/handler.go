package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/karasuhime/inkwell/internal/common"
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender, owner string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:     mb,
		m:      NewMailer(host, port, username, password, sender, NewTemplate()),
		logger: logger,
		owner:  owner,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SendNewsletterConfirmations consumes newsletter.subscribed events and mails
// a confirmation to each subscriber.
func (s *MailService) SendNewsletterConfirmations() {
	msgs, err := s.mb.Consume(common.NewsletterSubscribedKey, common.MailExchange, common.NewsletterSubscribedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go s.loop(msgs, func(body []byte) (string, any, string, error) {
		var data struct {
			Email string
		}

		if err := json.Unmarshal(body, &data); err != nil {
			return "", nil, "", err
		}

		return data.Email, data, "newsletter_confirmation.html", nil
	})
}

// ForwardContactMessages consumes contact.message events and mails each one
// to the site owner.
func (s *MailService) ForwardContactMessages() {
	msgs, err := s.mb.Consume(common.ContactMessageKey, common.MailExchange, common.ContactMessageQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go s.loop(msgs, func(body []byte) (string, any, string, error) {
		var data struct {
			Name    string
			Email   string
			Subject string
			Message string
		}

		if err := json.Unmarshal(body, &data); err != nil {
			return "", nil, "", err
		}

		return s.owner, data, "contact_message.html", nil
	})
}

// loop drains one queue until the service is closed. decode turns a message
// body into (recipient, template data, template file).
func (s *MailService) loop(msgs <-chan amqp.Delivery, decode func(body []byte) (string, any, string, error)) {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}

			recipient, data, templateFile, err := decode(msg.Body)
			if err != nil {
				s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
				msg.Ack(false)
				continue
			}

			s.sendWithRetry(recipient, data, templateFile)
			msg.Ack(false)

		case <-s.ctx.Done():
			s.logger.Info("stopping mail consumer due to context cancellation")
			return
		}
	}
}

// sendWithRetry uses exponential backoff with jitter.
func (s *MailService) sendWithRetry(recipient string, data any, templateFile string) {
	const maxRetries = 5
	const baseDelay = 500 * time.Millisecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.m.send(recipient, data, templateFile)
		if err == nil {
			s.logger.Info("email sent", slog.String("recipient", recipient), slog.String("template", templateFile))
			return
		}

		delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
		s.logger.Info("delaying email", slog.String("recipient", recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))
		time.Sleep(delay)
	}

	s.logger.Error("could not send email", slog.String("recipient", recipient), slog.String("template", templateFile))
}

func (s *MailService) Close() {
	s.cancel()
}
