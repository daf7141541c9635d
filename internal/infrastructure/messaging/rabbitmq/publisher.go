package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/email"
)

const (
	DefaultExchange = "city.events"

	RoutingKeyVerifyEmail   = "auth.email.verify.requested"
	RoutingKeyPasswordReset = "auth.password.reset.requested"

	// Minimum window to wait for Return / Confirm.
	publishWait = 150 * time.Millisecond
	// Grace period for a Return frame that trails its Ack.
	returnGrace = 20 * time.Millisecond
)

// EmailRequested is the payload consumed by the email worker.
type EmailRequested struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	URL   string `json:"url"`
}

// Publisher hands verification and reset emails to a downstream worker
// through a topic exchange in confirm mode.
type Publisher struct {
	url      string
	exchange string
	log      zerolog.Logger

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return

	// publish is swapped in tests
	publish func(ctx context.Context, routingKey string, body []byte) error
}

func NewPublisher(url, exchange string, log zerolog.Logger) (*Publisher, error) {
	p := newPublisher(url, exchange, log)
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func newPublisher(url, exchange string, log zerolog.Logger) *Publisher {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{
		url:      url,
		exchange: exchange,
		log:      log.With().Str("component", "rabbitmq_publisher").Logger(),
	}
	p.publish = p.publishConfirmed
	return p
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetConn()
	return nil
}

// ---- auth.EmailSender ----

func (p *Publisher) SendVerificationEmail(ctx context.Context, msg auth.VerificationEmail) error {
	return p.publishJSON(ctx, RoutingKeyVerifyEmail, EmailRequested{
		Name:  msg.Name,
		Email: msg.Email,
		URL:   email.VerifyEmailURL(msg.Origin, msg.Token, msg.Email),
	})
}

func (p *Publisher) SendResetPasswordEmail(ctx context.Context, msg auth.ResetPasswordEmail) error {
	return p.publishJSON(ctx, RoutingKeyPasswordReset, EmailRequested{
		Name:  msg.Name,
		Email: msg.Email,
		URL:   email.ResetPasswordURL(msg.Origin, string(msg.Token), msg.Email),
	})
}

// ---- internal ----

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	// Ensure there is a deadline to avoid blocking forever.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	if err := p.publish(ctx, routingKey, body); err != nil {
		p.log.Error().Err(err).Str("routing_key", routingKey).Msg("publish failed")
		return err
	}
	p.log.Debug().Str("routing_key", routingKey).Msg("published")
	return nil
}

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Declare topic exchange (idempotent).
	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connect()
}

func (p *Publisher) publishConfirmed(ctx context.Context, routingKey string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return err
	}

	// Drain stale confirm / return messages so results don't mix.
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	); err != nil {
		p.resetConn()
		return fmt.Errorf("publish failed: %w", err)
	}

	select {
	case ret := <-p.returnCh:
		// No queue is bound for this routing key.
		return unroutable(routingKey, ret)

	case conf := <-p.confirmCh:
		// A Return for a mandatory publish is sent before the Ack, but the
		// two channels are read independently.
		select {
		case ret := <-p.returnCh:
			return unroutable(routingKey, ret)
		case <-time.After(returnGrace):
		}

		if !conf.Ack {
			return fmt.Errorf("rabbitmq nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-time.After(publishWait):
		return fmt.Errorf("rabbitmq publish timeout: key=%s", routingKey)

	case <-ctx.Done():
		return ctx.Err()
	}
}

func unroutable(routingKey string, ret amqp.Return) error {
	return fmt.Errorf("rabbitmq unroutable: key=%s code=%d text=%s", routingKey, ret.ReplyCode, ret.ReplyText)
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
