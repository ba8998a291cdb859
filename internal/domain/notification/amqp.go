package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	amqpDialTimeout   = 2 * time.Second
	amqpRedialBackoff = 30 * time.Second
)

// ErrBrokerBackoff is returned while the publisher waits out a failed dial.
var ErrBrokerBackoff = errors.New("rabbitmq: broker unavailable, redial pending")

// AMQPPublisher sends events to RabbitMQ through the default exchange, one
// durable queue per event type. The connection is opened lazily and
// re-dialed after the broker drops it. After a failed dial, publishes fail
// fast until the backoff has passed.
type AMQPPublisher struct {
	url string
	log logrus.FieldLogger

	dial    func(network, addr string) (net.Conn, error)
	backoff time.Duration
	now     func() time.Time

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	declared map[Type]bool
	retryAt  time.Time
}

func NewAMQPPublisher(url string, log logrus.FieldLogger) *AMQPPublisher {
	return &AMQPPublisher{
		url:      url,
		log:      log,
		dial:     amqp.DefaultDial(amqpDialTimeout),
		backoff:  amqpRedialBackoff,
		now:      time.Now,
		declared: make(map[Type]bool),
	}
}

func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channel()
	if err != nil {
		return err
	}

	queue := string(e.Type)
	if !p.declared[e.Type] {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			p.reset()
			return fmt.Errorf("rabbitmq: queue declare %s: %w", queue, err)
		}
		p.declared[e.Type] = true
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Type:         queue,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		p.reset()
		return fmt.Errorf("rabbitmq: publish %s: %w", queue, err)
	}
	return nil
}

func (p *AMQPPublisher) channel() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	p.reset()

	if p.now().Before(p.retryAt) {
		return nil, ErrBrokerBackoff
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: p.dial})
	if err != nil {
		p.retryAt = p.now().Add(p.backoff)
		p.log.WithError(err).WithField("retry_in", p.backoff).Warn("rabbitmq dial failed")
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	p.retryAt = time.Time{}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: channel open: %w", err)
	}

	p.conn, p.ch = conn, ch
	p.log.Info("rabbitmq connected")
	return ch, nil
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
	p.declared = make(map[Type]bool)
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
