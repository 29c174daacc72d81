package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// AMQPSink publishes audit entries to a durable topic exchange with one
// routing key per entry kind ("audit.redemption", "audit.issuance", ...).
// Downstream consumers (reconciliation, the dashboard feed) bind their own
// queues; this service only publishes.
type AMQPSink struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewAMQPSink(url, exchange string) (*AMQPSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return &AMQPSink{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

func (s *AMQPSink) Record(_ context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.channel.Publish(
		s.exchange,
		"audit."+string(e.Kind),
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.At,
		},
	)
	if err != nil {
		return fmt.Errorf("publish audit entry: %w", err)
	}
	return nil
}

func (s *AMQPSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.channel != nil {
		if err := s.channel.Close(); err != nil {
			log.WithError(err).Warn("failed to close audit channel")
		}
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
