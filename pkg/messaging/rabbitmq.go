package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/diallo/callreview/pkg/config"
	"github.com/diallo/callreview/pkg/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQ manages the connection to RabbitMQ
type RabbitMQ struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	logger  *logger.Logger
	mu      sync.RWMutex
	closed  bool
}

// New creates a new RabbitMQ connection
func New(cfg *config.RabbitMQConfig, log *logger.Logger) (*RabbitMQ, error) {
	rmq := &RabbitMQ{
		config: cfg,
		logger: log,
	}

	if err := rmq.connect(); err != nil {
		return nil, err
	}

	return rmq, nil
}

func (r *RabbitMQ) connect() error {
	conn, channel, err := r.dial()
	if err != nil {
		return err
	}
	r.conn, r.channel = conn, channel

	r.logger.Info().Msg("connected to RabbitMQ")
	return nil
}

func (r *RabbitMQ) dial() (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(r.config.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return conn, channel, nil
}

// Channel returns the current channel
func (r *RabbitMQ) Channel() *amqp.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.channel
}

// Close closes the RabbitMQ connection
func (r *RabbitMQ) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true

	if r.channel != nil {
		if err := r.channel.Close(); err != nil {
			r.logger.Warn().Err(err).Msg("failed to close channel")
		}
	}

	if r.conn != nil {
		if err := r.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}

	r.logger.Info().Msg("RabbitMQ connection closed")
	return nil
}

// Health returns the health status of RabbitMQ
func (r *RabbitMQ) Health() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := map[string]string{
		"status": "up",
	}

	if r.conn == nil || r.conn.IsClosed() {
		status["status"] = "down"
		status["error"] = "connection closed"
	}

	return status
}

// DeclareExchange declares a durable topic exchange
func (r *RabbitMQ) DeclareExchange(name string) error {
	return r.Channel().ExchangeDeclare(
		name,    // name
		"topic", // type
		true,    // durable
		false,   // auto-deleted
		false,   // internal
		false,   // no-wait
		nil,     // arguments
	)
}

// Reconnect attempts to reconnect to RabbitMQ. Dialing and the delay between
// attempts happen without holding the lock, so Channel and Health stay
// responsive; ctx bounds the whole attempt.
func (r *RabbitMQ) Reconnect(ctx context.Context) error {
	for i := 0; i < r.config.MaxRetries; i++ {
		if i > 0 {
			timer := time.NewTimer(r.config.ReconnectDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if r.isClosed() {
			return errPermanentlyClosed
		}

		r.logger.Info().Int("attempt", i+1).Msg("attempting to reconnect to RabbitMQ")

		conn, channel, err := r.dial()
		if err != nil {
			r.logger.Warn().Err(err).Msg("reconnection attempt failed")
			continue
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			channel.Close()
			conn.Close()
			return errPermanentlyClosed
		}
		oldConn, oldChannel := r.conn, r.channel
		r.conn, r.channel = conn, channel
		r.mu.Unlock()

		if oldChannel != nil {
			_ = oldChannel.Close()
		}
		if oldConn != nil {
			_ = oldConn.Close()
		}

		r.logger.Info().Msg("reconnected to RabbitMQ")
		return nil
	}

	return fmt.Errorf("failed to reconnect after %d attempts", r.config.MaxRetries)
}

var errPermanentlyClosed = errors.New("connection is permanently closed")

func (r *RabbitMQ) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}
