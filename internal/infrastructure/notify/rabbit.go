package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"sommy-store/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Rabbit publishes order payloads to a durable RabbitMQ queue through a small
// channel pool. Publishers run on detached goroutines, so the pool must stay
// safe against a concurrent Close.
type Rabbit struct {
	conn     *amqp.Connection
	channels chan *amqp.Channel
	queue    string

	mu     sync.Mutex
	closed bool
}

func NewRabbit(url, queue string, poolSize int) (*Rabbit, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	r := &Rabbit{
		conn:     conn,
		channels: make(chan *amqp.Channel, poolSize),
		queue:    queue,
	}

	for i := 0; i < poolSize; i++ {
		ch, err := r.openChannel()
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("create channel %d: %w", i, err)
		}
		r.channels <- ch
	}

	return r, nil
}

func (r *Rabbit) openChannel() (*amqp.Channel, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, err
	}

	// Queue declaration is idempotent.
	if _, err := ch.QueueDeclare(r.queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return ch, nil
}

func (r *Rabbit) Notify(ctx context.Context, order *domain.Order) error {
	ch, err := r.getChannel()
	if err != nil {
		return err
	}
	defer r.returnChannel(ch)

	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	err = ch.PublishWithContext(ctx,
		"",      // exchange
		r.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish order: %w", err)
	}
	return nil
}

func (r *Rabbit) getChannel() (*amqp.Channel, error) {
	select {
	case ch, ok := <-r.channels:
		if !ok {
			return nil, errors.New("notification sink is closed")
		}
		if ch.IsClosed() {
			return r.openChannel()
		}
		return ch, nil
	default:
		return nil, errors.New("no channels available in pool")
	}
}

func (r *Rabbit) returnChannel(ch *amqp.Channel) {
	if ch == nil || ch.IsClosed() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		ch.Close()
		return
	}
	select {
	case r.channels <- ch:
	default:
		ch.Close()
	}
}

func (r *Rabbit) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.channels)
	r.mu.Unlock()

	for ch := range r.channels {
		if ch != nil {
			ch.Close()
		}
	}
	if r.conn != nil {
		r.conn.Close()
	}
}
