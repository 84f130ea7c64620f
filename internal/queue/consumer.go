package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded ticket event. A returned error rejects the
// message without requeueing, so a poison message cannot wedge the queue.
type Handler func(ctx context.Context, ev TicketEvent) error

// StartConsumer connects to RabbitMQ, declares the ticket.events queue
// (durable), and consumes messages until the context is cancelled. It runs
// a reconnect loop with doubling, capped backoff, so a broker restart only
// delays notifications instead of killing the worker.
func StartConsumer(ctx context.Context, url string, handle Handler) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("ticket-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(ctx, conn, handle); err != nil {
			log.Printf("ticket-consumer: consume loop ended: %v; reconnecting", err)
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
			continue
		}
		_ = conn.Close()
		return nil
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handle Handler) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("ticket-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(ticketQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(ticketQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			var ev TicketEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Printf("ticket-consumer: unmarshal: %v", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			if err := handle(ctx, ev); err != nil {
				log.Printf("ticket-consumer: handle %s for #%d failed: %v", ev.Kind, ev.TicketID, err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
