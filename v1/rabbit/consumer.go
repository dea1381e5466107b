package rabbit

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yang0369/rag/v1/ingest"
	"github.com/yang0369/rag/v1/observability"
)

// Consume reads deliveries from the queue until ctx is cancelled, Close is
// called or handler fails. A stored record is acked. A malformed record is
// rejected without requeue, so it moves to the dead-letter queue when one
// is configured. A handler error requeues the delivery and is returned.
func (rb *RabbitClient) Consume(ctx context.Context, handler ingest.Handler) error {
	for {
		rb.mu.RLock()
		ch := rb.channel
		var deliveries <-chan amqp.Delivery
		var err error = amqp.ErrClosed
		if ch != nil {
			deliveries, err = ch.Consume(
				rb.cfg.Channel.QueueName,
				"",    // consumer
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,
			)
		}
		rb.mu.RUnlock()

		if err != nil {
			rb.logger.WarnWithContext(ctx, "Failed to start RabbitMQ consumer, retrying", err, map[string]interface{}{
				"queue": rb.cfg.Channel.QueueName,
			})
			select {
			case <-ctx.Done():
				return nil
			case <-rb.shutdownSignal:
				return nil
			case <-time.After(rb.reconnectDelay()):
			}
			continue
		}

		stop, err := rb.drain(ctx, deliveries, handler)
		if stop {
			return err
		}
	}
}

// drain handles deliveries until the channel closes (stop is false, the
// caller re-subscribes) or consumption must end.
func (rb *RabbitClient) drain(ctx context.Context, deliveries <-chan amqp.Delivery, handler ingest.Handler) (bool, error) {
	for {
		select {
		case <-ctx.Done():
			return true, nil
		case <-rb.shutdownSignal:
			return true, nil
		case d, ok := <-deliveries:
			if !ok {
				return false, nil
			}
			if err := rb.handleDelivery(ctx, d, handler); err != nil {
				return true, err
			}
		}
	}
}

func (rb *RabbitClient) handleDelivery(ctx context.Context, d amqp.Delivery, handler ingest.Handler) error {
	start := time.Now()
	msgCtx, span := rb.tracer.StartSpan(rb.tracer.SetCarrierOnContext(ctx, headerCarrier(d.Headers)), "rabbit.consume")
	rb.tracer.SetAttributes(span, map[string]interface{}{
		"queue":        rb.cfg.Channel.QueueName,
		"delivery_tag": int64(d.DeliveryTag),
		"redelivered":  d.Redelivered,
	})
	defer span.End()

	err := rb.handle(msgCtx, d, handler)
	rb.tracer.RecordErrorOnSpan(span, err)
	rb.observeOperation("consume", rb.cfg.Channel.QueueName, "", time.Since(start), err, int64(len(d.Body)))
	return err
}

func (rb *RabbitClient) handle(ctx context.Context, d amqp.Delivery, handler ingest.Handler) error {
	rec, err := ingest.Decode(d.Body)
	if err != nil {
		rb.logger.WarnWithContext(ctx, "rejecting malformed ingest message", err, map[string]interface{}{
			"delivery_tag": d.DeliveryTag,
		})
		if nackErr := d.Nack(false, false); nackErr != nil {
			return fmt.Errorf("nack malformed message: %w", nackErr)
		}
		return nil
	}

	if err := handler(ctx, rec); err != nil {
		rb.logger.ErrorWithContext(ctx, "failed to store ingest record", err, map[string]interface{}{
			"delivery_tag": d.DeliveryTag,
		})
		if nackErr := d.Nack(false, true); nackErr != nil {
			rb.logger.WarnWithContext(ctx, "failed to requeue message", nackErr, nil)
		}
		return err
	}

	if err := d.Ack(false); err != nil {
		return fmt.Errorf("ack message: %w", err)
	}
	return nil
}

// Publish sends each record as a persistent JSON message to the configured
// exchange and routing key. The current trace context travels in the
// message headers.
func (rb *RabbitClient) Publish(ctx context.Context, recs ...ingest.Record) error {
	headers := toTable(rb.tracer.GetCarrier(ctx))

	for _, rec := range recs {
		body, err := ingest.Encode(rec)
		if err != nil {
			return err
		}

		start := time.Now()
		rb.mu.RLock()
		ch := rb.channel
		err = amqp.ErrClosed
		if ch != nil {
			err = ch.PublishWithContext(ctx,
				rb.cfg.Channel.ExchangeName,
				rb.cfg.Channel.RoutingKey,
				false, // mandatory
				false, // immediate
				amqp.Publishing{
					Headers:      headers,
					ContentType:  "application/json",
					DeliveryMode: amqp.Persistent,
					Timestamp:    start,
					Body:         body,
				},
			)
		}
		rb.mu.RUnlock()

		rb.observeOperation("publish", rb.cfg.Channel.ExchangeName, rb.cfg.Channel.RoutingKey, time.Since(start), err, int64(len(body)))
		if err != nil {
			return fmt.Errorf("publish ingest record: %w", err)
		}
	}
	return nil
}

func (rb *RabbitClient) observeOperation(operation, resource, subResource string, duration time.Duration, err error, size int64) {
	if rb.observer == nil {
		return
	}
	rb.observer.ObserveOperation(observability.OperationContext{
		Component:   "rabbit",
		Operation:   operation,
		Resource:    resource,
		SubResource: subResource,
		Duration:    duration,
		Error:       err,
		Size:        size,
	})
}

func headerCarrier(headers amqp.Table) map[string]string {
	c := make(map[string]string, len(headers))
	for k, v := range headers {
		if s, ok := v.(string); ok {
			c[k] = s
		}
	}
	return c
}

func toTable(c map[string]string) amqp.Table {
	t := make(amqp.Table, len(c))
	for k, v := range c {
		t[k] = v
	}
	return t
}
