package kafka

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/yang0369/rag/v1/ingest"
	"github.com/yang0369/rag/v1/observability"
)

// Consume fetches messages until ctx is cancelled or handler fails. A
// handler error returns without committing, so the message is redelivered
// on the next start.
// Messages that cannot be decoded are logged and committed so they do not
// block the partition. Cancellation returns nil.
func (k *KafkaClient) Consume(ctx context.Context, handler ingest.Handler) error {
	for {
		msg, err := k.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		start := time.Now()
		msgCtx, span := k.tracer.StartSpan(k.tracer.SetCarrierOnContext(ctx, headerCarrier(msg.Headers)), "kafka.consume")
		k.tracer.SetAttributes(span, map[string]interface{}{
			"topic":     msg.Topic,
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		err = k.handle(msgCtx, msg, handler)
		k.tracer.RecordErrorOnSpan(span, err)
		span.End()
		k.observeOperation("consume", msg.Partition, time.Since(start), err, int64(len(msg.Value)))
		if err != nil {
			return err
		}

		if err := k.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (k *KafkaClient) handle(ctx context.Context, msg kafka.Message, handler ingest.Handler) error {
	rec, err := ingest.Decode(msg.Value)
	if err != nil {
		k.logger.WarnWithContext(ctx, "skipping malformed ingest message", err, map[string]interface{}{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		return nil
	}

	if err := handler(ctx, rec); err != nil {
		k.logger.ErrorWithContext(ctx, "failed to store ingest record", err, map[string]interface{}{
			"partition": msg.Partition,
			"offset":    msg.Offset,
		})
		return err
	}
	return nil
}

// Publish writes records to the topic, keyed by their vector partition so a
// partition's records stay ordered. The current trace context travels in
// the message headers.
func (k *KafkaClient) Publish(ctx context.Context, recs ...ingest.Record) error {
	msgs := make([]kafka.Message, 0, len(recs))
	headers := toHeaders(k.tracer.GetCarrier(ctx))

	var size int64
	for _, rec := range recs {
		body, err := ingest.Encode(rec)
		if err != nil {
			return err
		}
		size += int64(len(body))
		msgs = append(msgs, kafka.Message{
			Key:     []byte(rec.Partition),
			Value:   body,
			Headers: headers,
		})
	}

	start := time.Now()
	err := k.writer.WriteMessages(ctx, msgs...)
	k.observeOperation("publish", -1, time.Since(start), err, size)
	return err
}

func (k *KafkaClient) observeOperation(operation string, partition int, duration time.Duration, err error, size int64) {
	if k.observer == nil {
		return
	}
	op := observability.OperationContext{
		Component: "kafka",
		Operation: operation,
		Resource:  k.cfg.Topic,
		Duration:  duration,
		Error:     err,
		Size:      size,
	}
	if partition >= 0 {
		op.Metadata = map[string]interface{}{"partition": partition}
	}
	k.observer.ObserveOperation(op)
}

func headerCarrier(headers []kafka.Header) map[string]string {
	c := make(map[string]string, len(headers))
	for _, h := range headers {
		c[h.Key] = string(h.Value)
	}
	return c
}

func toHeaders(c map[string]string) []kafka.Header {
	headers := make([]kafka.Header, 0, len(c))
	for key, v := range c {
		headers = append(headers, kafka.Header{Key: key, Value: []byte(v)})
	}
	return headers
}
