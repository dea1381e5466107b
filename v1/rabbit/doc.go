// Package rabbit moves ingest records over RabbitMQ using
// github.com/rabbitmq/amqp091-go. It is the alternative to the kafka
// package for deployments that already run a broker.
//
// NewClient declares a durable exchange and queue, binds them with the
// configured routing key and, when DeadLetter.ExchangeName is set, a
// dead-letter exchange and queue that receive rejected records.
//
// Consume acks a delivery once the handler has stored it, rejects malformed
// bodies without requeue and requeues the delivery when the handler fails.
// Publish sends persistent JSON messages. Trace context travels in the AMQP
// headers in both directions.
//
// Basic usage:
//
//	client, err := rabbit.NewClient(rabbit.DefaultConfig(), log, tr)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//	go client.RetryConnection()
//
//	err = client.Consume(ctx, func(ctx context.Context, rec ingest.Record) error {
//		return store(ctx, rec)
//	})
package rabbit
