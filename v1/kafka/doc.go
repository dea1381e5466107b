// Package kafka moves ingest records over Apache Kafka using
// github.com/segmentio/kafka-go.
//
// Each message body is a JSON ingest.Record:
//
//	{"partition": "vdb", "title": "urban planning", "text": "..."}
//
// Consume runs a single fetch/handle/commit loop in a consumer group. A
// message is committed only after the handler has stored it; malformed
// messages are logged and skipped. Trace context is carried in message
// headers in both directions, so a span started by a producer continues in
// the consumer.
//
// Basic usage:
//
//	client, err := kafka.NewClient(kafka.DefaultConfig(), log, tr)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	err = client.Consume(ctx, func(ctx context.Context, rec ingest.Record) error {
//		return store(ctx, rec)
//	})
package kafka
