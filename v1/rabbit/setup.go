package rabbit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yang0369/rag/v1/logger"
	"github.com/yang0369/rag/v1/observability"
	"github.com/yang0369/rag/v1/tracer"
)

// amqpChannel is the subset of *amqp.Channel the client uses.
type amqpChannel interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitClient publishes ingest records to an exchange and consumes them
// from a durable queue, reconnecting when the broker connection drops.
type RabbitClient struct {
	cfg Config

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel amqpChannel

	logger   logger.Logger
	tracer   *tracer.Tracer
	observer observability.Observer

	shutdownSignal    chan struct{}
	closeShutdownOnce sync.Once
}

// NewClient connects to the broker and declares the exchange, the queue,
// its binding and the optional dead-letter pair.
//
// Example:
//
//	client, err := rabbit.NewClient(rabbit.DefaultConfig(), log, tr)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
func NewClient(cfg *Config, log logger.Logger, tr *tracer.Tracer) (*RabbitClient, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conn, err := newConnection(cfg)
	if err != nil {
		return nil, err
	}

	ch, err := connectToChannel(conn, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Info("Connected to RabbitMQ", nil, map[string]interface{}{
		"host":     cfg.Connection.Host,
		"exchange": cfg.Channel.ExchangeName,
		"queue":    cfg.Channel.QueueName,
	})

	return &RabbitClient{
		cfg:            *cfg,
		conn:           conn,
		channel:        ch,
		logger:         log,
		tracer:         tr,
		shutdownSignal: make(chan struct{}),
	}, nil
}

// WithObserver attaches an observer for publish and consume operations.
func (rb *RabbitClient) WithObserver(observer observability.Observer) *RabbitClient {
	rb.observer = observer
	return rb
}

func connectToChannel(conn *amqp.Connection, cfg *Config) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	if err := declareTopology(ch, cfg); err != nil {
		_ = ch.Close()
		return nil, err
	}
	if cfg.Channel.PrefetchCount > 0 {
		if err := ch.Qos(cfg.Channel.PrefetchCount, 0, false); err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("failed to set QoS: %w", err)
		}
	}
	return ch, nil
}

func declareTopology(ch *amqp.Channel, cfg *Config) error {
	err := ch.ExchangeDeclare(
		cfg.Channel.ExchangeName,
		cfg.Channel.ExchangeType,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	queueArgs := queueArguments(cfg)
	if cfg.DeadLetter.ExchangeName != "" {
		if err := ch.ExchangeDeclare(cfg.DeadLetter.ExchangeName, "direct", true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead letter exchange: %w", err)
		}
		if _, err := ch.QueueDeclare(cfg.DeadLetter.QueueName, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare dead letter queue: %w", err)
		}
		if err := ch.QueueBind(cfg.DeadLetter.QueueName, cfg.DeadLetter.RoutingKey, cfg.DeadLetter.ExchangeName, false, nil); err != nil {
			return fmt.Errorf("failed to bind dead letter queue: %w", err)
		}
	}

	if _, err := ch.QueueDeclare(cfg.Channel.QueueName, true, false, false, false, queueArgs); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(cfg.Channel.QueueName, cfg.Channel.RoutingKey, cfg.Channel.ExchangeName, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	return nil
}

func queueArguments(cfg *Config) amqp.Table {
	args := amqp.Table{}
	if cfg.DeadLetter.ExchangeName != "" {
		args["x-dead-letter-exchange"] = cfg.DeadLetter.ExchangeName
		args["x-dead-letter-routing-key"] = cfg.DeadLetter.RoutingKey
	}
	if cfg.DeadLetter.TTL > 0 {
		args["x-message-ttl"] = cfg.DeadLetter.TTL.Milliseconds()
	}
	return args
}

func newConnection(cfg *Config) (*amqp.Connection, error) {
	amqpCfg := amqp.Config{Heartbeat: cfg.Connection.Heartbeat}
	if amqpCfg.Heartbeat == 0 {
		amqpCfg.Heartbeat = DefaultHeartbeat
	}

	if cfg.Connection.IsSSLEnabled {
		tlsConfig, err := createTLSConfig(cfg.Connection)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		amqpCfg.TLSClientConfig = tlsConfig
	}

	conn, err := amqp.DialConfig(cfg.url(), amqpCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ at %s:%d: %w", cfg.Connection.Host, cfg.Connection.Port, err)
	}
	return conn, nil
}

func createTLSConfig(c Connection) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		ServerName: c.ServerName,
		MinVersion: tls.VersionTLS12,
	}

	if c.CACertPath != "" {
		caCert, err := os.ReadFile(c.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("failed to parse CA cert")
		}
		tlsConfig.RootCAs = pool
	}

	if c.ClientCertPath != "" {
		cert, err := tls.LoadX509KeyPair(c.ClientCertPath, c.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}

// RetryConnection watches the connection and re-dials after it closes,
// until Close is called. It blocks; run it in a goroutine.
func (rb *RabbitClient) RetryConnection() {
	for {
		rb.mu.RLock()
		conn := rb.conn
		rb.mu.RUnlock()
		if conn == nil {
			return
		}

		closed := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-rb.shutdownSignal:
			return
		case amqpErr := <-closed:
			var err error
			if amqpErr != nil {
				err = amqpErr
			}
			rb.logger.Warn("RabbitMQ connection closed, reconnecting", err, nil)
		}

		if !rb.reconnect() {
			return
		}
	}
}

func (rb *RabbitClient) reconnect() bool {
	for {
		select {
		case <-rb.shutdownSignal:
			return false
		default:
		}

		conn, err := newConnection(&rb.cfg)
		if err == nil {
			var ch *amqp.Channel
			if ch, err = connectToChannel(conn, &rb.cfg); err == nil {
				rb.mu.Lock()
				rb.conn = conn
				rb.channel = ch
				rb.mu.Unlock()
				rb.logger.Info("Reconnected to RabbitMQ", nil)
				return true
			}
			_ = conn.Close()
		}

		rb.logger.Error("RabbitMQ reconnection failed", err, nil)
		select {
		case <-rb.shutdownSignal:
			return false
		case <-time.After(rb.reconnectDelay()):
		}
	}
}

func (rb *RabbitClient) reconnectDelay() time.Duration {
	if rb.cfg.Channel.DelayToReconnect > 0 {
		return rb.cfg.Channel.DelayToReconnect
	}
	return DefaultReconnectDelay
}

// Close stops reconnection and consumption and closes the channel and
// connection.
func (rb *RabbitClient) Close() error {
	rb.closeShutdownOnce.Do(func() {
		close(rb.shutdownSignal)
	})

	rb.mu.Lock()
	defer rb.mu.Unlock()

	var errs []error
	if rb.channel != nil {
		if err := rb.channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close channel: %w", err))
		}
		rb.channel = nil
	}
	if rb.conn != nil && !rb.conn.IsClosed() {
		if err := rb.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, fmt.Errorf("close connection: %w", err))
		}
	}
	rb.conn = nil
	return errors.Join(errs...)
}
