package rabbit

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultExchange       = "rag"
	DefaultExchangeType   = "direct"
	DefaultRoutingKey     = "ingest"
	DefaultQueue          = "rag.ingest"
	DefaultPrefetchCount  = 10
	DefaultReconnectDelay = time.Second
	DefaultHeartbeat      = 2 * time.Second
)

// Config contains the broker connection and the ingest topology.
type Config struct {
	// Enabled lets binaries skip RabbitMQ entirely when false.
	Enabled bool `yaml:"enabled" envconfig:"RABBIT_ENABLED"`

	Connection Connection `yaml:"connection"`
	Channel    Channel    `yaml:"channel"`
	DeadLetter DeadLetter `yaml:"dead_letter"`
}

// Connection contains the settings needed to reach the broker.
type Connection struct {
	Host     string `yaml:"host" envconfig:"RABBIT_HOST"`
	Port     uint   `yaml:"port" envconfig:"RABBIT_PORT"`
	User     string `yaml:"user" envconfig:"RABBIT_USER"`
	Password string `yaml:"password" envconfig:"RABBIT_PASSWORD"`
	VHost    string `yaml:"vhost" envconfig:"RABBIT_VHOST"`

	// IsSSLEnabled switches the scheme to amqps.
	IsSSLEnabled bool `yaml:"ssl_enabled" envconfig:"RABBIT_SSL_ENABLED"`

	// CACertPath, ClientCertPath and ClientKeyPath are only read when
	// IsSSLEnabled is set. Leave the client pair empty for server-only TLS.
	CACertPath     string `yaml:"ca_cert_path" envconfig:"RABBIT_CA_CERT_PATH"`
	ClientCertPath string `yaml:"client_cert_path" envconfig:"RABBIT_CLIENT_CERT_PATH"`
	ClientKeyPath  string `yaml:"client_key_path" envconfig:"RABBIT_CLIENT_KEY_PATH"`
	ServerName     string `yaml:"server_name" envconfig:"RABBIT_SERVER_NAME"`

	Heartbeat time.Duration `yaml:"heartbeat" envconfig:"RABBIT_HEARTBEAT"`
}

// Channel describes where ingest records are published and consumed.
type Channel struct {
	ExchangeName string `yaml:"exchange" envconfig:"RABBIT_EXCHANGE"`

	// ExchangeType is direct, fanout, topic or headers.
	ExchangeType string `yaml:"exchange_type" envconfig:"RABBIT_EXCHANGE_TYPE"`
	RoutingKey   string `yaml:"routing_key" envconfig:"RABBIT_ROUTING_KEY"`
	QueueName    string `yaml:"queue" envconfig:"RABBIT_QUEUE"`

	// PrefetchCount limits unacknowledged deliveries. Zero means no limit.
	PrefetchCount int `yaml:"prefetch_count" envconfig:"RABBIT_PREFETCH_COUNT"`

	// DelayToReconnect is the pause between reconnection attempts.
	DelayToReconnect time.Duration `yaml:"reconnect_delay" envconfig:"RABBIT_RECONNECT_DELAY"`
}

// DeadLetter receives malformed records. The dead-letter exchange is only
// declared when ExchangeName is set.
type DeadLetter struct {
	ExchangeName string `yaml:"exchange" envconfig:"RABBIT_DLX_EXCHANGE"`
	QueueName    string `yaml:"queue" envconfig:"RABBIT_DLX_QUEUE"`
	RoutingKey   string `yaml:"routing_key" envconfig:"RABBIT_DLX_ROUTING_KEY"`

	// TTL expires records that stay in the main queue longer than this.
	// Zero disables expiry.
	TTL time.Duration `yaml:"ttl" envconfig:"RABBIT_DLX_TTL"`
}

// DefaultConfig returns a config for a local broker with the guest account.
func DefaultConfig() *Config {
	return &Config{
		Connection: Connection{
			Host:      "localhost",
			Port:      5672,
			User:      "guest",
			Password:  "guest",
			Heartbeat: DefaultHeartbeat,
		},
		Channel: Channel{
			ExchangeName:     DefaultExchange,
			ExchangeType:     DefaultExchangeType,
			RoutingKey:       DefaultRoutingKey,
			QueueName:        DefaultQueue,
			PrefetchCount:    DefaultPrefetchCount,
			DelayToReconnect: DefaultReconnectDelay,
		},
		DeadLetter: DeadLetter{
			ExchangeName: DefaultQueue + ".dlx",
			QueueName:    DefaultQueue + ".dlq",
			RoutingKey:   DefaultRoutingKey,
		},
	}
}

// Validate reports missing settings.
func (c *Config) Validate() error {
	if c.Connection.Host == "" {
		return errors.New("rabbit: host is required")
	}
	if c.Channel.ExchangeName == "" {
		return errors.New("rabbit: exchange is required")
	}
	if c.Channel.QueueName == "" {
		return errors.New("rabbit: queue is required")
	}
	switch c.Channel.ExchangeType {
	case "direct", "fanout", "topic", "headers":
	default:
		return fmt.Errorf("rabbit: unknown exchange type %q", c.Channel.ExchangeType)
	}
	if c.DeadLetter.ExchangeName != "" && c.DeadLetter.QueueName == "" {
		return errors.New("rabbit: dead-letter queue is required when a dead-letter exchange is set")
	}
	if c.Connection.IsSSLEnabled && (c.Connection.ClientCertPath == "") != (c.Connection.ClientKeyPath == "") {
		return errors.New("rabbit: client certificate and key must be set together")
	}
	return nil
}

func (c *Config) url() string {
	scheme := "amqp"
	if c.Connection.IsSSLEnabled {
		scheme = "amqps"
	}
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(c.Connection.User, c.Connection.Password),
		Host:   net.JoinHostPort(c.Connection.Host, strconv.FormatUint(uint64(c.Connection.Port), 10)),
	}
	if c.Connection.VHost != "" {
		u.Path = "/" + c.Connection.VHost
	}
	return u.String()
}
