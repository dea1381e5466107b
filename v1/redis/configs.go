package redis

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultHost        = "localhost"
	DefaultPort        = 6379
	DefaultDialTimeout = 5 * time.Second
	DefaultReadTimeout = 3 * time.Second
	DefaultTTL         = 24 * time.Hour
	DefaultKeyPrefix   = "rag:"
)

// Config defines the connection and caching settings for the Redis client.
type Config struct {
	// Enabled turns the embedding cache on. Binaries skip the redis module when false.
	Enabled bool `yaml:"enabled" envconfig:"REDIS_ENABLED"`

	// Host is the Redis server hostname or IP address.
	Host string `yaml:"host" envconfig:"REDIS_HOST"`

	// Port is the Redis server port.
	Port int `yaml:"port" envconfig:"REDIS_PORT"`

	// Username is the ACL user (Redis 6.0+). Empty means no username.
	Username string `yaml:"username" envconfig:"REDIS_USERNAME"`

	// Password is the Redis password. Empty means no authentication.
	Password string `yaml:"password" envconfig:"REDIS_PASSWORD"`

	// DB is the Redis database number.
	DB int `yaml:"db" envconfig:"REDIS_DB"`

	// PoolSize is the maximum number of socket connections. 0 uses the go-redis default.
	PoolSize int `yaml:"pool_size" envconfig:"REDIS_POOL_SIZE"`

	// MaxRetries is the number of retries before giving up. -1 disables retries.
	MaxRetries int `yaml:"max_retries" envconfig:"REDIS_MAX_RETRIES"`

	// DialTimeout is the timeout for establishing new connections.
	DialTimeout time.Duration `yaml:"dial_timeout" envconfig:"REDIS_DIAL_TIMEOUT"`

	// ReadTimeout is the timeout for socket reads.
	ReadTimeout time.Duration `yaml:"read_timeout" envconfig:"REDIS_READ_TIMEOUT"`

	// TTL is the expiry of every key written through Set. 0 means no expiry.
	TTL time.Duration `yaml:"ttl" envconfig:"REDIS_TTL"`

	// KeyPrefix is prepended to every key.
	KeyPrefix string `yaml:"key_prefix" envconfig:"REDIS_KEY_PREFIX"`

	// UseTLS enables TLS on the connection.
	UseTLS bool `yaml:"use_tls" envconfig:"REDIS_USE_TLS"`

	// InsecureSkipVerify disables server certificate verification. Testing only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" envconfig:"REDIS_INSECURE_SKIP_VERIFY"`
}

// DefaultConfig returns a config for a local Redis with the cache disabled.
func DefaultConfig() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		DialTimeout: DefaultDialTimeout,
		ReadTimeout: DefaultReadTimeout,
		TTL:         DefaultTTL,
		KeyPrefix:   DefaultKeyPrefix,
	}
}

// Validate reports missing or out-of-range settings.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("redis: host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("redis: invalid port %d", c.Port)
	}
	if c.TTL < 0 {
		return fmt.Errorf("redis: ttl must not be negative, got %s", c.TTL)
	}
	return nil
}

func (c *Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
