package metrics

// Config defines the Prometheus metrics server settings.
type Config struct {
	// Address is the listen address of the /metrics server, e.g. ":9090".
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// ServiceName is added as a constant "service" label to every metric.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`

	// EnableDefaultCollectors registers the Go runtime, process and build info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`
}

// DefaultConfig returns the default metrics config.
func DefaultConfig() Config {
	return Config{
		Address:                 ":9090",
		ServiceName:             "rag",
		EnableDefaultCollectors: true,
	}
}
