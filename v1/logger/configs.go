package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// Config holds the logger settings.
type Config struct {
	// Level is one of "debug", "info", "warning", "error". Anything else maps to info.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// EnableTracing adds trace_id and span_id to entries written through the
	// *WithContext methods.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	// Encoding is "json" or "console". Empty means json.
	Encoding string `yaml:"encoding" envconfig:"LOGGER_ENCODING"`

	// ServiceName is attached to every entry as the "service" field.
	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`
}

// DefaultConfig returns an info-level config for the rag service.
func DefaultConfig() Config {
	return Config{
		Level:       Info,
		ServiceName: "rag",
	}
}
