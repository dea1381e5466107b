// Package logger provides structured logging on top of Uber's Zap.
//
// NewLoggerClient returns a *LoggerClient that writes JSON entries to stderr
// with ISO8601 timestamps and the pid/service fields attached. Every method
// takes a message, an optional error and any number of field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Info, ServiceName: "rag"})
//	log.Info("Inserted records", nil, map[string]interface{}{
//		"collection": "test",
//		"partition":  "vdb",
//		"count":      3,
//	})
//
// The *WithContext variants add trace_id and span_id from the OpenTelemetry
// span in ctx when Config.EnableTracing is set.
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_ENABLE_TRACING=true      # attach trace/span ids
//	LOGGER_SERVICE_NAME=rag         # "service" field
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule, // provides *LoggerClient and logger.Logger
//		fx.Supply(logger.DefaultConfig()),
//	)
//
// All methods are safe for concurrent use.
package logger
