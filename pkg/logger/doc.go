// Package logger builds configured slog.Logger instances for the service.
//
// Production gets JSON output at info level for log aggregation, development
// gets text output at debug level. Static attributes (service name,
// environment) are attached at construction. The attr helpers keep attribute
// keys consistent across packages.
package logger
