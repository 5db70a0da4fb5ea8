// Package httpserver wraps http.Server with graceful shutdown, signal
// handling and option-based configuration.
package httpserver
