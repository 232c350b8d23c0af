// Package logger provides structured logging for flowkernel using zerolog.
//
// It supports JSON and console output, log level configuration, and
// component-scoped loggers with structured fields. The execution kernel only
// logs at debug level; presenting errors to users is left to the server and
// CLI.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("engine")
//	log.Debug("run completed", logger.Fields("strategy", "pull", "items", 3))
package logger
