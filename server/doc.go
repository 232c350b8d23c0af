// Package server exposes flowkernel over HTTP using Gin, with HTTP/2
// cleartext (h2c) support.
//
// # Middleware
//
// Built-in middleware (server/middleware) wraps every route:
//
//   - RequestID: X-Request-Id generation and propagation
//   - Tracing: an http.request span per request
//   - RequestLogger: request logging with duration tracking
//   - Recovery: panic recovery with structured logging
//   - BodySizeLimit: request body size limits
//
// # Endpoints
//
//   - GET  /health: aggregated component health
//   - GET  /alive: liveness probe
//   - GET  /info: version and engine settings
//   - GET  /v1/tables, GET|PUT /v1/tables/:name: table registration
//   - GET  /v1/pipelines: named pipelines from the configured directories
//   - POST /v1/run: execute a pipeline under one strategy
//   - POST /v1/compare: execute under both strategies and compare
//
// Errors are rendered as {"error": {"code", "message", "retryable",
// "details"}} with the status carried by the AppError.
package server
