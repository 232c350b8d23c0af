// Package errors provides the structured error type shared by every
// flowkernel package. Errors carry a machine-readable code, an HTTP status
// mapping for the server surface, and optional details.
package errors
