// Package config loads flowkernel configuration.
//
// Values come from a YAML file and from environment variables; a .env file
// found next to the config is loaded into the environment first:
//
//	cfg, err := config.Load("flowkernel.yaml")
//
// Environment variables override file values using the FLOWKERNEL_ prefix
// and underscore-separated paths, e.g. FLOWKERNEL_SERVER_PORT=9090 or
// FLOWKERNEL_ENGINE_DEFAULT_STRATEGY=push.
package config
