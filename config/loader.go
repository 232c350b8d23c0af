package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/kbukum/flowkernel/errors"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver finds config and env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, or searches the
// standard locations for whichever was not given.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configCandidates(serviceName))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envCandidates(serviceName))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

// configCandidates lists, in priority order, where a service's config file
// may live.
func configCandidates(serviceName string) []string {
	dirs := []string{
		".",
		"./config",
		filepath.Join(".", "cmd", serviceName),
		filepath.Join("/etc", serviceName),
	}
	var paths []string
	for _, dir := range dirs {
		for _, base := range []string{serviceName, "config"} {
			for _, ext := range []string{".yaml", ".yml"} {
				paths = append(paths, filepath.Join(dir, base+ext))
			}
		}
	}
	return paths
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, dir := range []string{".", "./config", filepath.Join(".", "cmd", serviceName)} {
		paths = append(paths,
			filepath.Join(dir, ".env."+serviceName),
			filepath.Join(dir, ".env"),
		)
	}
	return paths
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // explicit config file; must exist when set
	EnvFile    string // explicit .env file
	EnvPrefix  string // defaults to the upper-cased service name plus "_"
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix sets the prefix environment overrides must carry.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// LoadConfig loads configuration for a service into cfg. Sources, lowest
// precedence first: the YAML config file, then environment variables
// (including those from a .env file) named PREFIX_SECTION_KEY, e.g.
// FLOWKERNEL_SERVER_PORT.
func LoadConfig(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{
		FileSystem: OSFileSystem{},
		EnvPrefix:  envPrefix(serviceName),
	}
	for _, opt := range opts {
		opt(&lc)
	}

	if lc.ConfigFile != "" && !lc.FileSystem.Exists(lc.ConfigFile) {
		return apperrors.NotFound("config file", lc.ConfigFile)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", files.ConfigFile, err)
		}
	}

	if files.EnvFile != "" {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", files.EnvFile, err)
		}
	}
	bindEnvVars(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	return nil
}

func envPrefix(serviceName string) string {
	return strings.ToUpper(strings.ReplaceAll(serviceName, "-", "_")) + "_"
}

// bindEnvVars sets every PREFIX_* variable in env on v under each nested
// key it could stand for.
func bindEnvVars(v *viper.Viper, prefix string, env []string) {
	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		for _, variant := range generateEnvKeyVariants(strings.TrimPrefix(key, prefix)) {
			v.Set(variant, value)
		}
	}
}

// generateEnvKeyVariants maps an env key onto the config keys it may name.
// Underscores are ambiguous, so every split point is tried:
//
//	SERVER_PORT             -> [server_port, server.port]
//	ENGINE_DEFAULT_STRATEGY -> [engine_default_strategy, engine.default.strategy,
//	                            engine.default_strategy, engine_default.strategy]
func generateEnvKeyVariants(envKey string) []string {
	key := strings.ToLower(envKey)
	parts := strings.Split(key, "_")
	variants := []string{key}
	seen := map[string]bool{key: true}
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			variants = append(variants, k)
		}
	}
	if len(parts) > 1 {
		add(strings.Join(parts, "."))
	}
	for i := 1; i < len(parts); i++ {
		head, tail := parts[:i], strings.Join(parts[i:], "_")
		add(strings.Join(head, ".") + "." + tail)
		add(strings.Join(head, "_") + "." + tail)
	}
	return variants
}
