package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/flowkernel/bootstrap"
	"github.com/kbukum/flowkernel/config"
	"github.com/kbukum/flowkernel/engine"
	"github.com/kbukum/flowkernel/numeric"
	"github.com/kbukum/flowkernel/observability"
	"github.com/kbukum/flowkernel/plan"
	"github.com/kbukum/flowkernel/table"
)

// kernel holds the per-process state shared by run and serve: the table
// store, the observability providers and, once started, the engine.
type kernel[T numeric.Number] struct {
	app       *bootstrap.App[*config.Config]
	store     *table.Store[T]
	providers *observability.Providers
	engine    *engine.Engine[T]
}

// newKernel seeds a store from the configured tables file and registers the
// hooks that start observability and build the engine.
func newKernel[T numeric.Number](app *bootstrap.App[*config.Config]) (*kernel[T], error) {
	k := &kernel[T]{app: app, store: table.NewStore[T]()}
	if path := app.Cfg.Engine.TablesFile; path != "" {
		names, err := table.LoadFile(path, k.store)
		if err != nil {
			return nil, err
		}
		app.Logger.Debug("tables loaded", map[string]interface{}{
			"file":   path,
			"tables": names,
		})
	}

	app.OnStart(k.start)
	app.OnStop(k.stop)
	return k, nil
}

func (k *kernel[T]) start(ctx context.Context) error {
	cfg := k.app.Cfg
	providers, err := observability.Setup(ctx, cfg.Observability.Setup(cfg.ServiceConfig))
	if err != nil {
		return fmt.Errorf("observability setup: %w", err)
	}
	k.providers = providers

	strategy, err := plan.ParseStrategy(cfg.Engine.DefaultStrategy, plan.Pull)
	if err != nil {
		return err
	}
	opts := []engine.Option{
		engine.WithLogger(k.app.Logger),
		engine.WithDefaultStrategy(strategy),
		engine.WithTracing(cfg.Observability.TracingEnabled),
	}
	if providers.Metrics != nil {
		opts = append(opts, engine.WithMetrics(providers.Metrics))
	}
	k.engine = engine.New(k.store, opts...)
	return nil
}

func (k *kernel[T]) stop(ctx context.Context) error {
	if k.providers == nil {
		return nil
	}
	return k.providers.Shutdown(ctx)
}

// catalog returns the named-pipeline loader for the configured directories,
// or nil when none are configured.
func catalog(cfg *config.Config) *plan.FilePipelineLoader {
	if len(cfg.Engine.PipelineDirs) == 0 {
		return nil
	}
	return plan.NewFilePipelineLoader(cfg.Engine.PipelineDirs...)
}

// resolvePipeline loads ref as a file path when it names an existing file,
// otherwise as a pipeline name in the configured directories.
func resolvePipeline(cfg *config.Config, ref string) (*plan.Pipeline, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return plan.LoadFile(ref)
	}
	loader := catalog(cfg)
	if loader == nil {
		return plan.LoadFile(ref)
	}
	return loader.Load(ref)
}

// writeOutput renders v as indented JSON or as YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
