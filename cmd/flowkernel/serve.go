package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kbukum/flowkernel/bootstrap"
	"github.com/kbukum/flowkernel/config"
	"github.com/kbukum/flowkernel/numeric"
	"github.com/kbukum/flowkernel/server"
	"github.com/kbukum/flowkernel/version"
)

func registerServeCmd(rootCmd *cobra.Command) {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the table and pipeline API over HTTP",
		Long: "Serve the table and pipeline API over HTTP until SIGINT or SIGTERM.\n\n" +
			"Tables are seeded from engine.tables_file and named pipelines are read from engine.pipeline_dirs.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	serveCmd.Flags().String("host", "", "listen host (overrides server.host)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Server.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.Server.Port = port
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	if cfg.Engine.ElementType == "float" {
		return serve[float64](cmd.Context(), app)
	}
	return serve[int64](cmd.Context(), app)
}

func serve[T numeric.Number](ctx context.Context, app *bootstrap.App[*config.Config]) error {
	k, err := newKernel[T](app)
	if err != nil {
		return err
	}
	cfg := app.Cfg
	srv := server.New(cfg.Server, app.Logger)

	app.OnStart(func(ctx context.Context) error {
		var pipelines server.PipelineCatalog
		if loader := catalog(cfg); loader != nil {
			pipelines = loader
		}
		api := server.NewAPI(k.engine, pipelines, app.Logger)

		srv.ApplyMiddleware()
		srv.RegisterDefaultEndpoints(cfg.Name, cfg.Version, map[string]any{
			"element_type":     cfg.Engine.ElementType,
			"default_strategy": cfg.Engine.DefaultStrategy,
			"build":            version.Get(),
		}, api.TablesHealth())
		api.Register(srv.GinEngine())
		return srv.Start(ctx)
	})
	app.OnStop(srv.Stop)

	return app.Run(ctx)
}
