package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kbukum/flowkernel/bootstrap"
	"github.com/kbukum/flowkernel/config"
	"github.com/kbukum/flowkernel/engine"
	apperrors "github.com/kbukum/flowkernel/errors"
	"github.com/kbukum/flowkernel/numeric"
	"github.com/kbukum/flowkernel/plan"
)

type runFlags struct {
	pipeline string
	tables   string
	strategy string
	limit    int
	verify   bool
	output   string
}

// runResult is what `flowkernel run` prints.
type runResult[T numeric.Number] struct {
	ExecutionID string        `json:"execution_id,omitempty" yaml:"execution_id,omitempty"`
	Pipeline    string        `json:"pipeline" yaml:"pipeline"`
	Strategy    plan.Strategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	Values      []T           `json:"values" yaml:"values"`
	Equal       *bool         `json:"equal,omitempty" yaml:"equal,omitempty"`
}

func registerRunCmd(rootCmd *cobra.Command) {
	var flags runFlags
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "execute a pipeline once and print its output",
		Long: "Execute a pipeline once and print its output.\n\n" +
			"--pipeline is a pipeline file, or a pipeline name looked up in engine.pipeline_dirs.\n" +
			"--verify runs both strategies and fails unless their outputs match.",
		Example: "  flowkernel run --pipeline filter-double.yaml --tables tables.yaml --strategy push",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRun(cmd, flags)
		},
	}

	runCmd.Flags().StringVarP(&flags.pipeline, "pipeline", "p", "", "pipeline file or name")
	runCmd.Flags().StringVarP(&flags.tables, "tables", "t", "", "table seed file (overrides engine.tables_file)")
	runCmd.Flags().StringVarP(&flags.strategy, "strategy", "s", "", fmt.Sprintf("execution strategy, one of %v (default from the pipeline or config)", plan.Strategies))
	runCmd.Flags().IntVarP(&flags.limit, "limit", "n", 0, "stop after this many values (0 = no limit)")
	runCmd.Flags().BoolVar(&flags.verify, "verify", false, "run both strategies and compare their outputs")
	runCmd.Flags().StringVarP(&flags.output, "output", "o", "json", "output format: json or yaml")
	_ = runCmd.MarkFlagRequired("pipeline")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, flags runFlags) error {
	if flags.output != "json" && flags.output != "yaml" {
		return apperrors.InvalidInput("output", "must be json or yaml")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flags.tables != "" {
		cfg.Engine.TablesFile = flags.tables
	}
	app, err := bootstrap.NewApp(cfg)
	if err != nil {
		return err
	}

	if cfg.Engine.ElementType == "float" {
		return runPipeline[float64](cmd, app, flags)
	}
	return runPipeline[int64](cmd, app, flags)
}

func runPipeline[T numeric.Number](cmd *cobra.Command, app *bootstrap.App[*config.Config], flags runFlags) error {
	k, err := newKernel[T](app)
	if err != nil {
		return err
	}
	p, err := resolvePipeline(app.Cfg, flags.pipeline)
	if err != nil {
		return err
	}
	strategy, err := plan.ParseStrategy(flags.strategy, "")
	if err != nil {
		return err
	}

	return app.RunTask(cmd.Context(), func(ctx context.Context) error {
		var (
			result runResult[T]
			err    error
		)
		if flags.verify {
			result, err = verify(ctx, k.engine, *p)
		} else {
			result, err = execute(ctx, k.engine, *p, strategy, flags.limit)
		}
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), flags.output, result); err != nil {
			return err
		}
		if result.Equal != nil && !*result.Equal {
			return errors.New("pull and push outputs differ")
		}
		return nil
	})
}

func execute[T numeric.Number](ctx context.Context, eng *engine.Engine[T], p plan.Pipeline, s plan.Strategy, limit int) (runResult[T], error) {
	x, err := eng.Build(p, s)
	if err != nil {
		return runResult[T]{}, err
	}
	id := uuid.NewString()
	values, err := x.Execute(ctx, engine.RunOptions{Limit: limit, ExecutionID: id})
	if err != nil {
		return runResult[T]{}, err
	}
	return runResult[T]{ExecutionID: id, Pipeline: p.Name, Strategy: x.Strategy(), Values: values}, nil
}

func verify[T numeric.Number](ctx context.Context, eng *engine.Engine[T], p plan.Pipeline) (runResult[T], error) {
	cmp, err := eng.Compare(ctx, p)
	if err != nil {
		return runResult[T]{}, err
	}
	equal := cmp.Equal
	return runResult[T]{Pipeline: p.Name, Values: cmp.Pull, Equal: &equal}, nil
}
