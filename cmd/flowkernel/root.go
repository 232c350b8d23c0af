package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/flowkernel/config"
	"github.com/kbukum/flowkernel/version"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flowkernel",
		Short:         "evaluate numeric dataflow pipelines",
		Long:          "flowkernel evaluates scan, filter, map and collect pipelines over named numeric tables\nusing either pull-based or push-based execution.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", "", "path to a configuration file (default: search ./, ./config, /etc/flowkernel)")
	rootCmd.PersistentFlags().String("env-file", "", "path to a .env file loaded before FLOWKERNEL_* variables are read")

	registerRunCmd(rootCmd)
	registerServeCmd(rootCmd)
	registerVersionCmd(rootCmd)
	return rootCmd
}

func registerVersionCmd(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print the flowkernel version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeOutput(cmd.OutOrStdout(), "json", info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return err
		},
	}
	versionCmd.Flags().Bool("json", false, "print build information as JSON")
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the configuration selected by the persistent flags.
// Defaults are applied and the result validated.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	var opts []config.LoaderOption
	if envFile, _ := cmd.Flags().GetString("env-file"); envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	cfg, err := config.Load(path, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Version == "dev" {
		cfg.Version = version.Version
	}
	return cfg, nil
}
