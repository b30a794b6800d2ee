// Package main provides the strand command-line tool.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/strand-ml/strand/backend/cpu"
)

const version = "v0.1.0-dev"

// envLogLevel sets the log level when --log-level is not given.
const envLogLevel = "STRAND_LOG_LEVEL"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "strand",
		Short:         "Tensors and reverse-mode autodiff for Go",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return setupLogging(level)
		},
	}
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error); defaults to $"+envLogLevel+" or info")

	rootCmd.AddCommand(newVersionCmd(), newInfoCmd(), newCheckCmd())
	return rootCmd
}

func setupLogging(level string) error {
	if level == "" {
		level = os.Getenv(envLogLevel)
	}
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "strand %s (%s)\n", version, runtime.Version())
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show CPU features and kernel configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg := cpu.ConfigFromEnv()
			d := cpu.NewWithConfig(cfg)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "version:   %s\n", version)
			fmt.Fprintf(out, "platform:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "features:  %s\n", cpu.DetectFeatures())
			fmt.Fprintf(out, "parallel:  %t\n", cfg.Enabled)
			fmt.Fprintf(out, "workers:   %d\n", cfg.NumWorkers)
			fmt.Fprintf(out, "min chunk: %d\n", cfg.MinChunkSize)
			fmt.Fprintf(out, "kernels:   %d\n", d.Table().Len())
		},
	}
}
