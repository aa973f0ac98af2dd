// Command portaransas serves, exports and maintains the brokerage site.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/eringen/portaransas"
	"github.com/eringen/portaransas/content"
	"github.com/eringen/portaransas/observability"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	configPath string
	envFlag    string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:           "portaransas",
		Short:         "Marketing site for a Port Aransas real estate brokerage",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (environment variables override it)")
	rootCmd.PersistentFlags().StringVar(&envFlag, "env", "", `environment; "dev" enables console logging`)

	rootCmd.AddCommand(
		newServeCmd(),
		newExportCmd(),
		newValidateCmd(),
		newInitCmd(),
		newOptimizeImagesCmd(),
		newVersionCmd(),
	)
	return rootCmd.ExecuteContext(ctx)
}

// setup loads the config and installs the process logger.
func setup() (portaransas.SiteConfig, zerolog.Logger, error) {
	cfg, err := portaransas.LoadConfig(configPath)
	if err != nil {
		return portaransas.SiteConfig{}, zerolog.Nop(), err
	}
	if envFlag != "" {
		cfg.Env = envFlag
	}
	logger := observability.NewLogger(cfg.Env)
	log.Logger = logger
	return cfg, logger, nil
}

func loadSnapshot(dir string) (*content.Snapshot, error) {
	if dir == "" {
		return content.LoadDefault()
	}
	snap, err := content.LoadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("content %s: %w", dir, err)
	}
	return snap, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portaransas %s\n", version)
		},
	}
}
