// Command sitectl validates, seeds, renders and exports site content.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"loopsite/infrastructure/config"
	"loopsite/infrastructure/di"
)

// containerFunc builds the dependency container for commands that need it
type containerFunc func(ctx context.Context) (*di.Container, func(), error)

func loadContainer(ctx context.Context) (*di.Container, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return di.InitializeContainer(ctx, cfg)
}

func newRootCmd(out io.Writer, load containerFunc) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Manage Loop Revenue System site content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	root.AddCommand(
		newValidateCmd(),
		newSeedCmd(load),
		newRenderCmd(load),
		newExportCmd(load),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdout, loadContainer).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
