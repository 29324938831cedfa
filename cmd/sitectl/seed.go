package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"loopsite/infrastructure/config"
	"loopsite/infrastructure/persistence/seed"
)

func newSeedCmd(load containerFunc) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a seed directory into the configured page store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, cleanup, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if container.Config.StorageDriver == config.StorageMemory {
				container.Logger.Warn("Seeding the memory store only lasts for this process")
			}

			bundle, err := seed.Load(dir)
			if err != nil {
				return err
			}
			if err := bundle.Check(container.Registry); err != nil {
				return err
			}
			if err := seed.Apply(cmd.Context(), container.Storage.Store, bundle); err != nil {
				return err
			}

			container.Logger.Info("Seed applied",
				zap.String("dir", dir),
				zap.String("storage", container.Config.StorageDriver),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d pages and %d slot documents from %s\n",
				len(bundle.Pages), len(bundle.Slots), dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "content", "seed directory")
	return cmd
}
