package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"loopsite/application/queries"
	"loopsite/infrastructure/di"
)

func newExportCmd(load containerFunc) *cobra.Command {
	var (
		out         string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render every page to static HTML",
		Long: `Renders every designed page and every published stored page to
<out>/<path>/index.html.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, cleanup, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			written, err := export(cmd.Context(), container, out, concurrency)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d pages to %s\n", written, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "dist", "output directory")
	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "pages rendered in parallel")
	return cmd
}

// export renders each listed page in parallel. The first failure cancels
// the remaining renders.
func export(ctx context.Context, container *di.Container, out string, concurrency int) (int, error) {
	result, err := container.QueryBus.Ask(ctx, queries.ListPagesQuery{})
	if err != nil {
		return 0, err
	}
	listing := result.(*queries.ListPagesResult)

	if concurrency < 1 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var written atomic.Int64
	for _, entry := range listing.Pages {
		path := entry.Path
		g.Go(func() error {
			if err := exportPage(gctx, container, out, path); err != nil {
				return fmt.Errorf("export /%s: %w", path, err)
			}
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(written.Load()), err
	}

	container.Logger.Info("Export finished",
		zap.String("out", out),
		zap.Int64("pages", written.Load()),
	)
	return int(written.Load()), nil
}

func exportPage(ctx context.Context, container *di.Container, out, path string) error {
	result, err := container.QueryBus.Ask(ctx, queries.GetPageQuery{Path: path})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := container.Layout.RenderPage(&buf, result.(*queries.RenderedPage)); err != nil {
		return err
	}

	target := filepath.Join(out, filepath.FromSlash(path), "index.html")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	return os.WriteFile(target, buf.Bytes(), 0o644)
}
