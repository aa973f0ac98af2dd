package main

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/portaransas"
)

func newExportCmd() *cobra.Command {
	var (
		out       string
		staticDir string
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render every page to static files",
		Long: "Renders the home page, the catalog, every content page and the sitemap into a directory.\n" +
			"Fails if any listed page does not render with status 200.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cfg.ContentDir)
			if err != nil {
				return err
			}
			opts := []portaransas.Option{portaransas.WithoutStorage()}
			if staticDir != "" {
				opts = append(opts, portaransas.WithStaticDir(staticDir))
			}
			app := portaransas.New(cfg, snap, portaransas.DefaultViews(), logger, opts...)
			defer app.Close()

			res, err := app.Export(cmd.Context(), out, workers)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pages and %d assets to %s in %s\n",
				res.Pages, res.Assets, out, res.Duration.Round(time.Millisecond))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "dist", "output directory")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory copied under /public/ ahead of the bundled assets")
	cmd.Flags().IntVar(&workers, "workers", runtime.GOMAXPROCS(0), "pages rendered in parallel")
	return cmd
}
