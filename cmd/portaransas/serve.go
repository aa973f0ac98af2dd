package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/portaransas"
)

func newServeCmd() *cobra.Command {
	var staticDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			snap, err := loadSnapshot(cfg.ContentDir)
			if err != nil {
				return err
			}

			var opts []portaransas.Option
			if staticDir != "" {
				opts = append(opts, portaransas.WithStaticDir(staticDir))
			}
			app := portaransas.New(cfg, snap, portaransas.DefaultViews(), logger, opts...)
			defer app.Close()

			ctx := cmd.Context()
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := app.Echo.Shutdown(shutdownCtx); err != nil {
					logger.Error().Err(err).Msg("shutdown")
				}
			}()
			return app.Start()
		},
	}
	cmd.Flags().StringVar(&staticDir, "static", "public", "directory served under /public/ ahead of the bundled assets")
	return cmd
}
