package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/eringen/portaransas/imaging"
)

func newOptimizeImagesCmd() *cobra.Command {
	var (
		out  string
		opts imaging.Options
	)
	cmd := &cobra.Command{
		Use:   "optimize-images <src>",
		Short: "Resize and re-encode listing photos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup()
			if err != nil {
				return err
			}
			results, err := imaging.OptimizeDir(cmd.Context(), args[0], out, opts, logger)
			if err != nil {
				return err
			}
			var before, after int64
			for _, r := range results {
				before += r.Before
				after += r.After
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Optimized %d images: %s -> %s\n",
				len(results), humanize.Bytes(uint64(before)), humanize.Bytes(uint64(after)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "public/img", "output directory")
	cmd.Flags().IntVar(&opts.MaxWidth, "width", imaging.DefaultMaxWidth, "maximum width in pixels")
	cmd.Flags().IntVar(&opts.Quality, "quality", imaging.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().IntVar(&opts.Concurrency, "workers", 0, "images processed in parallel (default GOMAXPROCS)")
	return cmd
}
