package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringen/portaransas/content"
)

func newValidateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check content files for duplicate slugs, missing fields and broken links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cfg, _, err := setup()
				if err != nil {
					return err
				}
				dir = cfg.ContentDir
			}
			snap, err := loadSnapshot(dir)
			if err != nil {
				return reportProblems(cmd, err)
			}
			w := cmd.OutOrStdout()
			for _, kind := range content.Kinds() {
				fmt.Fprintf(w, "%-14s %d\n", kind, len(snap.Keys(kind)))
			}
			fmt.Fprintln(w, "content OK")
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "content", "d", "", "content directory (default: config content_dir, else the bundled content)")
	return cmd
}

// reportProblems prints every joined validation error on its own line.
func reportProblems(cmd *cobra.Command, err error) error {
	lines := strings.Split(err.Error(), "\n")
	w := cmd.ErrOrStderr()
	for _, l := range lines {
		fmt.Fprintf(w, "  - %s\n", l)
	}
	return fmt.Errorf("%d content problem(s)", len(lines))
}
