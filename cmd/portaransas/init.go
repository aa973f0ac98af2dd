package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eringen/portaransas/content"
)

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init <dir>",
		Short: "Write the bundled content files to a directory for editing",
		Long: "Copies the bundled YAML content into dir. Point PA_CONTENT_DIR (or content_dir in the\n" +
			"config file) at it to serve the edited copy.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args[0], force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	src, err := fs.Sub(content.Embedded, "data")
	if err != nil {
		return err
	}
	names, err := fs.Glob(src, "*.yaml")
	if err != nil {
		return err
	}

	if !force {
		for _, name := range names {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", filepath.Join(dir, name))
			}
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, name := range names {
		data, err := fs.ReadFile(src, name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		outPath := filepath.Join(dir, name)
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outPath, err)
		}
		fmt.Fprintf(w, "  created %s\n", outPath)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Done! Next steps:")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  portaransas validate --content %s\n", dir)
	fmt.Fprintf(w, "  PA_CONTENT_DIR=%s portaransas serve\n", dir)
	return nil
}
