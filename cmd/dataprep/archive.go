package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dataprep/pkg/zip"
)

// ArchiveCommand packs a prepared dataset directory into a zip file.
func ArchiveCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "archive [dir]",
		Short: "Pack the images below a directory into a zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create archive: %w", err)
			}
			n, err := zip.WriteDir(cmd.Context(), args[0], f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				_ = os.Remove(output)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %d images into %s\n", n, output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "dataset.zip", "archive path")
	return cmd
}
