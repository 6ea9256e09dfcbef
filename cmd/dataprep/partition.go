package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dataprep/internal/split"
)

// PartitionCommand splits a finished output directory into train, test and
// validation sets.
func PartitionCommand() *cobra.Command {
	var (
		train float64
		test  float64
		seed  uint64
		apply bool
	)
	cmd := &cobra.Command{
		Use:   "partition [dir]",
		Short: "Partition the images of a directory into train/test/validation sets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}
			sets, err := split.NewPartitioner(seed).Partition(cmd.Context(), dir, train, test)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "train: %d\ntest: %d\nvalidation: %d\n", len(sets.Train), len(sets.Test), len(sets.Validation))
			if !apply {
				return nil
			}
			if err := split.Apply(cmd.Context(), dir, sets); err != nil {
				return fmt.Errorf("apply partition: %w", err)
			}
			fmt.Fprintf(out, "moved files under %s\n", dir)
			return nil
		},
	}
	cmd.Flags().Float64Var(&train, "train", 70, "train percentage")
	cmd.Flags().Float64Var(&test, "test", 20, "test percentage")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (defaults to the current time)")
	cmd.Flags().BoolVar(&apply, "apply", false, "move files into train/test/validation sub-directories")
	return cmd
}
