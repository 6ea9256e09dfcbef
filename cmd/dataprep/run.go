package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dataprep/internal/dispatch"
	"dataprep/internal/infra"
	"dataprep/internal/service"
)

// RunCommand executes a batch file in the foreground and waits for it.
func RunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [batch.json]",
		Short: "Run a batch of augmentation tasks and wait for completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			logger := infra.NewLoggerTo(os.Stderr, cfg.AppEnv)

			body, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read batch: %w", err)
			}
			tasks, err := dispatch.ParseBatch(body)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, err := service.New(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			d := dispatch.New(ctx, svc.Expander, svc.Executor, logger)
			batch, err := d.Submit(tasks)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), batch.Status())
			summary := batch.Wait()
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("interrupted: %w", err)
			}
			return nil
		},
	}
	return cmd
}
