package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "dataprep",
		Short:         "Prepare augmented image datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		RunCommand(),
		PartitionCommand(),
		ArchiveCommand(),
		CatalogCommand(),
	)
	return root
}
