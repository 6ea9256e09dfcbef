package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dataprep/internal/catalog"
	"dataprep/internal/infra"
	"dataprep/internal/service"
)

// CatalogCommand groups catalog maintenance subcommands.
func CatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and maintain the data source and augmentation catalog",
	}
	cmd.AddCommand(catalogImportCommand(), catalogListCommand())
	return cmd
}

func catalogImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [catalog.json|catalog.yaml]",
		Short: "Copy a catalog file into the postgres catalog (DATABASE_URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}
			logger := infra.NewLoggerTo(os.Stderr, cfg.AppEnv)

			file, err := catalog.NewFileCatalog(args[0])
			if err != nil {
				return err
			}
			doc, err := file.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pg, closePool, err := service.OpenPostgresCatalog(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer closePool()

			if err := pg.EnsureSchema(ctx); err != nil {
				return err
			}
			if err := pg.Import(ctx, doc); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d data sources and %d augmentations\n", len(doc.DataSources), len(doc.Augmentations))
			return nil
		},
	}
}

func catalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the data sources of the configured catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return err
			}
			logger := infra.NewLoggerTo(os.Stderr, cfg.AppEnv)

			cat, closeCatalog, err := service.NewCatalog(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeCatalog()

			sources, err := cat.DataSources(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ds := range sources {
				fmt.Fprintf(out, "%s\t%s\t-> %s\n", ds.Name, strings.Join(ds.SourceDirs, ","), ds.TargetDir)
			}
			return nil
		},
	}
}
