package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"dataprep/internal/domain"
	"dataprep/internal/infra"
	"dataprep/internal/sqlinline"
)

// PostgresCatalog resolves records from the data_sources and augmentations
// tables. Every lookup hits the database.
type PostgresCatalog struct {
	sql infra.SQLExecutor
}

func NewPostgresCatalog(sql infra.SQLExecutor) *PostgresCatalog {
	return &PostgresCatalog{sql: sql}
}

func (c *PostgresCatalog) DataSource(ctx context.Context, name string) (domain.DataSource, error) {
	row := c.sql.QueryRow(ctx, sqlinline.QSelectDataSource, name)
	var ds domain.DataSource
	if err := row.Scan(&ds.Name, &ds.SourceDirs, &ds.TargetDir); err != nil {
		if infra.IsNoRows(err) {
			return domain.DataSource{}, fmt.Errorf("data source %q: %w", name, domain.ErrNotFound)
		}
		return domain.DataSource{}, fmt.Errorf("select data source %q: %w", name, err)
	}
	return ds, nil
}

func (c *PostgresCatalog) Augmentation(ctx context.Context, kind string) (domain.AugmentationSpec, error) {
	row := c.sql.QueryRow(ctx, sqlinline.QSelectAugmentation, kind)
	var (
		name    string
		spec    domain.AugmentationSpec
		rawArgs []byte
	)
	if err := row.Scan(&name, &spec.Module, &spec.Function, &rawArgs); err != nil {
		if infra.IsNoRows(err) {
			return domain.AugmentationSpec{}, fmt.Errorf("augmentation %q: %w", kind, domain.ErrNotFound)
		}
		return domain.AugmentationSpec{}, fmt.Errorf("select augmentation %q: %w", kind, err)
	}
	spec.Kind = kind
	spec.Args = map[string]any{}
	if len(rawArgs) > 0 {
		if err := json.Unmarshal(rawArgs, &spec.Args); err != nil {
			return domain.AugmentationSpec{}, fmt.Errorf("decode args of %q: %w", name, err)
		}
	}
	return spec, nil
}

// DataSources lists every configured data source ordered by name.
func (c *PostgresCatalog) DataSources(ctx context.Context) ([]domain.DataSource, error) {
	rows, err := c.sql.Query(ctx, sqlinline.QSelectDataSources)
	if err != nil {
		return nil, fmt.Errorf("select data sources: %w", err)
	}
	defer rows.Close()

	var out []domain.DataSource
	for rows.Next() {
		var ds domain.DataSource
		if err := rows.Scan(&ds.Name, &ds.SourceDirs, &ds.TargetDir); err != nil {
			return nil, fmt.Errorf("scan data source: %w", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data sources: %w", err)
	}
	return out, nil
}

// EnsureSchema creates the catalog tables when they are missing.
func (c *PostgresCatalog) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{sqlinline.QCreateDataSources, sqlinline.QCreateAugmentations} {
		if _, err := c.sql.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure catalog schema: %w", err)
		}
	}
	return nil
}

// PutDataSource inserts or replaces a data source record.
func (c *PostgresCatalog) PutDataSource(ctx context.Context, rec DataSourceRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return errors.New("data source name is required")
	}
	_, err := c.sql.Exec(ctx, sqlinline.QUpsertDataSource, rec.Name, rec.SourceDir, rec.TargetDir)
	return err
}

// PutAugmentation inserts or replaces an augmentation record.
func (c *PostgresCatalog) PutAugmentation(ctx context.Context, rec AugmentationRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return errors.New("augmentation name is required")
	}
	args := rec.Args
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	_, err = c.sql.Exec(ctx, sqlinline.QUpsertAugmentation, rec.Name, rec.ModuleName, rec.PreProcessingFunction, raw)
	return err
}

// Import copies every record of a file catalog document into Postgres.
func (c *PostgresCatalog) Import(ctx context.Context, doc Document) error {
	for _, ds := range doc.DataSources {
		if err := c.PutDataSource(ctx, ds); err != nil {
			return fmt.Errorf("import data source %q: %w", ds.Name, err)
		}
	}
	for _, aug := range doc.Augmentations {
		if err := c.PutAugmentation(ctx, aug); err != nil {
			return fmt.Errorf("import augmentation %q: %w", aug.Name, err)
		}
	}
	return nil
}

var _ domain.Catalog = (*PostgresCatalog)(nil)
