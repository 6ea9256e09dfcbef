// Package catalog resolves data sources and augmentation records by name.
// Two backends exist: a JSON/YAML file re-read on every lookup and a Postgres
// store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"dataprep/internal/domain"
)

// DataSourceRecord is the on-disk shape of a data source.
type DataSourceRecord struct {
	Name      string   `json:"name" yaml:"name"`
	SourceDir []string `json:"source_dir" yaml:"source_dir"`
	TargetDir string   `json:"target_dir" yaml:"target_dir"`
}

// AugmentationRecord is the on-disk shape of an augmentation.
type AugmentationRecord struct {
	Name                   string         `json:"name" yaml:"name"`
	ModuleName             string         `json:"module_name" yaml:"module_name"`
	PreProcessingFunction  string         `json:"pre_processing_function" yaml:"pre_processing_function"`
	PostProcessingFunction string         `json:"post_processing_function,omitempty" yaml:"post_processing_function,omitempty"`
	Args                   map[string]any `json:"args,omitempty" yaml:"args,omitempty"`
}

// Document is the whole catalog file.
type Document struct {
	DataSources   []DataSourceRecord   `json:"data_sources" yaml:"data_sources"`
	Augmentations []AugmentationRecord `json:"augmentations" yaml:"augmentations"`
}

func (r DataSourceRecord) toDomain() domain.DataSource {
	return domain.DataSource{
		Name:       r.Name,
		SourceDirs: append([]string(nil), r.SourceDir...),
		TargetDir:  r.TargetDir,
	}
}

// FileCatalog reads a catalog document from disk on every lookup, so edits
// take effect without a restart.
type FileCatalog struct {
	path string
}

// NewFileCatalog returns a catalog backed by path. The format follows the
// extension: .yaml/.yml is YAML, anything else JSON.
func NewFileCatalog(path string) (*FileCatalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("catalog: path is required")
	}
	return &FileCatalog{path: path}, nil
}

// Path returns the configured document path.
func (c *FileCatalog) Path() string {
	return c.path
}

// Load reads and decodes the catalog document.
func (c *FileCatalog) Load() (Document, error) {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return Document{}, fmt.Errorf("catalog: read %s: %w", c.path, err)
	}
	var doc Document
	switch strings.ToLower(filepath.Ext(c.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &doc)
	default:
		err = json.Unmarshal(raw, &doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("catalog: decode %s: %w", c.path, err)
	}
	return doc, nil
}

// DataSources lists every data source in document order.
func (c *FileCatalog) DataSources(ctx context.Context) ([]domain.DataSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, err := c.Load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.DataSource, 0, len(doc.DataSources))
	for _, rec := range doc.DataSources {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (c *FileCatalog) DataSource(ctx context.Context, name string) (domain.DataSource, error) {
	if err := ctx.Err(); err != nil {
		return domain.DataSource{}, err
	}
	doc, err := c.Load()
	if err != nil {
		return domain.DataSource{}, err
	}
	for _, rec := range doc.DataSources {
		if rec.Name == name {
			return rec.toDomain(), nil
		}
	}
	return domain.DataSource{}, fmt.Errorf("data source %q: %w", name, domain.ErrNotFound)
}

func (c *FileCatalog) Augmentation(ctx context.Context, kind string) (domain.AugmentationSpec, error) {
	if err := ctx.Err(); err != nil {
		return domain.AugmentationSpec{}, err
	}
	doc, err := c.Load()
	if err != nil {
		return domain.AugmentationSpec{}, err
	}
	if rec, ok := findAugmentation(doc.Augmentations, kind); ok {
		return domain.AugmentationSpec{
			Kind:     kind,
			Module:   rec.ModuleName,
			Function: rec.PreProcessingFunction,
			Args:     domain.MergeArgs(rec.Args, nil),
		}, nil
	}
	return domain.AugmentationSpec{}, fmt.Errorf("augmentation %q: %w", kind, domain.ErrNotFound)
}

// findAugmentation prefers an exact name match and falls back to a
// case-folded one, so "crop" resolves a record named "CROP".
func findAugmentation(records []AugmentationRecord, kind string) (AugmentationRecord, bool) {
	for _, rec := range records {
		if rec.Name == kind {
			return rec, true
		}
	}
	fold := cases.Fold()
	want := fold.String(kind)
	for _, rec := range records {
		if fold.String(rec.Name) == want {
			return rec, true
		}
	}
	return AugmentationRecord{}, false
}

var _ domain.Catalog = (*FileCatalog)(nil)
