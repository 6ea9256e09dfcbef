package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprep/internal/domain"
)

type stubExecutor struct {
	scan  func(dest ...any) error
	execs []execCall
	err   error
}

type execCall struct {
	query string
	args  []any
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execs = append(s.execs, execCall{query: query, args: args})
	return pgconn.CommandTag{}, s.err
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	return stubRow{scan: s.scan}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

func TestPostgresCatalogDataSource(t *testing.T) {
	exec := &stubExecutor{scan: func(dest ...any) error {
		*dest[0].(*string) = "MotoGP"
		*dest[1].(*[]string) = []string{"/data/raw"}
		*dest[2].(*string) = "/data/out"
		return nil
	}}
	cat := NewPostgresCatalog(exec)

	ds, err := cat.DataSource(context.Background(), "MotoGP")
	require.NoError(t, err)
	assert.Equal(t, domain.DataSource{Name: "MotoGP", SourceDirs: []string{"/data/raw"}, TargetDir: "/data/out"}, ds)
}

func TestPostgresCatalogAugmentation(t *testing.T) {
	exec := &stubExecutor{scan: func(dest ...any) error {
		*dest[0].(*string) = "CROP"
		*dest[1].(*string) = "crop"
		*dest[2].(*string) = "image_cropping"
		*dest[3].(*[]byte) = []byte(`{"crop_type": "left_down_center"}`)
		return nil
	}}
	cat := NewPostgresCatalog(exec)

	spec, err := cat.Augmentation(context.Background(), "crop")
	require.NoError(t, err)
	assert.Equal(t, "crop", spec.Kind)
	assert.Equal(t, "crop/image_cropping", spec.StageRef())
	assert.Equal(t, "left_down_center", spec.Args["crop_type"])
}

func TestPostgresCatalogNoRowsIsNotFound(t *testing.T) {
	cat := NewPostgresCatalog(&stubExecutor{})

	_, err := cat.DataSource(context.Background(), "MotoGP")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = cat.Augmentation(context.Background(), "CROP")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresCatalogScanErrorIsNotNotFound(t *testing.T) {
	cat := NewPostgresCatalog(&stubExecutor{scan: func(dest ...any) error {
		return errors.New("connection reset")
	}})

	_, err := cat.DataSource(context.Background(), "MotoGP")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestPostgresCatalogImport(t *testing.T) {
	exec := &stubExecutor{}
	cat := NewPostgresCatalog(exec)

	err := cat.Import(context.Background(), Document{
		DataSources: []DataSourceRecord{{Name: "MotoGP", SourceDir: []string{"/raw"}, TargetDir: "/out"}},
		Augmentations: []AugmentationRecord{{
			Name: "CROP", ModuleName: "crop", PreProcessingFunction: "image_cropping",
		}},
	})
	require.NoError(t, err)
	require.Len(t, exec.execs, 2)
	assert.True(t, strings.Contains(exec.execs[0].query, "insert into data_sources"))
	assert.True(t, strings.Contains(exec.execs[1].query, "insert into augmentations"))
	assert.Equal(t, []byte(`{}`), exec.execs[1].args[3])
}

func TestPostgresCatalogPutRequiresName(t *testing.T) {
	cat := NewPostgresCatalog(&stubExecutor{})
	assert.Error(t, cat.PutDataSource(context.Background(), DataSourceRecord{}))
	assert.Error(t, cat.PutAugmentation(context.Background(), AugmentationRecord{}))
}

func TestPostgresCatalogEnsureSchema(t *testing.T) {
	exec := &stubExecutor{}
	require.NoError(t, NewPostgresCatalog(exec).EnsureSchema(context.Background()))
	require.Len(t, exec.execs, 2)
	assert.Contains(t, exec.execs[0].query, "create table if not exists data_sources")
	assert.Contains(t, exec.execs[1].query, "create table if not exists augmentations")

	failing := &stubExecutor{err: errors.New("permission denied")}
	assert.ErrorContains(t, NewPostgresCatalog(failing).EnsureSchema(context.Background()), "permission denied")
}

func TestPostgresCatalogDataSourcesQueryError(t *testing.T) {
	_, err := NewPostgresCatalog(&stubExecutor{}).DataSources(context.Background())
	assert.ErrorContains(t, err, "select data sources")
}
