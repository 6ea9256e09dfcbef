package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataprep/internal/domain"
)

type countingStore struct {
	*FileStore
	mkdirs int
	writes int
}

func newCountingStore() *countingStore {
	c := &countingStore{FileStore: NewFileStore()}
	c.FileStore.mkdirAll = func(path string, perm fs.FileMode) error {
		c.mkdirs++
		return os.MkdirAll(path, perm)
	}
	c.FileStore.writeFile = func(name string, data []byte, perm fs.FileMode) error {
		c.writes++
		return os.WriteFile(name, data, perm)
	}
	return c
}

func TestFileStoreCreatesMissingDirectoryOnce(t *testing.T) {
	store := newCountingStore()
	dir := filepath.Join(t.TempDir(), "out", "train")

	path, err := store.Save(context.Background(), dir, "CROP_240_240_a.png", []byte("one"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CROP_240_240_a.png"), path)
	assert.Equal(t, 1, store.mkdirs)
	assert.Equal(t, 2, store.writes)

	_, err = store.Save(context.Background(), dir, "CROP_240_240_a.png", []byte("two"))
	require.NoError(t, err)
	assert.Equal(t, 1, store.mkdirs, "second write must not create the directory again")
	assert.Equal(t, 3, store.writes)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestFileStoreRetriesExactlyOnce(t *testing.T) {
	store := NewFileStore()
	writes := 0
	store.mkdirAll = func(string, fs.FileMode) error { return nil }
	store.writeFile = func(string, []byte, fs.FileMode) error {
		writes++
		return fs.ErrNotExist
	}

	_, err := store.Save(context.Background(), t.TempDir(), "a.png", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersist)
	assert.Equal(t, 2, writes)
}

func TestFileStoreMkdirFailure(t *testing.T) {
	store := NewFileStore()
	store.mkdirAll = func(string, fs.FileMode) error { return errors.New("read-only") }
	store.writeFile = func(string, []byte, fs.FileMode) error { return fs.ErrNotExist }

	_, err := store.Save(context.Background(), "/nowhere", "a.png", nil)
	assert.ErrorIs(t, err, domain.ErrPersist)
}

func TestFileStoreRejectsUnsafeNames(t *testing.T) {
	store := NewFileStore()
	for _, name := range []string{"", "..", "../a.png", "sub/a.png", `sub\a.png`} {
		_, err := store.Save(context.Background(), t.TempDir(), name, nil)
		assert.ErrorIs(t, err, domain.ErrPersist, name)
	}
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "data/out/train/a.png", objectKey("", "/data/out/train", "a.png"))
	assert.Equal(t, "exports/data/out/a.png", objectKey("exports/", "data/out", "a.png"))
	assert.Equal(t, "a.png", objectKey("", "", "a.png"))
	assert.Equal(t, "out/a.png", objectKey("", "../../out", "a.png"))
}

func TestObjectConfigValidate(t *testing.T) {
	assert.Error(t, ObjectConfig{}.Validate())
	assert.Error(t, ObjectConfig{Endpoint: "http://minio:9000", Bucket: "b"}.Validate())
	assert.Error(t, ObjectConfig{Endpoint: "minio:9000"}.Validate())
	assert.NoError(t, ObjectConfig{Endpoint: "minio:9000", Bucket: "b"}.Validate())
}
