package main

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 32, 32))); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRunCommandProcessesBatch(t *testing.T) {
	root := t.TempDir()
	raw := filepath.Join(root, "raw")
	target := filepath.Join(root, "out")
	writePNG(t, filepath.Join(raw, "frame.png"))

	catalogPath := filepath.Join(root, "catalog.yaml")
	catalogDoc := "data_sources:\n" +
		"  - name: MotoGP\n" +
		"    source_dir: [" + raw + "]\n" +
		"    target_dir: " + target + "\n" +
		"augmentations:\n" +
		"  - name: FLIP\n" +
		"    module_name: flip\n" +
		"    pre_processing_function: image_flipping\n"
	if err := os.WriteFile(catalogPath, []byte(catalogDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	batchPath := filepath.Join(root, "batch.json")
	if err := os.WriteFile(batchPath, []byte(`[{"name": "MotoGP", "augmentations": [{"FLIP": {"direction": "vertical"}}]}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("APP_ENV", "test")
	t.Setenv("CATALOG_BACKEND", "file")
	t.Setenv("CATALOG_PATH", catalogPath)
	t.Setenv("OUTPUT_BACKEND", "filesystem")
	t.Setenv("CASCADE_MODE", "last")

	out, err := execute(t, "run", batchPath)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 tasks started") || !strings.Contains(out, "1 images persisted") {
		t.Fatalf("unexpected output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(target, "FLIP_vertical_frame.png")); err != nil {
		t.Fatalf("output image missing: %v", err)
	}
}

func TestRunCommandRejectsIncompleteBatch(t *testing.T) {
	batchPath := filepath.Join(t.TempDir(), "batch.json")
	if err := os.WriteFile(batchPath, []byte(`[{"name": "MotoGP"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CATALOG_BACKEND", "file")
	t.Setenv("CATALOG_PATH", filepath.Join(t.TempDir(), "catalog.json"))
	t.Setenv("OUTPUT_BACKEND", "filesystem")
	t.Setenv("CASCADE_MODE", "last")

	if _, err := execute(t, "run", batchPath); err == nil {
		t.Fatal("expected rejection")
	}
}

func TestPartitionAndArchiveCommands(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		writePNG(t, filepath.Join(dir, "img_"+string(rune('a'+i))+".png"))
	}

	out, err := execute(t, "partition", dir, "--train", "70", "--test", "20", "--seed", "3", "--apply")
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if !strings.Contains(out, "test: 2") {
		t.Fatalf("unexpected partition output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "validation")); err != nil {
		t.Fatalf("validation dir missing: %v", err)
	}

	zipPath := filepath.Join(t.TempDir(), "dataset.zip")
	out, err = execute(t, "archive", dir, "-o", zipPath)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.Contains(out, "archived 10 images") {
		t.Fatalf("unexpected archive output: %s", out)
	}
}
