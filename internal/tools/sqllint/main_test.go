package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGo(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLintCatalogQueries(t *testing.T) {
	if code := run([]string{"../../sqlinline"}, &bytes.Buffer{}); code != 0 {
		t.Fatalf("sqlinline has marker violations")
	}
}

func TestLintReportsMissingAndDuplicateMarkers(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "a.go", "package q\n\nconst QOne = `--sql 11111111-2222-4333-8444-555555555555\nselect 1;\n`\n")
	writeGo(t, dir, "b.go", "package q\n\nconst QCopy = `--sql 11111111-2222-4333-8444-555555555555\nselect 2;\n`\n\nconst QBare = `create table t (id int);`\n\nconst Greeting = \"hello\"\n")

	violations, err := lint([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(violations) != 2 {
		t.Fatalf("got %d violations, want 2: %+v", len(violations), violations)
	}

	var stderr bytes.Buffer
	if code := run([]string{dir}, &stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	out := stderr.String()
	if !strings.Contains(out, "QBare") || !strings.Contains(out, "marker already used by QOne") {
		t.Fatalf("unexpected report:\n%s", out)
	}
}
