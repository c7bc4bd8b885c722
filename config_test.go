package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeChunkConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.ini")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadChunkSize(t *testing.T) {
	path := writeChunkConfig(t, "diabatic = 4096\nadiabatic = 256\n")

	n, err := loadChunkSize(path, "diabatic")
	if err != nil {
		t.Fatalf("loadChunkSize: %v", err)
	}
	if n != 4096 {
		t.Errorf("chunk size = %d, want 4096", n)
	}
}

func TestLoadChunkSizeMissingLabel(t *testing.T) {
	path := writeChunkConfig(t, "diabatic = 4096\n")

	_, err := loadChunkSize(path, "adiabatic")
	if err == nil {
		t.Fatal("missing label accepted")
	}
	if !errors.Is(err, errConfig) {
		t.Errorf("got %v, want errConfig", err)
	}
}

func TestLoadChunkSizeRejectsNonPositive(t *testing.T) {
	for _, content := range []string{"case = 0\n", "case = -4\n", "case = many\n"} {
		path := writeChunkConfig(t, content)
		if _, err := loadChunkSize(path, "case"); err == nil {
			t.Errorf("config %q accepted", content)
		}
	}
}

func TestLoadChunkSizeMissingFile(t *testing.T) {
	_, err := loadChunkSize(filepath.Join(t.TempDir(), "absent.ini"), "diabatic")
	if err == nil {
		t.Fatal("missing file accepted")
	}
	if !errors.Is(err, errConfig) {
		t.Errorf("got %v, want errConfig", err)
	}
}
