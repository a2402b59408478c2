package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFS_ImplementsReader(t *testing.T) {
	var _ Reader = (*LocalFS)(nil)
}

func TestNewLocalFS_MissingDir(t *testing.T) {
	_, err := NewLocalFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLocalFS_Read(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pairs.txt"), []byte("EUR/USD\n"), 0644); err != nil {
		t.Fatal(err)
	}

	fs, err := NewLocalFS(dir)
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	got, err := fs.Read(context.Background(), "pairs.txt")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "EUR/USD\n" {
		t.Errorf("got %q", got)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "nonexistent.txt")
	if exists {
		t.Error("expected false for nonexistent file")
	}

	os.WriteFile(filepath.Join(dir, "exists.txt"), []byte("data"), 0644)
	exists, _ = fs.Exists(ctx, "exists.txt")
	if !exists {
		t.Error("expected true for existing file")
	}
}

func TestLocalFS_RejectsEscape(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	if _, err := fs.Read(context.Background(), "../etc/passwd"); err == nil {
		t.Error("expected error for path outside base directory")
	}
}
