package pathutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestIsFilesystemRoot(t *testing.T) {
	root := string(filepath.Separator)
	if runtime.GOOS == "windows" {
		root = `C:\`
	}
	if !IsFilesystemRoot(root) {
		t.Fatalf("IsFilesystemRoot(%q) = false, want true", root)
	}
	if IsFilesystemRoot(t.TempDir()) {
		t.Fatal("IsFilesystemRoot(tempdir) = true, want false")
	}
}

func TestResolveDir(t *testing.T) {
	dir := t.TempDir()
	want, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}

	got, err := ResolveDir(dir)
	if err != nil {
		t.Fatalf("ResolveDir() error = %v", err)
	}
	if got != want {
		t.Fatalf("ResolveDir() = %q, want %q", got, want)
	}

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWD) })
	if err := os.Mkdir("widgets", 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err = ResolveDir("widgets")
	if err != nil {
		t.Fatalf("ResolveDir(relative) error = %v", err)
	}
	if got != filepath.Join(want, "widgets") {
		t.Fatalf("ResolveDir(relative) = %q, want %q", got, filepath.Join(want, "widgets"))
	}

	if _, err := ResolveDir(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("ResolveDir(missing) expected error")
	}

	file := filepath.Join(dir, "plugin.py")
	if err := os.WriteFile(file, []byte("# plugin\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := ResolveDir(file); err == nil {
		t.Fatal("ResolveDir(file) expected error")
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	if !IsDir(dir) {
		t.Fatalf("IsDir(%q) = false", dir)
	}
	if IsDir(filepath.Join(dir, "nope")) {
		t.Fatal("IsDir(missing) = true")
	}
}
