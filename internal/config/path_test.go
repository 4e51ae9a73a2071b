package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultDataDirXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/custom/data")
	if got := DefaultDataDir(); got != "/custom/data/tinyssb-bridge" {
		t.Fatalf("got %s", got)
	}
}

func TestDefaultDataDirWithoutHome(t *testing.T) {
	t.Setenv("HOME", "")
	t.Setenv("XDG_DATA_HOME", "")
	got := DefaultDataDir()
	if got == "" {
		t.Fatal("empty data dir")
	}
	if !filepath.IsAbs(got) && got != "./data" {
		t.Fatalf("expected an absolute path or ./data, got %s", got)
	}
}

func TestDefaultDataDirNamesTheBridge(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	got := strings.ToLower(DefaultDataDir())
	if got != "./data" && !strings.Contains(got, "tinyssb") {
		t.Fatalf("unexpected data dir %s", got)
	}
}

func TestIsDir(t *testing.T) {
	dir := t.TempDir()
	if !isDir(dir) {
		t.Fatalf("%s should be a dir", dir)
	}
	if isDir(filepath.Join(dir, "missing")) {
		t.Fatal("missing path reported as dir")
	}
}
