package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })
}

func TestLoadConfigDefaultsWithNoProjectFile(t *testing.T) {
	chdir(t, t.TempDir())
	projectFile = ".livyc"

	cfg, err := loadConfig(rootCmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Encoding != "UTF8" {
		t.Fatalf("Encoding = %q, want %q", cfg.Encoding, "UTF8")
	}
}

func TestLoadConfigProjectFileThenFlagOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	if err := os.WriteFile(filepath.Join(dir, ".livyc"), []byte("encoding = Latin-1\ncompress = true\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	projectFile = ".livyc"

	if err := rootCmd.Flags().Set("encoding", "UTF8"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	t.Cleanup(func() {
		rootCmd.Flags().Set("encoding", "")
		rootCmd.Flags().Lookup("encoding").Changed = false
	})

	cfg, err := loadConfig(rootCmd)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Encoding != "UTF8" {
		t.Fatalf("explicit --encoding should win over the project file, got %q", cfg.Encoding)
	}
	if !cfg.Compress {
		t.Fatalf("project file's compress=true should survive when --compress wasn't set")
	}
}
