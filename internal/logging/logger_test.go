package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitializeRequiresWorkspace(t *testing.T) {
	if err := Initialize(""); err == nil {
		t.Fatal("Initialize(\"\") should fail so callers can surface it")
	}
}

func TestInitializeProductionModeIsSilent(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	// No config file means production mode: no logs directory created.
	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if IsDebugMode() {
		t.Error("debug mode enabled without config")
	}
	if _, err := os.Stat(filepath.Join(ws, ".dealdesk", "logs")); !os.IsNotExist(err) {
		t.Error("logs directory created in production mode")
	}

	// Logging calls are no-ops, not panics.
	Engine("dropped in production mode")
	Get(CategoryRunner).Warn("dropped in production mode")
}

func TestInitializeDebugModeWritesCategoryFiles(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	dir := filepath.Join(ws, ".dealdesk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := []byte("logging:\n  debug_mode: true\n  level: debug\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if !IsDebugMode() {
		t.Fatal("debug mode not enabled from config")
	}

	Engine("wave 1: 5 instances")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".dealdesk", "logs"))
	if err != nil {
		t.Fatalf("logs directory missing: %v", err)
	}
	found := false
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".log" {
			found = true
		}
	}
	if !found {
		t.Error("no category log file written in debug mode")
	}
}

func TestCategoryToggle(t *testing.T) {
	ws := t.TempDir()
	t.Cleanup(CloseAll)

	dir := filepath.Join(ws, ".dealdesk")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	content := []byte("logging:\n  debug_mode: true\n  categories:\n    spawner: false\n")
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	if err := Initialize(ws); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if IsCategoryEnabled(CategorySpawner) {
		t.Error("disabled category reported enabled")
	}
	if !IsCategoryEnabled(CategoryEngine) {
		t.Error("unlisted category should default to enabled")
	}
}
