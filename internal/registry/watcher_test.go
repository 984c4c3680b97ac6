package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const overlayWithClimate = `{
	"version": "1",
	"evaluators": [
		{
			"id": "climate_specialist",
			"domain": "Climate Tech",
			"keywords": ["carbon", "climate"],
			"framing": "You are a climate tech specialist."
		}
	]
}`

const overlayWithSpace = `{
	"version": "1",
	"evaluators": [
		{
			"id": "space_specialist",
			"domain": "Space & Launch",
			"keywords": ["satellite", "orbital"],
			"framing": "You are a space tech specialist."
		}
	]
}`

// invalid: entry with no predicate mode set.
const overlayInvalid = `{
	"version": "1",
	"evaluators": [
		{"id": "broken", "domain": "X", "framing": "no predicate"}
	]
}`

func startWatcher(t *testing.T, path string) (*OverlayWatcher, chan *Registry) {
	t.Helper()

	reloads := make(chan *Registry, 8)
	w, err := NewOverlayWatcher(path, func(reg *Registry) {
		reloads <- reg
	})
	if err != nil {
		t.Fatalf("NewOverlayWatcher() error: %v", err)
	}
	w.debounceDur = 50 * time.Millisecond // Keep the test fast

	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	t.Cleanup(w.Stop)
	return w, reloads
}

func awaitReload(t *testing.T, reloads chan *Registry) *Registry {
	t.Helper()
	select {
	case reg := <-reloads:
		return reg
	case <-time.After(5 * time.Second):
		t.Fatal("reload callback never fired")
		return nil
	}
}

func TestOverlayWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluators.json")
	if err := os.WriteFile(path, []byte(overlayWithClimate), 0644); err != nil {
		t.Fatal(err)
	}
	_, reloads := startWatcher(t, path)

	if err := os.WriteFile(path, []byte(overlayWithSpace), 0644); err != nil {
		t.Fatal(err)
	}

	reg := awaitReload(t, reloads)
	if _, ok := reg.Get("space_specialist"); !ok {
		t.Error("rebuilt registry missing the rewritten overlay entry")
	}
	if reg.Len() != len(BuiltinDefinitions)+1 {
		t.Errorf("rebuilt registry Len() = %d, want %d", reg.Len(), len(BuiltinDefinitions)+1)
	}
}

func TestOverlayWatcherRejectsInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluators.json")
	if err := os.WriteFile(path, []byte(overlayWithClimate), 0644); err != nil {
		t.Fatal(err)
	}
	_, reloads := startWatcher(t, path)

	// A rewrite that fails validation must be discarded without a callback.
	if err := os.WriteFile(path, []byte(overlayInvalid), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case reg := <-reloads:
		t.Fatalf("invalid overlay produced a reload (%d definitions)", reg.Len())
	case <-time.After(600 * time.Millisecond):
	}

	// The watcher survives the rejection and picks up the next valid write.
	if err := os.WriteFile(path, []byte(overlayWithClimate), 0644); err != nil {
		t.Fatal(err)
	}
	reg := awaitReload(t, reloads)
	if _, ok := reg.Get("climate_specialist"); !ok {
		t.Error("watcher did not recover after an invalid overlay")
	}
}

func TestOverlayWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "evaluators.json")
	if err := os.WriteFile(path, []byte(overlayWithClimate), 0644); err != nil {
		t.Fatal(err)
	}
	_, reloads := startWatcher(t, path)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("unrelated"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-reloads:
		t.Fatal("sibling file write triggered a reload")
	case <-time.After(600 * time.Millisecond):
	}
}

func TestOverlayWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluators.json")
	if err := os.WriteFile(path, []byte(overlayWithClimate), 0644); err != nil {
		t.Fatal(err)
	}

	w, _ := startWatcher(t, path)
	if !w.IsWatching() {
		t.Fatal("watcher not running after Start")
	}

	w.Stop()
	if w.IsWatching() {
		t.Error("watcher still running after Stop")
	}
	// Stop again is a no-op, not a panic.
	w.Stop()
}

func TestOverlayWatcherStartIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evaluators.json")
	if err := os.WriteFile(path, []byte(overlayWithClimate), 0644); err != nil {
		t.Fatal(err)
	}

	w, _ := startWatcher(t, path)
	if err := w.Start(context.Background()); err != nil {
		t.Fatalf("second Start() error: %v", err)
	}
	if !w.IsWatching() {
		t.Error("watcher stopped by repeated Start")
	}
}
