package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/tui-skybattle/internal/level"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestBestTimeMissing(t *testing.T) {
	store := openTestStore(t)

	secs, ok, err := store.BestTime("first-contact")
	if err != nil {
		t.Fatalf("BestTime() failed: %v", err)
	}
	if ok || secs != 0 {
		t.Errorf("BestTime() = %v, %v; want no record", secs, ok)
	}
}

func TestSetBestTimeReplaces(t *testing.T) {
	store := openTestStore(t)

	if err := store.SetBestTime("first-contact", 42.5); err != nil {
		t.Fatalf("SetBestTime() failed: %v", err)
	}
	if err := store.SetBestTime("first-contact", 30.25); err != nil {
		t.Fatalf("SetBestTime() failed: %v", err)
	}
	if err := store.SetBestTime("wingmen", 90); err != nil {
		t.Fatalf("SetBestTime() failed: %v", err)
	}

	secs, ok, err := store.BestTime("first-contact")
	if err != nil || !ok {
		t.Fatalf("BestTime() = %v, %v", ok, err)
	}
	if secs != 30.25 {
		t.Errorf("Expected best time 30.25, got %v", secs)
	}

	all, err := store.BestTimes()
	if err != nil {
		t.Fatalf("BestTimes() failed: %v", err)
	}
	if len(all) != 2 || all[0].LevelID != "first-contact" || all[1].LevelID != "wingmen" {
		t.Errorf("BestTimes() = %+v", all)
	}

	if err := store.ClearBestTime("wingmen"); err != nil {
		t.Fatalf("ClearBestTime() failed: %v", err)
	}
	if _, ok, _ := store.BestTime("wingmen"); ok {
		t.Error("Expected wingmen record to be cleared")
	}
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := store.SetBestTime("flagship", 120); err != nil {
		t.Fatalf("SetBestTime() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	secs, ok, err := store.BestTime("flagship")
	if err != nil || !ok || secs != 120 {
		t.Errorf("BestTime() after reopen = %v, %v, %v", secs, ok, err)
	}
}

func TestAttempts(t *testing.T) {
	store := openTestStore(t)

	results := []level.Result{
		{Level: "first-contact", Won: false, Elapsed: 12.5, Kills: 3, Ticks: 250},
		{Level: "first-contact", Won: true, Elapsed: 40, Kills: 10, Ticks: 800},
		{Level: "wingmen", Won: true, Elapsed: 60, Kills: 13, Ticks: 1200},
	}
	for _, r := range results {
		if _, err := store.RecordAttempt(r); err != nil {
			t.Fatalf("RecordAttempt() failed: %v", err)
		}
	}

	attempts, err := store.RecentAttempts("first-contact", 10)
	if err != nil {
		t.Fatalf("RecentAttempts() failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("Expected 2 attempts, got %d", len(attempts))
	}
	// Newest first
	if !attempts[0].Won || attempts[0].Kills != 10 || attempts[0].Ticks != 800 {
		t.Errorf("Expected the winning attempt first, got %+v", attempts[0])
	}
	if attempts[1].Won {
		t.Errorf("Expected the lost attempt second, got %+v", attempts[1])
	}

	stats, err := store.GetLevelStats("first-contact")
	if err != nil {
		t.Fatalf("GetLevelStats() failed: %v", err)
	}
	if stats.Attempts != 2 || stats.Wins != 1 || stats.TotalKills != 13 {
		t.Errorf("GetLevelStats() = %+v", stats)
	}

	empty, err := store.GetLevelStats("flagship")
	if err != nil {
		t.Fatalf("GetLevelStats() failed: %v", err)
	}
	if empty.Attempts != 0 || !empty.LastPlayed.IsZero() {
		t.Errorf("Expected empty stats, got %+v", empty)
	}
}

func TestAttemptRecorder(t *testing.T) {
	store := openTestStore(t)

	rec := store.AttemptRecorder(nil)
	rec.OnTick(level.Snapshot{}, level.TickStats{})
	rec.OnFinish(level.Result{Level: "wingmen", Won: true, Elapsed: 55})

	attempts, err := store.RecentAttempts("wingmen", 0)
	if err != nil {
		t.Fatalf("RecentAttempts() failed: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Elapsed != 55 {
		t.Errorf("Expected one recorded attempt, got %+v", attempts)
	}
}

func TestPreferences(t *testing.T) {
	store := openTestStore(t)

	if _, ok, err := store.Preference("skin"); err != nil || ok {
		t.Fatalf("Preference() on empty store = %v, %v", ok, err)
	}
	if err := store.SetPreference("skin", "classic"); err != nil {
		t.Fatalf("SetPreference() failed: %v", err)
	}
	if err := store.SetPreference("skin", "neon"); err != nil {
		t.Fatalf("SetPreference() failed: %v", err)
	}

	v, ok, err := store.Preference("skin")
	if err != nil || !ok || v != "neon" {
		t.Errorf("Preference() = %q, %v, %v; want neon", v, ok, err)
	}
}
