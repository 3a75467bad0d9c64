package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
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
	dbPath := filepath.Join(tmpDir, "test.db")

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

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveSession(Session{
		SimID:    "bounce",
		Mode:     ModeBench,
		Preset:   "smooth",
		ExitCode: 3,
		Ticks:    600,
		Frames:   580,
		SimTime:  10 * time.Second,
		WallTime: 10250 * time.Millisecond,
		Score:    42,
	})
	if err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("expected a uuid, got %q", id)
	}

	sess, err := store.SessionByID(id)
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if sess == nil {
		t.Fatal("SessionByID() returned nil for a saved session")
	}

	if sess.SimID != "bounce" || sess.Mode != ModeBench || sess.Preset != "smooth" {
		t.Errorf("unexpected identity fields %+v", sess)
	}
	if sess.ExitCode != 3 || sess.Ticks != 600 || sess.Frames != 580 || sess.Score != 42 {
		t.Errorf("unexpected counters %+v", sess)
	}
	if sess.SimTime != 10*time.Second || sess.WallTime != 10250*time.Millisecond {
		t.Errorf("unexpected durations sim=%v wall=%v", sess.SimTime, sess.WallTime)
	}
	if sess.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}
}

func TestStoreSessionByIDMissing(t *testing.T) {
	store := openTestStore(t)

	sess, err := store.SessionByID("does-not-exist")
	if err != nil {
		t.Fatalf("SessionByID() failed: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil, got %+v", sess)
	}
}

func TestStoreSaveRequiresSim(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.SaveSession(Session{}); err == nil {
		t.Error("SaveSession() without a sim id should fail")
	}
}

func TestStoreKeepsExplicitID(t *testing.T) {
	store := openTestStore(t)

	id, err := store.SaveSession(Session{ID: "fixed", SimID: "orbit"})
	if err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}
	if id != "fixed" {
		t.Errorf("id = %q, expected fixed", id)
	}

	sess, _ := store.SessionByID("fixed")
	if sess == nil || sess.Mode != ModeLocal {
		t.Errorf("expected default mode %q, got %+v", ModeLocal, sess)
	}

	if _, err := store.SaveSession(Session{ID: "fixed", SimID: "orbit"}); err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestStoreRecentSessions(t *testing.T) {
	store := openTestStore(t)

	for i := 1; i <= 5; i++ {
		if _, err := store.SaveSession(Session{SimID: "bounce", Ticks: uint64(i)}); err != nil {
			t.Fatalf("SaveSession() failed: %v", err)
		}
	}
	if _, err := store.SaveSession(Session{SimID: "orbit", Ticks: 100}); err != nil {
		t.Fatalf("SaveSession() failed: %v", err)
	}

	recent, err := store.RecentSessions("bounce", 3)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(recent))
	}
	// Newest first
	for i, want := range []uint64{5, 4, 3} {
		if recent[i].Ticks != want {
			t.Errorf("recent[%d].Ticks = %d, expected %d", i, recent[i].Ticks, want)
		}
	}

	all, err := store.RecentSessions("", 0)
	if err != nil {
		t.Fatalf("RecentSessions() failed: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("expected 6 sessions, got %d", len(all))
	}
	if all[0].SimID != "orbit" {
		t.Errorf("newest session should be orbit, got %s", all[0].SimID)
	}
}

func TestStoreSummary(t *testing.T) {
	store := openTestStore(t)

	sessions := []Session{
		{SimID: "bounce", Ticks: 120, Frames: 100, SimTime: 2 * time.Second, WallTime: 2 * time.Second, Score: 7},
		{SimID: "bounce", Ticks: 240, Frames: 200, SimTime: 4 * time.Second, WallTime: 4 * time.Second, Score: 3},
		{SimID: "orbit", Ticks: 60, Frames: 60, SimTime: time.Second, WallTime: time.Second},
	}
	for _, sess := range sessions {
		if _, err := store.SaveSession(sess); err != nil {
			t.Fatalf("SaveSession() failed: %v", err)
		}
	}

	sum, err := store.Summary("bounce")
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if sum.Sessions != 2 || sum.Ticks != 360 || sum.Frames != 300 || sum.BestScore != 7 {
		t.Errorf("unexpected summary %+v", sum)
	}
	if sum.SimTime != 6*time.Second {
		t.Errorf("SimTime = %v, expected 6s", sum.SimTime)
	}
	if got := sum.AverageTickRate(); got != 60 {
		t.Errorf("AverageTickRate() = %v, expected 60", got)
	}
	if sum.LastPlayed.IsZero() {
		t.Error("LastPlayed was not set")
	}

	empty, err := store.Summary("unknown")
	if err != nil {
		t.Fatalf("Summary() failed: %v", err)
	}
	if empty.Sessions != 0 || empty.AverageFrameRate() != 0 {
		t.Errorf("expected empty summary, got %+v", empty)
	}

	all, err := store.Summaries()
	if err != nil {
		t.Fatalf("Summaries() failed: %v", err)
	}
	if len(all) != 2 || all[0].SimID != "bounce" || all[1].SimID != "orbit" {
		t.Errorf("unexpected summaries %+v", all)
	}
}

func TestStoreClearSessions(t *testing.T) {
	store := openTestStore(t)

	store.SaveSession(Session{SimID: "bounce"})
	store.SaveSession(Session{SimID: "bounce"})
	store.SaveSession(Session{SimID: "orbit"})

	if err := store.ClearSessions("bounce"); err != nil {
		t.Fatalf("ClearSessions() failed: %v", err)
	}

	bounce, _ := store.RecentSessions("bounce", 10)
	if len(bounce) != 0 {
		t.Errorf("expected 0 bounce sessions after clear, got %d", len(bounce))
	}
	orbit, _ := store.RecentSessions("orbit", 10)
	if len(orbit) != 1 {
		t.Errorf("orbit sessions should survive, got %d", len(orbit))
	}

	if err := store.ClearSessions(""); err != nil {
		t.Fatalf("ClearSessions() failed: %v", err)
	}
	all, _ := store.RecentSessions("", 10)
	if len(all) != 0 {
		t.Errorf("expected no sessions, got %d", len(all))
	}
}

func TestStoreNestedPath(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
