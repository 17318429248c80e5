package applebooks

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/hlts/internal/apperr"
	"github.com/starford/hlts/internal/testutil"
)

func fixture(t *testing.T) string {
	t.Helper()
	return testutil.AppleBooks(t,
		[]testutil.Book{
			{ID: "B2", Title: "Zen", Author: "Pirsig", Path: "/books/zen.epub"},
			{ID: "B1", Title: "Anathem", Author: nil, Path: nil},
		},
		[]testutil.Highlight{
			{AssetID: "B2", UUID: "h3", Text: "quality", Style: 1, Location: "epubcfi(/6/4!/4/2:1)", Created: 612345678.5, Modified: 31536000.0},
			{AssetID: "B1", UUID: "h1", Text: "mathic", Note: "#idea", Style: 3, Created: nil},
			{AssetID: "B1", UUID: "gone", Text: "deleted", Deleted: true},
			{AssetID: "B1", UUID: "bookmark", Text: nil},
		})
}

func openAt(t *testing.T, root, dir string) *DB {
	t.Helper()
	db, err := OpenIn(filepath.Join(root, dir))
	if err != nil {
		t.Fatalf("OpenIn: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSources_OrderedByTitle(t *testing.T) {
	db := openAt(t, fixture(t), LibraryDir)

	got, err := db.Sources(context.Background())
	if err != nil {
		t.Fatalf("Sources: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "B1" || got[1].ID != "B2" {
		t.Errorf("order = %s, %s; want B1, B2", got[0].ID, got[1].ID)
	}
	if got[0].Author != nil || got[0].Path != nil {
		t.Error("NULL columns should scan as nil")
	}
	if got[1].Name == nil || *got[1].Name != "Zen" {
		t.Errorf("name = %v, want Zen", got[1].Name)
	}
}

func TestAnnotations_FiltersAndOrders(t *testing.T) {
	db := openAt(t, fixture(t), AnnotationDir)

	got, err := db.Annotations(context.Background())
	if err != nil {
		t.Fatalf("Annotations: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (deleted and text-less rows excluded)", len(got))
	}
	if got[0].SourceID != "B1" || got[1].SourceID != "B2" {
		t.Errorf("order = %s, %s; want B1, B2", got[0].SourceID, got[1].SourceID)
	}

	h1 := got[0]
	if h1.ID != "h1" || h1.Notes == nil || *h1.Notes != "#idea" {
		t.Errorf("h1 = %+v", h1)
	}
	if h1.DateCreated != nil {
		t.Errorf("NULL date should scan as nil, got %v", h1.DateCreated)
	}
	if h1.Location != nil {
		t.Errorf("NULL location should scan as nil")
	}

	h3 := got[1]
	if h3.Notes != nil {
		t.Errorf("NULL note should scan as nil")
	}
	if h3.Style != int64(1) {
		t.Errorf("style = %#v, want int64(1)", h3.Style)
	}
	if h3.DateCreated != 612345678.5 {
		t.Errorf("date_created = %#v", h3.DateCreated)
	}
	if h3.DateModified != 31536000.0 {
		t.Errorf("integral timestamp = %#v, want 31536000 Apple seconds", h3.DateModified)
	}
}

func TestOpen_ReadOnly(t *testing.T) {
	db := openAt(t, fixture(t), LibraryDir)
	if _, err := db.conn.Exec(`DELETE FROM ZBKLIBRARYASSET`); err == nil {
		t.Error("write through a read-only connection should fail")
	}
}

func TestFindDatabase(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.sqlite", "a.sqlite", "a.sqlite-wal", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := FindDatabase(dir)
	if err != nil {
		t.Fatalf("FindDatabase: %v", err)
	}
	if filepath.Base(got) != "a.sqlite" {
		t.Errorf("got = %q, want a.sqlite", got)
	}

	files, err := DatabaseFiles(dir)
	if err != nil {
		t.Fatalf("DatabaseFiles: %v", err)
	}
	if len(files) != 3 || files[1] != got+"-wal" {
		t.Errorf("files = %v", files)
	}
}

func TestFindDatabase_NotFound(t *testing.T) {
	_, err := FindDatabase(t.TempDir())
	if !errors.Is(err, apperr.ErrDatabaseNotFound) {
		t.Fatalf("err = %v, want ErrDatabaseNotFound", err)
	}
}

func TestIsRunning_UnknownProcess(t *testing.T) {
	running, err := IsRunning(context.Background(), "hlts-no-such-process-"+t.Name())
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if running {
		t.Error("unknown process reported as running")
	}
}

func TestIsRunning_Self(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skip("executable path unavailable")
	}
	// Linux truncates process names to 15 bytes.
	name := filepath.Base(exe)
	if len(name) > 15 {
		t.Skip("test binary name too long to match")
	}
	running, err := IsRunning(context.Background(), name)
	if err != nil {
		t.Fatalf("IsRunning: %v", err)
	}
	if !running {
		t.Errorf("own process %q not found", name)
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatch_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 100*time.Millisecond, logger, func() { calls.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	db := filepath.Join(dir, "AEAnnotation.sqlite")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(db, []byte{byte(i)}, 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	eventually(t, 2*time.Second, 20*time.Millisecond, func() bool {
		return calls.Load() >= 1
	}, "onChange was not called")
	time.Sleep(300 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1 for one burst", n)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Watch did not stop on cancel")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), time.Millisecond, logger, func() {})
	if err == nil {
		t.Error("expected error for missing dir")
	}
}
