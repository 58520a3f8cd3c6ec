package locallog_test

import (
	"os"
	"strings"
	"testing"

	"github.com/nectime/nectime/internal/locallog"
	"github.com/nectime/nectime/internal/model"
)

func TestLoadMissingFile(t *testing.T) {
	lg, err := locallog.Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(lg.Entries) != 0 {
		t.Errorf("entries = %d, want 0", len(lg.Entries))
	}
}

func TestAppendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries := []model.LogEntry{
		{ID: "a", Date: "2026-03-02", FolderType: model.TypePro, DurationSeconds: 3600},
		{ID: "b", Date: "2026-03-03", FolderType: model.TypePerso, DurationSeconds: 1800},
	}
	for _, e := range entries {
		if err := locallog.Append(dir, e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	lg, err := locallog.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(lg.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(lg.Entries))
	}
	// Append preserves order.
	if lg.Entries[0].ID != "a" || lg.Entries[1].ID != "b" {
		t.Errorf("order = %s, %s", lg.Entries[0].ID, lg.Entries[1].ID)
	}
}

func TestLoadCorruptFileIsBackedUp(t *testing.T) {
	dir := t.TempDir()
	path := locallog.FilePath(dir)
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := locallog.Load(dir)
	if err == nil {
		t.Fatal("expected an error for corrupt JSON")
	}
	if !strings.Contains(err.Error(), ".corrupt") {
		t.Errorf("err = %v, want backup path mentioned", err)
	}
	if _, statErr := os.Stat(path + ".corrupt"); statErr != nil {
		t.Errorf("backup file missing: %v", statErr)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("corrupt file still in place")
	}
}

func TestUnpushedFilters(t *testing.T) {
	lg := locallog.Log{Entries: []model.LogEntry{
		{ID: "a", Date: "2026-03-02"},
		{ID: "b", Date: "2026-03-02", Pushed: true},
		{ID: "c", Date: "2026-03-03"},
	}}

	if got := lg.Unpushed(""); len(got) != 2 {
		t.Errorf("Unpushed(all) = %d entries, want 2", len(got))
	}
	got := lg.Unpushed("2026-03-02")
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Unpushed(day) = %v", got)
	}
}

func TestForDate(t *testing.T) {
	lg := locallog.Log{Entries: []model.LogEntry{
		{ID: "a", Date: "2026-03-02"},
		{ID: "b", Date: "2026-03-02", Pushed: true},
		{ID: "c", Date: "2026-03-03"},
	}}

	got := lg.ForDate("2026-03-02")
	if len(got) != 2 {
		t.Errorf("ForDate = %d entries, want pushed and unpushed", len(got))
	}
	if got := lg.ForDate(""); len(got) != 3 {
		t.Errorf("ForDate(all) = %d entries, want 3", len(got))
	}
}
