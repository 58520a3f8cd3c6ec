package consolidate_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nectime/nectime/internal/consolidate"
	"github.com/nectime/nectime/internal/model"
)

func intPtr(i int) *int { return &i }

func entry(id, date string, projectID *int, name, activity string, seconds int64) model.LogEntry {
	return model.LogEntry{
		ID:              id,
		Date:            date,
		FolderType:      model.TypePro,
		ProjectID:       projectID,
		ProjectName:     name,
		Activity:        activity,
		DurationSeconds: seconds,
	}
}

func TestConsolidateGroupsByDateProjectActivity(t *testing.T) {
	entries := []model.LogEntry{
		entry("a", "2026-03-02", intPtr(1), "alpha", "development", 3600),
		entry("b", "2026-03-02", intPtr(1), "alpha", "development", 1800),
		entry("c", "2026-03-02", intPtr(1), "alpha", "review", 600),
		entry("d", "2026-03-03", intPtr(1), "alpha", "development", 900),
	}

	aggs := consolidate.Consolidate(entries, 0)
	if len(aggs) != 3 {
		t.Fatalf("aggregates = %d, want 3", len(aggs))
	}
	if aggs[0].RawSeconds != 5400 {
		t.Errorf("first group raw = %d, want 5400", aggs[0].RawSeconds)
	}
	if got := aggs[0].EntryIDs; len(got) != 2 {
		t.Errorf("first group entry IDs = %v", got)
	}
	// Ordered by date, project name, activity.
	order := make([]string, len(aggs))
	for i, a := range aggs {
		order[i] = a.Date + "/" + a.Activity
	}
	want := []string{"2026-03-02/development", "2026-03-02/review", "2026-03-03/development"}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestConsolidateShrinksOverCapDays(t *testing.T) {
	// 5h + 3h + 2h = 10h against an 8h cap: every group of that day is
	// scaled by 0.8, and the shrunk total lands on the cap.
	cap := int64(8 * 3600)
	entries := []model.LogEntry{
		entry("a", "2026-03-02", intPtr(1), "alpha", "development", 5*3600),
		entry("b", "2026-03-02", intPtr(2), "beta", "development", 3*3600),
		entry("c", "2026-03-02", intPtr(3), "gamma", "review", 2*3600),
	}

	aggs := consolidate.Consolidate(entries, cap)
	var total int64
	for _, a := range aggs {
		if a.Scale != 0.8 {
			t.Errorf("%s scale = %v, want 0.8", a.ProjectName, a.Scale)
		}
		total += a.ShrunkSeconds
	}
	if diff := total - cap; diff < -int64(len(aggs)) || diff > int64(len(aggs)) {
		t.Errorf("shrunk total = %d, want %d within rounding", total, cap)
	}
	for _, a := range aggs {
		want := int64(float64(a.RawSeconds) * 0.8)
		if a.ShrunkSeconds != want {
			t.Errorf("%s shrunk = %d, want %d", a.ProjectName, a.ShrunkSeconds, want)
		}
	}
}

func TestConsolidateUnderCapIsUntouched(t *testing.T) {
	entries := []model.LogEntry{
		entry("a", "2026-03-02", intPtr(1), "alpha", "development", 3*3600),
		entry("b", "2026-03-02", intPtr(2), "beta", "development", 2*3600),
	}

	aggs := consolidate.Consolidate(entries, 8*3600)
	for _, a := range aggs {
		if a.Scale != 1.0 {
			t.Errorf("%s scale = %v, want 1.0", a.ProjectName, a.Scale)
		}
		if a.ShrunkSeconds != a.RawSeconds {
			t.Errorf("%s shrunk = %d, raw = %d", a.ProjectName, a.ShrunkSeconds, a.RawSeconds)
		}
	}
}

func TestConsolidateCapBindsPerDay(t *testing.T) {
	// One day over cap, another under: only the former shrinks.
	entries := []model.LogEntry{
		entry("a", "2026-03-02", intPtr(1), "alpha", "development", 10*3600),
		entry("b", "2026-03-03", intPtr(1), "alpha", "development", 4*3600),
	}

	aggs := consolidate.Consolidate(entries, 8*3600)
	scales := consolidate.DayScales(aggs)
	if scales["2026-03-02"] != 0.8 {
		t.Errorf("over-cap day scale = %v, want 0.8", scales["2026-03-02"])
	}
	if scales["2026-03-03"] != 1.0 {
		t.Errorf("under-cap day scale = %v, want 1.0", scales["2026-03-03"])
	}
}

func TestConsolidateRecomputesFromScratch(t *testing.T) {
	// Shrinking is a view over the raw entries: adding a later entry and
	// re-running yields the same result as consolidating everything at once.
	cap := int64(8 * 3600)
	first := []model.LogEntry{
		entry("a", "2026-03-02", intPtr(1), "alpha", "development", 6*3600),
	}
	second := append(first,
		entry("b", "2026-03-02", intPtr(2), "beta", "development", 6*3600),
	)

	before := consolidate.Consolidate(first, cap)
	if before[0].ShrunkSeconds != 6*3600 {
		t.Errorf("single entry shrunk = %d, want untouched", before[0].ShrunkSeconds)
	}
	after := consolidate.Consolidate(second, cap)
	for _, a := range after {
		if a.ShrunkSeconds != 4*3600 {
			t.Errorf("%s shrunk = %d, want %d", a.ProjectName, a.ShrunkSeconds, 4*3600)
		}
	}
}

func TestAggregateTimeWindow(t *testing.T) {
	t0 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	a := entry("a", "2026-03-02", intPtr(1), "alpha", "development", 3600)
	a.Begin, a.End = t0.Add(2*time.Hour), t0.Add(3*time.Hour)
	b := entry("b", "2026-03-02", intPtr(1), "alpha", "development", 3600)
	b.Begin, b.End = t0, t0.Add(time.Hour)

	aggs := consolidate.Consolidate([]model.LogEntry{a, b}, 0)
	if len(aggs) != 1 {
		t.Fatalf("aggregates = %d, want 1", len(aggs))
	}
	if !aggs[0].FirstBegin.Equal(t0) {
		t.Errorf("FirstBegin = %v, want %v", aggs[0].FirstBegin, t0)
	}
	if !aggs[0].LastEnd.Equal(t0.Add(3 * time.Hour)) {
		t.Errorf("LastEnd = %v, want %v", aggs[0].LastEnd, t0.Add(3*time.Hour))
	}
}

func TestPushable(t *testing.T) {
	tests := []struct {
		name string
		typ  model.FolderType
		id   *int
		want bool
	}{
		{"pro with project", model.TypePro, intPtr(1), true},
		{"pro without project", model.TypePro, nil, false},
		{"perso", model.TypePerso, intPtr(1), false},
		{"pending", model.TypePending, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := consolidate.Aggregate{FolderType: tt.typ, ProjectID: tt.id}
			if a.Pushable() != tt.want {
				t.Errorf("Pushable() = %v, want %v", a.Pushable(), tt.want)
			}
		})
	}
}

func TestDescriptionDedupesAndCapsCommits(t *testing.T) {
	a := consolidate.Aggregate{
		Descriptions: []string{"wrote the parser", "wrote the parser", "added tests"},
	}
	for i := 0; i < 12; i++ {
		a.Commits = append(a.Commits, fmt.Sprintf("%07x commit %d", i, i))
	}

	desc := a.Description()
	if strings.Count(desc, "wrote the parser") != 1 {
		t.Errorf("duplicate description survived:\n%s", desc)
	}
	if !strings.Contains(desc, "Commits:") {
		t.Errorf("missing commit block:\n%s", desc)
	}
	if !strings.Contains(desc, "... and 2 more") {
		t.Errorf("missing overflow summary:\n%s", desc)
	}
	if strings.Contains(desc, "commit 10") {
		t.Errorf("commit beyond the cap was quoted:\n%s", desc)
	}
}

func TestDescriptionEmptyAggregate(t *testing.T) {
	if got := (consolidate.Aggregate{}).Description(); got != "" {
		t.Errorf("Description() = %q, want empty", got)
	}
}
