// Package consolidate turns unpushed log entries into day-capped aggregates.
//
// Aggregates are a transient view: shrinking never mutates the underlying
// log, and re-running after new entries recomputes everything from scratch.
package consolidate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nectime/nectime/internal/model"
)

// maxCommitLines caps the number of commit references quoted in a push
// description; the remainder is summarized.
const maxCommitLines = 10

// Aggregate is the sum of unpushed entries sharing (date, project, activity).
type Aggregate struct {
	Date        string
	ProjectID   *int
	ProjectName string
	FolderType  model.FolderType
	Activity    string

	// RawSeconds is the pre-shrink sum; ShrunkSeconds the pushable amount
	// after the day cap was applied; Scale the ratio between them.
	RawSeconds    int64
	ShrunkSeconds int64
	Scale         float64

	FirstBegin   time.Time
	LastEnd      time.Time
	Commits      []string
	Descriptions []string
	EntryIDs     []string
}

// Pushable reports whether the aggregate is eligible for submission.
// Only pro folders with a resolved project are ever pushed.
func (a Aggregate) Pushable() bool {
	return a.FolderType == model.TypePro && a.ProjectID != nil
}

// Description builds the timesheet description: deduplicated manual
// descriptions first, then the session commits.
func (a Aggregate) Description() string {
	var parts []string
	parts = append(parts, dedupe(a.Descriptions)...)

	commits := dedupe(a.Commits)
	if len(commits) > 0 {
		if len(parts) > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, "Commits:")
		n := len(commits)
		if n > maxCommitLines {
			n = maxCommitLines
		}
		for _, c := range commits[:n] {
			parts = append(parts, "  "+c)
		}
		if len(commits) > maxCommitLines {
			parts = append(parts, fmt.Sprintf("  ... and %d more", len(commits)-maxCommitLines))
		}
	}
	return strings.Join(parts, "\n")
}

// Consolidate groups entries by (date, project, activity), sums durations
// and applies the daily cap: whenever a date's total across all of its
// groups exceeds capSeconds, every group of that date is scaled by
// cap/day_total. The cap binds the day total, not individual groups.
// The result is ordered by date, project name, then activity.
func Consolidate(entries []model.LogEntry, capSeconds int64) []Aggregate {
	type key struct {
		date     string
		project  string
		activity string
	}

	groups := map[key]*Aggregate{}
	for _, e := range entries {
		k := key{date: e.Date, project: projectKey(e.ProjectID), activity: e.Activity}
		g, ok := groups[k]
		if !ok {
			g = &Aggregate{
				Date:        e.Date,
				ProjectID:   e.ProjectID,
				ProjectName: e.ProjectName,
				FolderType:  e.FolderType,
				Activity:    e.Activity,
				FirstBegin:  e.Begin,
				LastEnd:     e.End,
			}
			groups[k] = g
		}
		g.RawSeconds += e.DurationSeconds
		g.Commits = append(g.Commits, e.Commits...)
		if e.Description != "" {
			g.Descriptions = append(g.Descriptions, e.Description)
		}
		g.EntryIDs = append(g.EntryIDs, e.ID)
		if e.Begin.Before(g.FirstBegin) {
			g.FirstBegin = e.Begin
		}
		if e.End.After(g.LastEnd) {
			g.LastEnd = e.End
		}
	}

	dayTotals := map[string]int64{}
	for _, g := range groups {
		dayTotals[g.Date] += g.RawSeconds
	}

	out := make([]Aggregate, 0, len(groups))
	for _, g := range groups {
		g.Scale = 1.0
		if total := dayTotals[g.Date]; capSeconds > 0 && total > capSeconds {
			g.Scale = float64(capSeconds) / float64(total)
		}
		g.ShrunkSeconds = int64(math.Round(float64(g.RawSeconds) * g.Scale))
		out = append(out, *g)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].ProjectName != out[j].ProjectName {
			return out[i].ProjectName < out[j].ProjectName
		}
		return out[i].Activity < out[j].Activity
	})
	return out
}

// DayScales returns the shrink ratio applied to each date in aggs.
func DayScales(aggs []Aggregate) map[string]float64 {
	scales := map[string]float64{}
	for _, a := range aggs {
		scales[a.Date] = a.Scale
	}
	return scales
}

func projectKey(id *int) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
