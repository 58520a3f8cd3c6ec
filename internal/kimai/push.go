package kimai

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/nectime/nectime/internal/consolidate"
	"github.com/nectime/nectime/internal/timecalc"
)

// TimesheetCreator submits one timesheet entry. *Client implements it.
type TimesheetCreator interface {
	CreateTimesheet(ctx context.Context, req TimesheetRequest) (Timesheet, error)
}

// PushMarker flags log entries as pushed after a confirmed submission.
// The store implements it.
type PushMarker interface {
	MarkPushed(ids []string, ref string) error
}

// Reconciler submits consolidated aggregates to Kimai, one timesheet per
// aggregate, and marks the constituent log entries pushed on success.
type Reconciler struct {
	Creator TimesheetCreator
	Marker  PushMarker
	// ActivityID maps a local activity key to the Kimai activity ID.
	ActivityID func(key string) (int, bool)
	Log        zerolog.Logger
}

// Result holds counters for a push run.
type Result struct {
	Pushed        int
	Skipped       int
	Failed        int
	EntriesMarked int
}

// Push submits every pushable aggregate using its shrunk duration. Marking
// is all-or-nothing per aggregate: a failed submission leaves all of its
// entries unpushed and eligible for the next run. Aggregates without a
// project (perso/pending) are counted as skipped, never treated as errors.
func (r *Reconciler) Push(ctx context.Context, aggs []consolidate.Aggregate) (Result, error) {
	var result Result

	for _, agg := range aggs {
		if !agg.Pushable() {
			r.Log.Debug().Str("date", agg.Date).Str("project", agg.ProjectName).
				Str("type", string(agg.FolderType)).Msg("aggregate not pushable, skipping")
			result.Skipped++
			continue
		}

		activityID, ok := r.ActivityID(agg.Activity)
		if !ok {
			fmt.Printf("  ! Unknown activity %q, skipping %s / %s\n", agg.Activity, agg.Date, agg.ProjectName)
			result.Failed++
			continue
		}

		// The external entry spans the shrunk duration starting at the
		// aggregate's first session begin.
		begin := agg.FirstBegin
		end := begin.Add(timecalc.SecondsDuration(agg.ShrunkSeconds))

		ts, err := r.Creator.CreateTimesheet(ctx, TimesheetRequest{
			Project:     *agg.ProjectID,
			Activity:    activityID,
			Begin:       FormatTime(begin),
			End:         FormatTime(end),
			Description: agg.Description(),
		})
		if err != nil {
			fmt.Printf("  ! [%s] %s / %s: %v\n", agg.Date, agg.ProjectName, agg.Activity, err)
			result.Failed++
			continue
		}

		ref := strconv.Itoa(ts.ID)
		if err := r.Marker.MarkPushed(agg.EntryIDs, ref); err != nil {
			// The timesheet exists remotely but the local log could not be
			// updated; surfacing the error beats silently double counting.
			return result, fmt.Errorf("timesheet %s created but marking %d entries failed: %w",
				ref, len(agg.EntryIDs), err)
		}

		result.Pushed++
		result.EntriesMarked += len(agg.EntryIDs)
		fmt.Printf("  + [%s] %s / %s - %s (timesheet %s)\n",
			agg.Date, agg.ProjectName, agg.Activity, timecalc.FormatDuration(agg.ShrunkSeconds), ref)
	}

	return result, nil
}
