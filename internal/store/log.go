package store

import (
	"fmt"

	"github.com/nectime/nectime/internal/locallog"
	"github.com/nectime/nectime/internal/model"
)

// Log-side operations share the store lock so consolidation snapshots and
// push marking never interleave with a concurrent session close.

// Snapshot returns the unpushed log entries, optionally filtered to one
// date key. The lock is held only for the read; later closes simply show
// up in the next snapshot.
func (s *Store) Snapshot(date string) ([]model.LogEntry, error) {
	var out []model.LogEntry
	err := s.withLock(func() error {
		lg, err := locallog.Load(s.dir)
		if err != nil {
			return err
		}
		out = lg.Unpushed(date)
		return nil
	})
	return out, err
}

// Entries returns all log entries for a date key, pushed or not.
func (s *Store) Entries(date string) ([]model.LogEntry, error) {
	var out []model.LogEntry
	err := s.withLock(func() error {
		lg, err := locallog.Load(s.dir)
		if err != nil {
			return err
		}
		out = lg.ForDate(date)
		return nil
	})
	return out, err
}

// MarkPushed flags the given entries as pushed with the external reference,
// in one atomic write. It fails without writing if any ID is missing or
// already pushed, keeping the marking all-or-nothing per aggregate.
func (s *Store) MarkPushed(ids []string, ref string) error {
	return s.withLock(func() error {
		lg, err := locallog.Load(s.dir)
		if err != nil {
			return err
		}
		byID := make(map[string]int, len(lg.Entries))
		for i, e := range lg.Entries {
			byID[e.ID] = i
		}
		for _, id := range ids {
			i, ok := byID[id]
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
			}
			if lg.Entries[i].Pushed {
				return fmt.Errorf("%w: %s", ErrEntryPushed, id)
			}
		}
		for _, id := range ids {
			i := byID[id]
			lg.Entries[i].Pushed = true
			lg.Entries[i].PushRef = ref
		}
		return locallog.Save(s.dir, lg)
	})
}

// editEntry applies fn to one unpushed entry and saves the log.
func (s *Store) editEntry(id string, fn func(*model.LogEntry)) error {
	return s.withLock(func() error {
		lg, err := locallog.Load(s.dir)
		if err != nil {
			return err
		}
		for i := range lg.Entries {
			if lg.Entries[i].ID != id {
				continue
			}
			if lg.Entries[i].Pushed {
				return fmt.Errorf("%w: %s", ErrEntryPushed, id)
			}
			fn(&lg.Entries[i])
			return locallog.Save(s.dir, lg)
		}
		return fmt.Errorf("%w: %s", ErrUnknownEntry, id)
	})
}

// SetEntryDescription edits the description of an unpushed log entry.
func (s *Store) SetEntryDescription(id, text string) error {
	return s.editEntry(id, func(e *model.LogEntry) { e.Description = text })
}

// SetEntryActivity edits the activity of an unpushed log entry.
func (s *Store) SetEntryActivity(id, activity string) error {
	return s.editEntry(id, func(e *model.LogEntry) { e.Activity = activity })
}
