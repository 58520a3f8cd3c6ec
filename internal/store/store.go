// Package store holds the live-session state machine and its durable store.
//
// Sessions are kept in sessions.json inside the data directory. Every
// operation is a read-modify-write of the whole file under one advisory
// file lock, because callers are independent short-lived hook processes.
// Closing a session appends to the local log inside the same critical
// section that removes it from the store.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/nectime/nectime/internal/locallog"
	"github.com/nectime/nectime/internal/model"
	"github.com/nectime/nectime/internal/timecalc"
)

// StaleAfter is the idle threshold beyond which ForceClose treats a session
// as abandoned and closes it at its last observed activity.
const StaleAfter = 12 * time.Hour

var (
	// ErrDuplicateSession is returned by Start when the session ID already exists.
	ErrDuplicateSession = errors.New("session already active for this session ID")
	// ErrUnknownSession is returned by Heartbeat/Close/Cancel on a missing ID.
	ErrUnknownSession = errors.New("no active session for this session ID")
	// ErrUnknownEntry is returned when a log entry ID does not exist.
	ErrUnknownEntry = errors.New("no such log entry")
	// ErrEntryPushed is returned when editing an entry already pushed to Kimai.
	ErrEntryPushed = errors.New("entry already pushed and frozen")
)

// MappingSource resolves a folder to its tracking defaults.
type MappingSource interface {
	Lookup(folder string) (model.Mapping, bool)
}

// CommitLister collects commit references made in folder between two times.
type CommitLister interface {
	Commits(folder string, begin, end time.Time) []string
}

// Store is the single writer of the live-session file and the local log.
type Store struct {
	dir  string
	lock *flock.Flock
	mu   sync.Mutex // in-process exclusion; the flock guards cross-process

	// Mappings resolves folder defaults at Start. Nil means every folder
	// starts as pending.
	Mappings MappingSource
	// Commits, when set, is consulted at Close to attach commit references
	// to the log entry.
	Commits CommitLister
	// DefaultActivity is used when a session closes without any estimate.
	DefaultActivity string
}

// Open prepares a Store over the given data directory, creating it if needed.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dir, err)
	}
	return &Store{
		dir:  dir,
		lock: flock.New(filepath.Join(dir, ".lock")),
	}, nil
}

// Dir returns the data directory backing the store.
func (s *Store) Dir() string { return s.dir }

// withLock runs fn while holding both the in-process mutex and the advisory
// file lock. Lock acquisition blocks; contention is sub-millisecond.
func (s *Store) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("acquiring store lock: %w", err)
	}
	defer s.lock.Unlock()
	return fn()
}

func (s *Store) sessionsPath() string {
	return filepath.Join(s.dir, "sessions.json")
}

// loadSessions reads the live-session map. Missing file means no sessions.
func (s *Store) loadSessions() (map[string]model.Session, error) {
	data, err := os.ReadFile(s.sessionsPath())
	if os.IsNotExist(err) {
		return map[string]model.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading sessions file: %w", err)
	}
	var sessions map[string]model.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		backupPath := s.sessionsPath() + ".corrupt"
		_ = os.Rename(s.sessionsPath(), backupPath)
		return nil, fmt.Errorf("corrupt sessions file (backed up to %s): %w", backupPath, err)
	}
	if sessions == nil {
		sessions = map[string]model.Session{}
	}
	return sessions, nil
}

// saveSessions atomically writes the live-session map.
func (s *Store) saveSessions(sessions map[string]model.Session) error {
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling sessions: %w", err)
	}
	tmpPath := s.sessionsPath() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing sessions temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.sessionsPath()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming sessions temp file: %w", err)
	}
	return nil
}

// Start creates a new live session for the given ID and folder. The folder
// type and project are resolved from the mapping source; unmapped folders
// start as pending with the folder's base name as project name.
func (s *Store) Start(id, folder string, now time.Time) (model.Session, error) {
	folder = filepath.Clean(folder)
	var created model.Session
	err := s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}
		if _, exists := sessions[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateSession, id)
		}

		sess := model.Session{
			Begin:        now,
			Folder:       folder,
			FolderType:   model.TypePending,
			ProjectName:  filepath.Base(folder),
			LastActivity: now,
		}
		if s.Mappings != nil {
			if m, ok := s.Mappings.Lookup(folder); ok {
				sess.FolderType = m.FolderType
				sess.ProjectID = m.ProjectID
				if m.ProjectName != "" {
					sess.ProjectName = m.ProjectName
				}
				sess.Activity = m.DefaultActivity
			}
		}

		sessions[id] = sess
		if err := s.saveSessions(sessions); err != nil {
			return err
		}
		created = sess
		return nil
	})
	return created, err
}

// Heartbeat advances last_activity for the session and optionally records a
// new activity estimate. Repeated identical calls are idempotent.
func (s *Store) Heartbeat(id string, now time.Time, estimate string) error {
	return s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}
		sess, exists := sessions[id]
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownSession, id)
		}
		if now.After(sess.LastActivity) {
			sess.LastActivity = now
		}
		if estimate != "" {
			sess.Activity = estimate
		}
		sessions[id] = sess
		return s.saveSessions(sessions)
	})
}

// SetDescription attaches a description to a live session; it is carried
// into the log entry at close.
func (s *Store) SetDescription(id, text string) error {
	return s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}
		sess, exists := sessions[id]
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownSession, id)
		}
		sess.Description = text
		sessions[id] = sess
		return s.saveSessions(sessions)
	})
}

// Close ends the session and appends one log entry, both inside a single
// critical section. The closing timestamp is max(now, last_activity) to
// guard against a close event carrying a clock value older than the last
// heartbeat. Sessions of type off are removed without producing an entry.
// activityOverride, when non-empty, wins over the session's own estimate.
func (s *Store) Close(id string, now time.Time, activityOverride string) (*model.LogEntry, error) {
	var entry *model.LogEntry
	err := s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}
		sess, exists := sessions[id]
		if !exists {
			return fmt.Errorf("%w: %s", ErrUnknownSession, id)
		}

		delete(sessions, id)

		if sess.FolderType == model.TypeOff {
			// Tracking disabled: close without logging.
			return s.saveSessions(sessions)
		}

		e := s.buildEntry(sess, s.closeTime(sess, now), activityOverride)
		if err := locallog.Append(s.dir, e); err != nil {
			return err
		}
		if err := s.saveSessions(sessions); err != nil {
			return err
		}
		entry = &e
		return nil
	})
	return entry, err
}

// Cancel discards the session without writing a log entry.
func (s *Store) Cancel(id string) error {
	return s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}
		if _, exists := sessions[id]; !exists {
			return fmt.Errorf("%w: %s", ErrUnknownSession, id)
		}
		delete(sessions, id)
		return s.saveSessions(sessions)
	})
}

// ForceClose sweeps every session idle for longer than StaleAfter, closing
// it at its last_activity rather than the sweep time so abandoned sessions
// are not charged idle wall-clock hours. It returns the log entries written.
func (s *Store) ForceClose(now time.Time) ([]model.LogEntry, error) {
	var closed []model.LogEntry
	err := s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}

		changed := false
		for id, sess := range sessions {
			if now.Sub(sess.LastActivity) <= StaleAfter {
				continue
			}
			delete(sessions, id)
			changed = true
			if sess.FolderType == model.TypeOff {
				continue
			}
			e := s.buildEntry(sess, sess.LastActivity, "")
			if err := locallog.Append(s.dir, e); err != nil {
				return err
			}
			closed = append(closed, e)
		}

		if !changed {
			return nil
		}
		return s.saveSessions(sessions)
	})
	return closed, err
}

// closeTime returns max(now, last_activity).
func (s *Store) closeTime(sess model.Session, now time.Time) time.Time {
	if sess.LastActivity.After(now) {
		return sess.LastActivity
	}
	return now
}

// buildEntry turns a closed session into a log entry dated by its closing
// timestamp in the local time zone.
func (s *Store) buildEntry(sess model.Session, end time.Time, activityOverride string) model.LogEntry {
	activity := activityOverride
	if activity == "" {
		activity = sess.Activity
	}
	if activity == "" {
		activity = s.DefaultActivity
	}

	duration := int64(end.Sub(sess.Begin).Seconds())
	if duration < 0 {
		duration = 0
	}

	var commits []string
	if s.Commits != nil {
		commits = s.Commits.Commits(sess.Folder, sess.Begin, end)
	}

	return model.LogEntry{
		ID:              uuid.NewString(),
		Date:            timecalc.DayKey(end),
		Folder:          sess.Folder,
		FolderType:      sess.FolderType,
		ProjectID:       sess.ProjectID,
		ProjectName:     sess.ProjectName,
		Activity:        activity,
		Begin:           sess.Begin,
		End:             end,
		DurationSeconds: duration,
		Commits:         commits,
		Description:     sess.Description,
	}
}

// Sessions returns a snapshot of all live sessions.
func (s *Store) Sessions() (map[string]model.Session, error) {
	var out map[string]model.Session
	err := s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}
		out = sessions
		return nil
	})
	return out, err
}

// Get returns the live session for id, if any.
func (s *Store) Get(id string) (model.Session, bool, error) {
	sessions, err := s.Sessions()
	if err != nil {
		return model.Session{}, false, err
	}
	sess, ok := sessions[id]
	return sess, ok, nil
}

// Retarget updates every live session of the given folder with new mapping
// defaults, used after the operator re-classifies a folder. Returns the
// number of sessions updated.
func (s *Store) Retarget(folder string, m model.Mapping) (int, error) {
	folder = filepath.Clean(folder)
	count := 0
	err := s.withLock(func() error {
		sessions, err := s.loadSessions()
		if err != nil {
			return err
		}
		for id, sess := range sessions {
			if sess.Folder != folder {
				continue
			}
			sess.FolderType = m.FolderType
			sess.ProjectID = m.ProjectID
			if m.ProjectName != "" {
				sess.ProjectName = m.ProjectName
			}
			sessions[id] = sess
			count++
		}
		if count == 0 {
			return nil
		}
		return s.saveSessions(sessions)
	})
	return count, err
}
