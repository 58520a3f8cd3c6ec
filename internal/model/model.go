package model

import (
	"fmt"
	"time"
)

// FolderType classifies how time spent in a folder is handled.
type FolderType string

const (
	// TypePro is a billable folder; its entries are pushed to Kimai.
	TypePro FolderType = "pro"
	// TypePerso is personal work, logged locally and never pushed.
	TypePerso FolderType = "perso"
	// TypePending is an unmapped folder awaiting a project assignment.
	TypePending FolderType = "pending"
	// TypeOff disables tracking for the folder entirely.
	TypeOff FolderType = "off"
)

// ParseFolderType validates a user-supplied folder type string.
func ParseFolderType(s string) (FolderType, error) {
	switch FolderType(s) {
	case TypePro, TypePerso, TypePending, TypeOff:
		return FolderType(s), nil
	}
	return "", fmt.Errorf("invalid folder type %q (want pro, perso, pending or off)", s)
}

// Session is one live tracked interval, keyed by the host-provided session ID.
type Session struct {
	Begin        time.Time  `json:"begin"`
	Folder       string     `json:"folder"`
	FolderType   FolderType `json:"folder_type"`
	ProjectID    *int       `json:"project_id"`
	ProjectName  string     `json:"project_name"`
	LastActivity time.Time  `json:"last_activity"`
	Activity     string     `json:"activity,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// LogEntry is one closed session in the append-only local log.
// Once written, only Description and Activity may change before a push;
// Pushed and PushRef are set exactly once by the push reconciler, after
// which the entry is frozen.
type LogEntry struct {
	ID              string     `json:"id"`
	Date            string     `json:"date"` // YYYY-MM-DD, day of the closing timestamp
	Folder          string     `json:"folder"`
	FolderType      FolderType `json:"folder_type"`
	ProjectID       *int       `json:"project_id"`
	ProjectName     string     `json:"project_name"`
	Activity        string     `json:"activity"`
	Begin           time.Time  `json:"begin"`
	End             time.Time  `json:"end"`
	DurationSeconds int64      `json:"duration_seconds"`
	Commits         []string   `json:"commits,omitempty"`
	Description     string     `json:"description,omitempty"`
	Pushed          bool       `json:"pushed"`
	PushRef         string     `json:"push_ref,omitempty"`
}

// Mapping is the per-folder default resolved at session start.
type Mapping struct {
	FolderType      FolderType `json:"folder_type"`
	ProjectID       *int       `json:"project_id"`
	ProjectName     string     `json:"project_name"`
	DefaultActivity string     `json:"default_activity,omitempty"`
}
