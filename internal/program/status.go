package program

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a program entry.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDownloaded Status = "DOWNLOADED"
	StatusRemoved    Status = "REMOVED"
	StatusError      Status = "ERROR"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusDownloaded, StatusRemoved, StatusError}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusDownloaded, StatusRemoved, StatusError:
		return true
	}
	return false
}

// Label returns a human friendly name for menus and tables.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In progress"
	case StatusDownloaded:
		return "Downloaded"
	case StatusRemoved:
		return "Removed"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ParseStatus accepts the persisted form and a few lenient spellings
// ("downloaded", "in-progress").
func ParseStatus(v string) (Status, error) {
	norm := strings.ToUpper(strings.TrimSpace(v))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	s := Status(norm)
	if !s.Valid() {
		return "", fmt.Errorf("unknown status %q", v)
	}
	return s, nil
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("unknown status %q", string(s))
	}
	return []byte(s), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
