package events

import (
	"encoding/json"
	"errors"
	"time"
)

// StatusChangedMsg is emitted on every program status assignment
type StatusChangedMsg struct {
	ProgramID string
	Name      string
	From      string
	To        string
}

// DownloadStartedMsg is sent when a fetch begins
type DownloadStartedMsg struct {
	ProgramID string
	Name      string
	URL       string
}

// DownloadCompleteMsg signals that the download finished successfully
type DownloadCompleteMsg struct {
	ProgramID string
	Name      string
	Filename  string
	DestPath  string // Full path to the destination file
	Elapsed   time.Duration
	Total     int64
}

// AlreadyDownloadedMsg is sent instead of a fetch when the file is present
type AlreadyDownloadedMsg struct {
	ProgramID string
	Name      string
	DestPath  string
}

// DownloadErrorMsg signals that an error occurred
type DownloadErrorMsg struct {
	ProgramID string
	Name      string
	Err       error
}

func (m DownloadErrorMsg) MarshalJSON() ([]byte, error) {
	type encoded struct {
		ProgramID string `json:"ProgramID"`
		Name      string `json:"Name,omitempty"`
		Err       string `json:"Err,omitempty"`
	}

	out := encoded{
		ProgramID: m.ProgramID,
		Name:      m.Name,
	}
	if m.Err != nil {
		out.Err = m.Err.Error()
	}

	return json.Marshal(out)
}

func (m *DownloadErrorMsg) UnmarshalJSON(data []byte) error {
	var aux struct {
		ProgramID string          `json:"ProgramID"`
		Name      string          `json:"Name"`
		Err       json.RawMessage `json:"Err"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.ProgramID = aux.ProgramID
	m.Name = aux.Name
	m.Err = nil

	if len(aux.Err) == 0 {
		return nil
	}

	var errStr string
	if err := json.Unmarshal(aux.Err, &errStr); err == nil {
		if errStr != "" {
			m.Err = errors.New(errStr)
		}
		return nil
	}

	// Accept non-string payloads (e.g. {}).
	raw := string(aux.Err)
	if raw != "" && raw != "null" {
		m.Err = errors.New(raw)
	}
	return nil
}

// ProgramMovedMsg is sent after a downloaded file changed directory
type ProgramMovedMsg struct {
	ProgramID string
	Name      string
	From      string
	To        string
}

type ProgramAddedMsg struct {
	ProgramID string
	Name      string
	URL       string
}

type ProgramRemovedMsg struct {
	ProgramID string
	Name      string
}

type FileDeletedMsg struct {
	ProgramID string
	Name      string
	Path      string
}

// ConfigSavedMsg reports an export of the program list
type ConfigSavedMsg struct {
	Path     string
	Programs int
}

// ConfigLoadedMsg reports an import of the program list
type ConfigLoadedMsg struct {
	Path     string
	Programs int
}

// DownloadPathChangedMsg reports a new authoritative download folder
type DownloadPathChangedMsg struct {
	From string
	To   string
}

// Publish sends msg on ch without blocking. A nil or full channel drops the event.
func Publish(ch chan<- any, msg any) {
	if ch == nil {
		return
	}
	select {
	case ch <- msg:
	default:
	}
}
