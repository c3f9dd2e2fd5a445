package types

// Download outcomes recorded in the history store
const (
	OutcomeCompleted = "completed"
	OutcomeError     = "error"
	OutcomeSkipped   = "skipped" // file already present, nothing fetched
)

// HistoryEntry is one recorded download attempt
type HistoryEntry struct {
	ID          string `json:"id"`
	ProgramID   string `json:"program_id"`
	ProgramName string `json:"program_name"`
	URL         string `json:"url"`
	DestPath    string `json:"dest_path,omitempty"`
	Filename    string `json:"filename,omitempty"`
	Outcome     string `json:"outcome"`
	Error       string `json:"error,omitempty"`
	TotalSize   int64  `json:"total_size"` // Bytes written
	StartedAt   int64  `json:"started_at"` // Unix timestamp
	TimeTaken   int64  `json:"time_taken"` // Duration in milliseconds
}

// FetchResult describes a finished fetch
type FetchResult struct {
	Path    string // Absolute path of the written file
	Size    int64  // Bytes written
	Elapsed int64  // Duration in milliseconds
}
