package program

import (
	"errors"
	"fmt"
	"io/fs"
)

var (
	// ErrFileNotFound is returned when an operation needs the downloaded file
	// and it is absent. It also matches fs.ErrNotExist.
	ErrFileNotFound = fmt.Errorf("file not found: %w", fs.ErrNotExist)

	// ErrMalformedConfiguration is returned when downloads.json cannot be decoded.
	ErrMalformedConfiguration = errors.New("malformed configuration")

	ErrProgramNotFound = errors.New("program not found")

	// ErrNestedDirectory rejects a move into a directory inside the current one,
	// since the old directory is removed afterwards.
	ErrNestedDirectory = errors.New("destination is inside the current download directory")
)

// DownloadError describes a failed fetch. The program is left in ERROR state.
type DownloadError struct {
	ProgramID string
	Name      string
	URL       string
	Err       error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s (%s) failed: %v", e.Name, e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}
