package manager

import (
	"context"
	"errors"
)

var (
	// ErrCancelled is returned when the user dismisses a prompt.
	ErrCancelled = errors.New("cancelled by user")

	// ErrTooManyAttempts is returned when the download folder was not
	// confirmed within the allowed number of attempts.
	ErrTooManyAttempts = errors.New("download folder not confirmed")
)

// DirectoryPicker lets the user choose a directory, starting at initial.
// Dismissing the picker returns ErrCancelled.
type DirectoryPicker interface {
	PickDirectory(ctx context.Context, initial string) (string, error)
}

// Confirmer asks a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, title, message string) (bool, error)
}

// Asker asks for free text. ok is false when the user cancels.
type Asker interface {
	Ask(ctx context.Context, title, message, initial string) (answer string, ok bool, err error)
}

// Prompter groups every interactive collaborator.
type Prompter interface {
	DirectoryPicker
	Confirmer
	Asker
}

// Launcher opens a file or folder with the operating system's default handler.
type Launcher interface {
	Open(path string) error
}
