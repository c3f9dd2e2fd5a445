package core

import (
	"context"

	"github.com/progkeep/progkeep/internal/program"
)

// ProgramService is the command surface driven by the CLI and the TUI.
type ProgramService interface {
	// Dispatch runs one command and saves the program list afterwards when
	// the command mutates it.
	Dispatch(ctx context.Context, req Request) (Result, error)

	// Start runs the startup sequence: optionally offer to change the
	// download folder, then load the saved program list if present.
	Start(ctx context.Context, confirmDir bool) (Result, error)

	// Programs returns the tracked programs in order.
	Programs() []*program.Program

	// DownloadDir returns the current download folder.
	DownloadDir() string
}
