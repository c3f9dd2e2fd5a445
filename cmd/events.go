package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/progkeep/progkeep/internal/engine/events"
)

// flushMarker is queued behind pending events; done is closed once the
// consumer reaches it.
type flushMarker struct {
	done chan struct{}
}

// shortID trims an ID for display
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// StartHeadlessConsumer prints download events from ch to out until ch is
// closed. The returned channel is closed once the consumer has exited.
func StartHeadlessConsumer(ch <-chan any, out io.Writer) <-chan struct{} {
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for msg := range ch {
			switch m := msg.(type) {
			case flushMarker:
				close(m.done)
			case events.DownloadStartedMsg:
				fmt.Fprintf(out, "Started: %s [%s]\n", m.Name, shortID(m.ProgramID))
			case events.DownloadCompleteMsg:
				fmt.Fprintf(out, "Completed: %s [%s] %s (%s in %s)\n",
					m.Name, shortID(m.ProgramID), m.Filename,
					humanize.Bytes(uint64(max(m.Total, 0))), m.Elapsed.Round(time.Millisecond))
			case events.AlreadyDownloadedMsg:
				fmt.Fprintf(out, "Skipped: %s [%s] is already downloaded\n", m.Name, shortID(m.ProgramID))
			case events.DownloadErrorMsg:
				fmt.Fprintf(out, "Error: %s [%s]: %v\n", m.Name, shortID(m.ProgramID), m.Err)
			case events.ProgramMovedMsg:
				fmt.Fprintf(out, "Moved: %s [%s] to %s\n", m.Name, shortID(m.ProgramID), m.To)
			}
		}
	}()
	return exited
}
