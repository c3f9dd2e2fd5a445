package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/progkeep/progkeep/internal/engine/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent download attempts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := openCLI(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.history == nil {
			return errors.New("download history is unavailable")
		}
		entries, err := a.history.ListAllDownloads(cmd.Context(), limit)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(w, "No downloads yet.")
			return nil
		}
		fmt.Fprintf(w, "%-10s %-24s %-10s %-16s %s\n", "ID", "PROGRAM", "OUTCOME", "WHEN", "DETAIL")
		for _, e := range entries {
			fmt.Fprintf(w, "%-10s %-24s %-10s %-16s %s\n",
				shortID(e.ID), truncate(e.ProgramName, 24), e.Outcome, humanize.Time(unixTime(e.StartedAt)), historyDetail(e))
		}
		return nil
	},
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0)
}

// historyDetail summarizes an entry: size and duration, or the error.
func historyDetail(e types.HistoryEntry) string {
	switch e.Outcome {
	case types.OutcomeError:
		return e.Error
	case types.OutcomeSkipped:
		return e.Filename
	default:
		took := time.Duration(e.TimeTaken) * time.Millisecond
		return fmt.Sprintf("%s, %s in %s", e.Filename, humanize.Bytes(uint64(max(e.TotalSize, 0))), took)
	}
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show (0 = all)")
}
