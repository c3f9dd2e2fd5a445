package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/progkeep/progkeep/internal/program"
)

// programView is the machine-readable form of a program
type programView struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Status      string `json:"status" yaml:"status"`
	DownloadDir string `json:"download_dir" yaml:"download_dir"`
	Filename    string `json:"filename,omitempty" yaml:"filename,omitempty"`
	LocalPath   string `json:"local_path,omitempty" yaml:"local_path,omitempty"`
}

func newProgramView(p *program.Program) programView {
	return programView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		URL:         p.URL,
		Status:      p.Status.String(),
		DownloadDir: p.DownloadDir,
		Filename:    p.Filename,
		LocalPath:   p.LocalPath,
	}
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "l"},
	Short:   "List tracked programs",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		status, _ := cmd.Flags().GetString("status")

		a, err := openCLI(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		programs := a.service.Programs()
		if status != "" {
			s, err := program.ParseStatus(status)
			if err != nil {
				return err
			}
			programs = a.manager.FindByStatus(s)
		}
		return printPrograms(cmd.OutOrStdout(), output, programs)
	},
}

func printPrograms(w io.Writer, output string, programs []*program.Program) error {
	views := make([]programView, 0, len(programs))
	for _, p := range programs {
		views = append(views, newProgramView(p))
	}

	switch output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	case "", "table":
		if len(views) == 0 {
			fmt.Fprintln(w, "No programs. Add one with 'progkeep add <url>'.")
			return nil
		}
		fmt.Fprintf(w, "%-10s %-24s %-12s %s\n", "ID", "NAME", "STATUS", "URL")
		for _, v := range views {
			fmt.Fprintf(w, "%-10s %-24s %-12s %s\n", shortID(v.ID), truncate(v.Name, 24), v.Status, v.URL)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", output)
	}
}

// truncate shortens s to n runes, marking the cut with "..."
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func init() {
	listCmd.Flags().StringP("output", "o", "table", "Output format: table, json or yaml")
	listCmd.Flags().String("status", "", "Only list programs in this status")
}
