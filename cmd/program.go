package cmd

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/progkeep/progkeep/internal/core"
	"github.com/progkeep/progkeep/internal/program"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a program and its download history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openCLI(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.resolveProgram(args[0])
		if err != nil {
			return err
		}
		res, err := a.dispatch(cmd, core.Request{Command: core.CmdView, Program: p})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "[ID]: %s\n", p.ID)
		fmt.Fprintln(w, res.Text)

		if a.history == nil {
			return nil
		}
		entries, err := a.history.ListForProgram(cmd.Context(), p.ID)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			fmt.Fprintln(w, "\nHistory:")
			for _, e := range entries {
				fmt.Fprintf(w, "  %s  %-9s %s\n", humanize.Time(unixTime(e.StartedAt)), e.Outcome, historyDetail(e))
			}
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a program's name, description or URL",
	Long:  `Change a program's name, description or URL. Without flags every field is asked for, showing its current value.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := lockInstance()
		if err != nil {
			return err
		}
		defer release()

		a, err := openCLI(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.resolveProgram(args[0])
		if err != nil {
			return err
		}

		var reqs []core.Request
		for _, item := range []struct {
			flag  string
			field core.Field
		}{
			{"name", core.FieldName},
			{"description", core.FieldDescription},
			{"url", core.FieldURL},
		} {
			if !cmd.Flags().Changed(item.flag) {
				continue
			}
			v, _ := cmd.Flags().GetString(item.flag)
			reqs = append(reqs, core.Request{Command: core.CmdUpdate, Program: p, Field: item.field, Value: &v})
		}
		if len(reqs) == 0 {
			for _, item := range core.UpdateMenu() {
				reqs = append(reqs, core.Request{Command: core.CmdUpdate, Program: p, Field: item.Field})
			}
		}

		for _, req := range reqs {
			if _, err := a.dispatch(cmd, req); err != nil {
				return err
			}
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:     "download [id]...",
	Aliases: []string{"get"},
	Short:   "Download programs (all of them when no id is given)",
	Args:    cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		noOpen, _ := cmd.Flags().GetBool("no-open")

		release, err := lockInstance()
		if err != nil {
			return err
		}
		defer release()

		a, err := openCLI(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 0 {
			if noOpen {
				a.manager.SetOpenFolderAfterDownloadAll(false)
			}
			_, err := a.dispatch(cmd, core.Request{Command: core.CmdDownloadAll})
			return err
		}

		var errs []error
		for _, ref := range args {
			p, err := a.resolveProgram(ref)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			if _, err := a.dispatch(cmd, core.Request{Command: core.CmdDownload, Program: p}); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	},
}

var execCmd = &cobra.Command{
	Use:     "exec <id>",
	Aliases: []string{"run"},
	Short:   "Open a downloaded program with the system's default handler",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProgram(cmd, args[0], false, func(a *app, p *program.Program) error {
			_, err := a.dispatch(cmd, core.Request{Command: core.CmdExecute, Program: p})
			return err
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a program's downloaded file and keep the entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withProgram(cmd, args[0], true, func(a *app, p *program.Program) error {
			_, err := a.dispatch(cmd, core.Request{Command: core.CmdDeleteFile, Program: p})
			return err
		})
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm"},
	Short:   "Remove a program from the list, deleting its file",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return withProgram(cmd, args[0], true, func(a *app, p *program.Program) error {
			if !force {
				ok, err := a.prompt.Confirm(cmd.Context(), "Remove", fmt.Sprintf("Remove %s and its file?", p.Name))
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
			}
			_, err := a.dispatch(cmd, core.Request{Command: core.CmdRemove, Program: p})
			return err
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the download folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openCLI(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		_, err = a.dispatch(cmd, core.Request{Command: core.CmdOpenDownloadDir})
		return err
	},
}

// withProgram opens the app, resolves ref and runs fn, holding the instance
// lock when the command changes state.
func withProgram(cmd *cobra.Command, ref string, lock bool, fn func(*app, *program.Program) error) error {
	if lock {
		release, err := lockInstance()
		if err != nil {
			return err
		}
		defer release()
	}

	a, err := openCLI(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.resolveProgram(ref)
	if err != nil {
		return err
	}
	return fn(a, p)
}

func init() {
	downloadCmd.Flags().Bool("no-open", false, "Do not open the download folder after downloading everything")
	removeCmd.Flags().BoolP("force", "f", false, "Do not ask for confirmation")
	updateCmd.Flags().String("name", "", "New name")
	updateCmd.Flags().String("description", "", "New description")
	updateCmd.Flags().String("url", "", "New URL")
}
