package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/progkeep/progkeep/internal/core"
)

var addCmd = &cobra.Command{
	Use:     "add [url]...",
	Aliases: []string{"a"},
	Short:   "Add programs by URL",
	Long: `Add one or more programs by URL. Without arguments the name and URL are asked for.
URLs can also come from a batch file (one per line) or the clipboard.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")
		batchFile, _ := cmd.Flags().GetString("batch")
		fromClipboard, _ := cmd.Flags().GetBool("from-clipboard")

		urls := append([]string(nil), args...)
		if batchFile != "" {
			fileURLs, err := readURLsFromFile(batchFile)
			if err != nil {
				return fmt.Errorf("reading batch file: %w", err)
			}
			urls = append(urls, fileURLs...)
		}
		if fromClipboard {
			u, err := clipboardURL()
			if err != nil {
				return err
			}
			urls = append(urls, u)
		}
		if name != "" && len(urls) > 1 {
			return errors.New("--name can only be used with a single URL")
		}

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

		// No URL given: ask for name and URL
		if len(urls) == 0 {
			_, err := a.dispatch(cmd, core.Request{Command: core.CmdAddProgram, Name: name, Description: description})
			return err
		}

		var errs []error
		for _, u := range urls {
			if a.manager.Config().WarnOnDuplicate && a.manager.IsDuplicate(u) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s is already in the list\n", u)
			}
			if _, err := a.dispatch(cmd, core.Request{
				Command:     core.CmdAddProgram,
				URL:         u,
				Name:        name,
				Description: description,
			}); err != nil {
				errs = append(errs, fmt.Errorf("adding %s: %w", u, err))
			}
		}
		return errors.Join(errs...)
	},
}

func init() {
	addCmd.Flags().StringP("name", "n", "", "Program name (single URL only)")
	addCmd.Flags().String("description", "", "Program description")
	addCmd.Flags().StringP("batch", "b", "", "File containing URLs to add (one per line)")
	addCmd.Flags().Bool("from-clipboard", false, "Add the URL currently on the clipboard")
}
