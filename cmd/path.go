package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/progkeep/progkeep/internal/core"
	"github.com/progkeep/progkeep/internal/manager"
	"github.com/progkeep/progkeep/internal/utils"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the download folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openCLI(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Fprintln(cmd.OutOrStdout(), a.service.DownloadDir())
		return nil
	},
}

var pathSetCmd = &cobra.Command{
	Use:   "set [dir]",
	Short: "Change the download folder, moving downloaded files",
	Long: `Change the download folder. Downloaded files move to the new folder and the old
folder is removed. Without a directory the folder is asked for interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		release, err := lockInstance()
		if err != nil {
			return err
		}
		defer release()

		a, err := openCLI(cmd, yes)
		if err != nil {
			return err
		}
		defer a.Close()

		req := core.Request{Command: core.CmdSetDownloadPath}
		if len(args) == 1 {
			dir := utils.EnsureAbsPath(args[0])
			ok, err := a.prompt.Confirm(cmd.Context(), "Confirmation",
				fmt.Sprintf("Your files will be downloaded at '%s', is that okay?", dir))
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			req.Path = dir
		}

		before := a.service.DownloadDir()
		_, err = a.dispatch(cmd, req)
		if errors.Is(err, manager.ErrCancelled) {
			err = nil
		}
		// A failed relocation can still have switched folders, and
		// downloads.json was exported to the new one
		if a.service.DownloadDir() != before {
			if perr := a.persistDownloadDir(); perr != nil {
				return errors.Join(err, perr)
			}
		}
		return err
	},
}

func init() {
	pathSetCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	pathCmd.AddCommand(pathSetCmd)
}
