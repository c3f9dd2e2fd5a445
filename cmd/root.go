package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/progkeep/progkeep/internal/config"
	"github.com/progkeep/progkeep/internal/tui"
	"github.com/progkeep/progkeep/internal/utils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// Version information - set via ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// globalDir overrides the download folder for one invocation
var globalDir string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "progkeep",
	Short:         "Keep track of the programs you download",
	Long:          `progkeep keeps a list of programs and their download URLs, downloads them into one folder and opens them for you.`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initializeGlobalState()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		release, err := lockInstance()
		if err != nil {
			return err
		}
		defer release()

		return startTUI(cmd.Context())
	},
}

// startTUI initializes and runs the TUI program
func startTUI(ctx context.Context) error {
	bridge := tui.NewPromptBridge()
	a, err := openApp(bridge)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := tui.Options{
		Version:          Version,
		ConfirmDir:       a.settings.General.ConfirmDirOnStartup && globalDir == "",
		ClipboardPrefill: a.settings.General.ClipboardPrefill,
		Theme:            a.settings.General.Theme,
		SaveSettings:     saveEditedSettings,
	}
	saved := a.service.DownloadDir()
	opts.OnDownloadDirChanged = func(dir string) {
		saved = dir
		if err := a.persistDownloadDir(); err != nil {
			utils.Debug("Failed to save download folder %s: %v", dir, err)
		}
	}
	if stored, err := config.LoadStoredSettings(); err == nil {
		opts.Settings = stored
	} else {
		utils.Debug("Settings page disabled: %v", err)
	}
	m := tui.InitialRootModel(ctx, a.service, bridge, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Background listener for program events
	go func() {
		for msg := range a.events {
			p.Send(msg)
		}
	}()

	_, err = p.Run()

	// A command still running when the program exited has to finish
	// before the service is closed
	m.Shutdown()
	if a.service.DownloadDir() != saved {
		if perr := a.persistDownloadDir(); perr != nil {
			utils.Debug("Failed to save download folder: %v", perr)
		}
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// saveEditedSettings writes settings edited in the TUI. The download folder
// is owned by the folder picker and is taken from disk.
func saveEditedSettings(s *config.Settings) error {
	if stored, err := config.LoadStoredSettings(); err == nil {
		s.General.DefaultDownloadDir = stored.General.DefaultDownloadDir
	}
	return config.SaveSettings(s)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&globalDir, "dir", "d", "", "Download folder for this invocation (overrides settings)")
	rootCmd.SetVersionTemplate("progkeep version {{.Version}}\n")

	rootCmd.AddCommand(addCmd, listCmd, showCmd, updateCmd, downloadCmd,
		execCmd, deleteCmd, removeCmd, openCmd, pathCmd, historyCmd)
}

// initializeGlobalState creates the app directories and configures logging
func initializeGlobalState() {
	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create app directories: %v\n", err)
		return
	}

	utils.ConfigureDebug(config.GetLogsDir())

	settings, err := config.LoadSettings()
	if err != nil {
		settings = config.DefaultSettings()
	}
	utils.CleanupLogs(settings.General.LogRetentionCount)
	utils.Debug("progkeep %s (built %s) starting", Version, BuildTime)
}
