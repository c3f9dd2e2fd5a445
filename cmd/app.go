package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/progkeep/progkeep/internal/config"
	"github.com/progkeep/progkeep/internal/core"
	"github.com/progkeep/progkeep/internal/engine"
	"github.com/progkeep/progkeep/internal/engine/state"
	"github.com/progkeep/progkeep/internal/engine/types"
	"github.com/progkeep/progkeep/internal/manager"
	"github.com/progkeep/progkeep/internal/platform"
	"github.com/progkeep/progkeep/internal/utils"
)

// app wires settings, history, fetcher and launcher into a core.Service.
type app struct {
	settings *config.Settings
	history  *state.Store
	manager  *manager.Manager
	service  *core.Service
	prompt   manager.Prompter
	events   chan any
	printer  <-chan struct{}
}

func openApp(prompt manager.Prompter) (*app, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		utils.Debug("Failed to load settings, using defaults: %v", err)
		settings = config.DefaultSettings()
	}

	a := &app{
		settings: settings,
		prompt:   prompt,
		events:   make(chan any, types.EventChannelBuffer),
	}

	opts := []manager.Option{manager.WithEvents(a.events)}
	store, err := state.Open(filepath.Join(config.GetStateDir(), state.DBFileName))
	if err != nil {
		// History is optional; downloads work without it.
		utils.Debug("History unavailable: %v", err)
	} else {
		a.history = store
		opts = append(opts, manager.WithHistory(store))
	}

	fetcher := engine.NewHTTPFetcher(types.ConvertRuntimeConfig(settings.ToRuntimeConfig()))
	a.manager = manager.New(managerConfig(settings, globalDir), fetcher, platform.NewLauncher(), opts...)
	a.service = core.NewService(a.manager, prompt)
	return a, nil
}

// managerConfig maps the general settings onto the manager. dirOverride wins
// over the configured folder; an empty folder falls back to ~/Downloads.
func managerConfig(s *config.Settings, dirOverride string) manager.Config {
	cfg := manager.Config{
		DownloadDir:                s.General.DefaultDownloadDir,
		MaxPathAttempts:            s.General.MaxPathAttempts,
		OpenFolderAfterDownloadAll: s.General.OpenFolderAfterDownloadAll,
		WarnOnDuplicate:            s.General.WarnOnDuplicate,
	}
	if dirOverride != "" {
		cfg.DownloadDir = dirOverride
	}
	if cfg.DownloadDir == "" {
		if dir, err := platform.GetHomeDownloadsDir(); err == nil {
			cfg.DownloadDir = dir
		}
	}
	if cfg.DownloadDir != "" {
		cfg.DownloadDir = utils.EnsureAbsPath(cfg.DownloadDir)
	}
	return cfg
}

// persistDownloadDir stores the current download folder as the default,
// unless this invocation overrides it with --dir.
func (a *app) persistDownloadDir() error {
	if globalDir != "" {
		return nil
	}
	dir := a.manager.DownloadDir()
	if a.settings.General.DefaultDownloadDir == dir {
		return nil
	}
	a.settings.General.DefaultDownloadDir = dir
	return config.SetDefaultDownloadDir(dir)
}

// openCLI builds the app for a subcommand: it prompts on the command's
// stdin, prints download events to its stdout and loads the saved list.
func openCLI(cmd *cobra.Command, assumeYes bool) (*app, error) {
	a, err := openApp(newLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout(), assumeYes))
	if err != nil {
		return nil, err
	}
	a.printer = StartHeadlessConsumer(a.events, cmd.OutOrStdout())
	if _, err := a.service.Start(cmd.Context(), false); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// flush waits until every event published so far has been printed.
func (a *app) flush() {
	if a.printer == nil {
		return
	}
	done := make(chan struct{})
	a.events <- flushMarker{done: done}
	<-done
}

// dispatch runs one command and prints its outcome after pending events.
// Download commands report through their events instead.
func (a *app) dispatch(cmd *cobra.Command, req core.Request) (core.Result, error) {
	res, err := a.service.Dispatch(cmd.Context(), req)
	a.flush()
	if err == nil && res.Message != "" && req.Command != core.CmdDownload {
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	}
	return res, err
}

// Close stops event delivery and closes the history database.
func (a *app) Close() {
	close(a.events)
	if a.printer != nil {
		<-a.printer
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			utils.Debug("Error closing history: %v", err)
		}
	}
}
