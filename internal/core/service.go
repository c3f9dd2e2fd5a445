// Package core maps the command surface onto the program manager.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/progkeep/progkeep/internal/manager"
	"github.com/progkeep/progkeep/internal/program"
	"github.com/progkeep/progkeep/internal/utils"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrProgramRequired = errors.New("command needs a program")
)

// Request carries a command and its inputs. Inputs left empty are asked
// through the service's prompter.
type Request struct {
	Command Command
	Program *program.Program

	// CmdAddProgram
	URL         string
	Name        string
	Description string

	// CmdUpdate
	Field Field
	Value *string

	// CmdSetDownloadPath: a non-empty Path relocates without prompting.
	Path string
}

// Result describes what a command did.
type Result struct {
	Command  Command
	Program  *program.Program
	Programs []*program.Program
	Text     string
	Message  string
	SavedTo  string

	// DownloadDir is the download folder once the command has finished.
	DownloadDir string
}

type handlerFunc func(ctx context.Context, req Request) (Result, error)

// Service implements ProgramService on top of a manager.Manager.
type Service struct {
	manager  *manager.Manager
	prompt   manager.Prompter
	handlers map[Command]handlerFunc
}

var _ ProgramService = (*Service)(nil)

func NewService(m *manager.Manager, prompt manager.Prompter) *Service {
	s := &Service{manager: m, prompt: prompt}
	s.handlers = map[Command]handlerFunc{
		CmdSetDownloadPath: s.setDownloadPath,
		CmdDownloadAll:     s.downloadAll,
		CmdOpenDownloadDir: s.openDownloadDir,
		CmdBrowse:          s.browse,
		CmdAddProgram:      s.addProgram,
		CmdView:            s.view,
		CmdUpdate:          s.update,
		CmdDownload:        s.download,
		CmdExecute:         s.execute,
		CmdRemove:          s.remove,
		CmdDeleteFile:      s.deleteFile,
	}
	return s
}

func (s *Service) Manager() *manager.Manager {
	return s.manager
}

func (s *Service) Programs() []*program.Program {
	return s.manager.Programs()
}

func (s *Service) DownloadDir() string {
	return s.manager.DownloadDir()
}

// Dispatch looks up the handler for req.Command and runs it. The program
// list is exported after every mutating command, even a failed one.
func (s *Service) Dispatch(ctx context.Context, req Request) (Result, error) {
	h, ok := s.handlers[req.Command]
	if !ok {
		return Result{Command: req.Command, DownloadDir: s.DownloadDir()}, fmt.Errorf("%w: %s", ErrUnknownCommand, req.Command)
	}
	if req.Command.NeedsProgram() && req.Program == nil {
		return Result{Command: req.Command, DownloadDir: s.DownloadDir()}, fmt.Errorf("%s: %w", req.Command, ErrProgramRequired)
	}

	utils.Debug("Dispatching %s", req.Command)
	res, err := h(ctx, req)
	res.Command = req.Command

	if req.Command.Mutates() {
		path, saveErr := s.manager.Export()
		if saveErr != nil {
			err = errors.Join(err, saveErr)
		} else {
			res.SavedTo = path
		}
	}
	res.DownloadDir = s.DownloadDir()
	return res, err
}

// Start offers to change the download folder and loads the saved list.
func (s *Service) Start(ctx context.Context, confirmDir bool) (Result, error) {
	res, err := s.start(ctx, confirmDir)
	res.DownloadDir = s.DownloadDir()
	return res, err
}

func (s *Service) start(ctx context.Context, confirmDir bool) (Result, error) {
	if confirmDir {
		change, err := s.prompt.Confirm(ctx, "Confirmation",
			fmt.Sprintf("Your files will be downloaded at '%s', would you like to change it?", s.manager.DownloadDir()))
		if err != nil {
			return Result{}, err
		}
		if change {
			if err := s.manager.SetDownloadPath(ctx, s.prompt); err != nil && !errors.Is(err, manager.ErrCancelled) {
				return Result{}, err
			}
		}
	}

	if !s.manager.Paths().ConfigurationExists() {
		return Result{Message: fmt.Sprintf("Files will be downloaded at %s", s.manager.DownloadDir())}, nil
	}
	if err := s.manager.Import(); err != nil {
		return Result{}, err
	}
	return Result{
		Programs: s.manager.Programs(),
		Message:  fmt.Sprintf("Loaded %d programs from %s", len(s.manager.Programs()), s.manager.Paths().ConfigPath()),
	}, nil
}

func (s *Service) setDownloadPath(ctx context.Context, req Request) (Result, error) {
	var err error
	if req.Path != "" {
		err = s.manager.Relocate(req.Path)
	} else {
		err = s.manager.SetDownloadPath(ctx, s.prompt)
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Files will be downloaded at %s", s.manager.DownloadDir())}, nil
}

func (s *Service) downloadAll(ctx context.Context, _ Request) (Result, error) {
	err := s.manager.DownloadAll(ctx)
	res := Result{Programs: s.manager.Programs(), Message: "All your downloads have been finished."}
	if err != nil {
		res.Message = "Downloads finished with errors."
	}
	return res, err
}

func (s *Service) openDownloadDir(_ context.Context, _ Request) (Result, error) {
	if err := s.manager.OpenDownloadDir(); err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("Opened %s", s.manager.DownloadDir())}, nil
}

func (s *Service) browse(_ context.Context, _ Request) (Result, error) {
	return Result{Programs: s.manager.Programs()}, nil
}

func (s *Service) addProgram(ctx context.Context, req Request) (Result, error) {
	name, url := req.Name, req.URL

	if url == "" {
		if name == "" {
			answer, ok, err := s.prompt.Ask(ctx, "Create program", "Program name", "")
			if err != nil {
				return Result{}, err
			}
			if !ok {
				return Result{}, manager.ErrCancelled
			}
			name = strings.TrimSpace(answer)
		}

		label := name
		if label == "" {
			label = program.DefaultName
		}
		answer, ok, err := s.prompt.Ask(ctx, label+" information", label+"'s URL", "")
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, manager.ErrCancelled
		}
		url = answer
	}

	p, err := s.manager.AddURL(url, name, req.Description)
	if err != nil {
		return Result{}, err
	}
	return Result{Program: p, Message: fmt.Sprintf("Added %s", p.Name)}, nil
}

func (s *Service) view(_ context.Context, req Request) (Result, error) {
	return Result{Program: req.Program, Text: s.manager.Describe(req.Program)}, nil
}

func (s *Service) update(ctx context.Context, req Request) (Result, error) {
	p := req.Program

	value := req.Value
	if value == nil {
		var initial string
		switch req.Field {
		case FieldName:
			initial = p.Name
		case FieldDescription:
			initial = p.Description
		case FieldURL:
			initial = p.URL
		default:
			return Result{}, fmt.Errorf("update: unknown field %d", int(req.Field))
		}
		answer, ok, err := s.prompt.Ask(ctx, p.Name, fmt.Sprintf("%s's new %s", p.Name, req.Field), initial)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, manager.ErrCancelled
		}
		value = &answer
	}

	var fields manager.UpdateFields
	switch req.Field {
	case FieldName:
		fields.Name = value
	case FieldDescription:
		fields.Description = value
	case FieldURL:
		fields.URL = value
	default:
		return Result{}, fmt.Errorf("update: unknown field %d", int(req.Field))
	}

	if err := s.manager.Update(p, fields); err != nil {
		return Result{}, err
	}
	return Result{Program: p, Message: fmt.Sprintf("Updated %s of %s", req.Field, p.Name)}, nil
}

func (s *Service) download(ctx context.Context, req Request) (Result, error) {
	p := req.Program
	already := p.IsDownloaded()
	if err := s.manager.Download(ctx, p); err != nil {
		return Result{Program: p, Message: fmt.Sprintf("Download of %s failed", p.Name)}, err
	}
	if already {
		return Result{Program: p, Message: fmt.Sprintf("%s is already downloaded.", p.Name)}, nil
	}
	return Result{Program: p, Message: fmt.Sprintf("Downloaded %s", p.Filename)}, nil
}

func (s *Service) execute(_ context.Context, req Request) (Result, error) {
	if err := s.manager.Execute(req.Program); err != nil {
		return Result{Program: req.Program}, err
	}
	return Result{Program: req.Program, Message: fmt.Sprintf("Opened %s", req.Program.LocalPath)}, nil
}

func (s *Service) remove(_ context.Context, req Request) (Result, error) {
	if err := s.manager.Remove(req.Program); err != nil {
		return Result{Program: req.Program}, err
	}
	return Result{Message: fmt.Sprintf("Removed %s", req.Program.Name)}, nil
}

func (s *Service) deleteFile(_ context.Context, req Request) (Result, error) {
	p := req.Program
	filename := p.Filename
	if err := s.manager.DeleteFile(p); err != nil {
		return Result{Program: p}, err
	}
	return Result{Program: p, Message: fmt.Sprintf("Deleted %s", filename)}, nil
}
