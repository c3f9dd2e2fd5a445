package core

import (
	"fmt"

	"github.com/progkeep/progkeep/internal/program"
)

// Command identifies one operation of the command surface.
type Command int

const (
	CmdSetDownloadPath Command = iota + 1
	CmdDownloadAll
	CmdOpenDownloadDir
	CmdBrowse
	CmdAddProgram
	CmdView
	CmdUpdate
	CmdDownload
	CmdExecute
	CmdRemove
	CmdDeleteFile
)

var commandNames = map[Command]string{
	CmdSetDownloadPath: "set-download-path",
	CmdDownloadAll:     "download-all",
	CmdOpenDownloadDir: "open-download-dir",
	CmdBrowse:          "browse",
	CmdAddProgram:      "add-program",
	CmdView:            "view",
	CmdUpdate:          "update",
	CmdDownload:        "download",
	CmdExecute:         "execute",
	CmdRemove:          "remove",
	CmdDeleteFile:      "delete-file",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// NeedsProgram reports whether the command acts on a single program.
func (c Command) NeedsProgram() bool {
	switch c {
	case CmdView, CmdUpdate, CmdDownload, CmdExecute, CmdRemove, CmdDeleteFile:
		return true
	}
	return false
}

// Mutates reports whether the program list must be saved after the command.
func (c Command) Mutates() bool {
	switch c {
	case CmdSetDownloadPath, CmdDownloadAll, CmdAddProgram, CmdUpdate, CmdDownload, CmdRemove, CmdDeleteFile:
		return true
	}
	return false
}

// Field selects what CmdUpdate edits.
type Field int

const (
	FieldName Field = iota + 1
	FieldDescription
	FieldURL
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldDescription:
		return "description"
	case FieldURL:
		return "URL"
	default:
		return "unknown"
	}
}

// MenuItem is one entry of a presentation menu.
type MenuItem struct {
	Command Command
	Label   string
}

// MainMenu lists the top-level commands in display order.
func MainMenu() []MenuItem {
	return []MenuItem{
		{CmdSetDownloadPath, "Set downloads folder"},
		{CmdDownloadAll, "Download everything"},
		{CmdOpenDownloadDir, "Open downloads folder"},
		{CmdBrowse, "Browse programs"},
		{CmdAddProgram, "Add program"},
	}
}

// ProgramMenu lists the commands for p. A downloaded program offers
// Execute in place of Download file.
func ProgramMenu(p *program.Program) []MenuItem {
	first := MenuItem{CmdDownload, "Download file"}
	if p != nil && p.IsDownloaded() {
		first = MenuItem{CmdExecute, "Execute"}
	}
	return []MenuItem{
		first,
		{CmdView, "View data"},
		{CmdUpdate, "Update data"},
		{CmdRemove, "Remove data"},
		{CmdDeleteFile, "Delete file"},
	}
}

// UpdateItem is one entry of the update submenu.
type UpdateItem struct {
	Field Field
	Label string
}

func UpdateMenu() []UpdateItem {
	return []UpdateItem{
		{FieldName, "Modify name"},
		{FieldDescription, "Modify description"},
		{FieldURL, "Modify URL"},
	}
}
