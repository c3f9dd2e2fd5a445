package program

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/progkeep/progkeep/internal/engine/events"
	"github.com/progkeep/progkeep/internal/utils"
)

// ConfigFileName is the name of the program list stored in the download folder.
const ConfigFileName = "downloads.json"

// Collection is an ordered list of programs. Duplicate URLs are allowed.
type Collection struct {
	programs []*Program
	events   chan<- any
}

func NewCollection(programs ...*Program) *Collection {
	c := &Collection{}
	c.Add(programs...)
	return c
}

// SetEvents routes events of the collection and of every program in it to ch.
func (c *Collection) SetEvents(ch chan<- any) {
	c.events = ch
	for _, p := range c.programs {
		p.SetEvents(ch)
	}
}

// Add appends programs in order.
func (c *Collection) Add(programs ...*Program) {
	for _, p := range programs {
		if p == nil {
			continue
		}
		if c.events != nil {
			p.SetEvents(c.events)
		}
		c.programs = append(c.programs, p)
		events.Publish(c.events, events.ProgramAddedMsg{ProgramID: p.ID, Name: p.Name, URL: p.URL})
	}
}

// Programs returns a snapshot of the entries in order.
func (c *Collection) Programs() []*Program {
	return slices.Clone(c.programs)
}

func (c *Collection) Len() int {
	return len(c.programs)
}

// Remove drops p from the collection. A recorded local file is deleted first;
// if that fails the entry is kept and the error returned.
func (c *Collection) Remove(p *Program) error {
	idx := slices.Index(c.programs, p)
	if idx < 0 {
		return ErrProgramNotFound
	}
	if p.LocalPath != "" {
		if err := p.Delete(); err != nil {
			return fmt.Errorf("remove %s: %w", p.Name, err)
		}
	}
	c.drop(idx)
	return nil
}

// Forget drops p without touching the disk.
func (c *Collection) Forget(p *Program) error {
	idx := slices.Index(c.programs, p)
	if idx < 0 {
		return ErrProgramNotFound
	}
	c.drop(idx)
	return nil
}

func (c *Collection) drop(idx int) {
	p := c.programs[idx]
	c.programs = slices.Delete(c.programs, idx, idx+1)
	utils.Debug("[%s] Removed from collection", p.Name)
	events.Publish(c.events, events.ProgramRemovedMsg{ProgramID: p.ID, Name: p.Name})
}

// programRecord is the persisted form of a Program.
type programRecord struct {
	ID             string  `json:"id"`
	Status         Status  `json:"status"`
	URL            string  `json:"url"`
	DownloadPath   string  `json:"downloadPath"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ExecutablePath *string `json:"executablePath"`
	Filename       string  `json:"filename"`
}

// programInput mirrors programRecord for decoding; URL is a pointer so that
// a missing key can be told apart from an empty one.
type programInput struct {
	ID             string  `json:"id"`
	Status         Status  `json:"status"`
	URL            *string `json:"url"`
	DownloadPath   string  `json:"downloadPath"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	ExecutablePath *string `json:"executablePath"`
	Filename       string  `json:"filename"`
}

type document struct {
	Programs []programRecord `json:"programs"`
}

type inputDocument struct {
	Programs *[]json.RawMessage `json:"programs"`
}

func toRecord(p *Program) programRecord {
	rec := programRecord{
		ID:           p.ID,
		Status:       p.Status,
		URL:          p.URL,
		DownloadPath: p.DownloadDir,
		Name:         p.Name,
		Description:  p.Description,
		Filename:     p.Filename,
	}
	if p.LocalPath != "" {
		path := p.LocalPath
		rec.ExecutablePath = &path
	}
	return rec
}

// MarshalJSON encodes the collection as the downloads.json document.
func (c *Collection) MarshalJSON() ([]byte, error) {
	doc := document{Programs: make([]programRecord, 0, len(c.programs))}
	for _, p := range c.programs {
		doc.Programs = append(doc.Programs, toRecord(p))
	}
	return json.Marshal(doc)
}

// DecodePrograms parses a downloads.json document. Absent fields take their
// defaults and defaultDir stands in for a missing downloadPath. Unknown keys,
// wrong types, unknown statuses and entries without a url are rejected with
// ErrMalformedConfiguration.
func DecodePrograms(data []byte, defaultDir string) ([]*Program, error) {
	var doc inputDocument
	if err := strictDecode(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedConfiguration, err)
	}
	if doc.Programs == nil {
		return nil, fmt.Errorf("%w: missing \"programs\"", ErrMalformedConfiguration)
	}

	programs := make([]*Program, 0, len(*doc.Programs))
	for i, raw := range *doc.Programs {
		in := programInput{
			Status:       StatusPending,
			DownloadPath: defaultDir,
			Name:         DefaultName,
			Description:  DefaultDescription,
			Filename:     NotDownloadedFilename,
		}
		if err := strictDecode(raw, &in); err != nil {
			return nil, fmt.Errorf("%w: program %d: %w", ErrMalformedConfiguration, i, err)
		}
		if in.URL == nil || *in.URL == "" {
			return nil, fmt.Errorf("%w: program %d: missing \"url\"", ErrMalformedConfiguration, i)
		}

		p := &Program{
			ID:          in.ID,
			URL:         *in.URL,
			DownloadDir: in.DownloadPath,
			Name:        in.Name,
			Description: in.Description,
			Status:      in.Status,
			Filename:    in.Filename,
		}
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if in.ExecutablePath != nil {
			p.LocalPath = *in.ExecutablePath
		}
		programs = append(programs, p)
	}
	return programs, nil
}

func strictDecode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("unexpected data after document")
	}
	return nil
}

// ConfigPath returns the location of downloads.json inside dir.
func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// Save writes downloads.json into dir atomically and returns its path.
func (c *Collection) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode programs: %w", err)
	}

	path := ConfigPath(dir)
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return "", fmt.Errorf("failed to lock %s: %w", path, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			utils.Debug("Error unlocking %s: %v", path, err)
		}
	}()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to replace %s: %w", path, err)
	}

	utils.Debug("Saved %d programs to %s", len(c.programs), path)
	events.Publish(c.events, events.ConfigSavedMsg{Path: path, Programs: len(c.programs)})
	return path, nil
}

// Load replaces the collection with the contents of dir/downloads.json.
// On any error the collection is left empty.
func (c *Collection) Load(dir string) error {
	c.programs = nil
	path := ConfigPath(dir)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.RLock(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", path, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			utils.Debug("Error unlocking %s: %v", path, err)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	programs, err := DecodePrograms(data, dir)
	if err != nil {
		utils.Debug("Rejected %s: %v", path, err)
		return fmt.Errorf("failed to load %s: %w", path, err)
	}

	for _, p := range programs {
		p.SetEvents(c.events)
	}
	c.programs = programs

	utils.Debug("Loaded %d programs from %s", len(programs), path)
	events.Publish(c.events, events.ConfigLoadedMsg{Path: path, Programs: len(programs)})
	return nil
}
