package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/progkeep/progkeep/internal/manager"
)

// linePrompter asks questions on a line-oriented terminal.
type linePrompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

var _ manager.Prompter = (*linePrompter)(nil)

func newLinePrompter(in io.Reader, out io.Writer, assumeYes bool) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out, assumeYes: assumeYes}
}

// readLine returns the next trimmed line. ok is false at end of input.
func (p *linePrompter) readLine(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), true, nil
		}
		if err == io.EOF {
			return "", false, nil
		}
		return "", false, err
	}
	return strings.TrimSpace(line), true, nil
}

// PickDirectory reads a folder path. An empty answer keeps initial and end
// of input cancels.
func (p *linePrompter) PickDirectory(ctx context.Context, initial string) (string, error) {
	fmt.Fprintf(p.out, "Download folder [%s]: ", initial)
	line, ok, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		fmt.Fprintln(p.out)
		return "", manager.ErrCancelled
	}
	if line == "" {
		return initial, nil
	}
	return line, nil
}

func (p *linePrompter) Confirm(ctx context.Context, _, message string) (bool, error) {
	if p.assumeYes {
		fmt.Fprintf(p.out, "%s [y/N]: y\n", message)
		return true, nil
	}
	fmt.Fprintf(p.out, "%s [y/N]: ", message)
	line, ok, err := p.readLine(ctx)
	if err != nil || !ok {
		return false, err
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *linePrompter) Ask(ctx context.Context, _, message, initial string) (string, bool, error) {
	if initial != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", message, initial)
	} else {
		fmt.Fprintf(p.out, "%s: ", message)
	}
	line, ok, err := p.readLine(ctx)
	if err != nil || !ok {
		return "", false, err
	}
	if line == "" {
		return initial, true, nil
	}
	return line, true, nil
}
