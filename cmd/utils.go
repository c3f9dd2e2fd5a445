package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/progkeep/progkeep/internal/program"
	"github.com/progkeep/progkeep/internal/utils"
)

// readURLsFromFile reads URLs from a file, one per line.
// Blank lines and lines starting with # are skipped.
func readURLsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	scanner := bufio.NewScanner(file)

	// Allow long URLs (default is 64KB per line)
	const maxCapacity = 1024 * 1024
	scanner.Buffer(make([]byte, maxCapacity), maxCapacity)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return urls, nil
}

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// clipboardURL returns the clipboard content when it holds a single valid URL.
func clipboardURL() (string, error) {
	text, err := readClipboard()
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	text = strings.TrimSpace(text)
	if err := utils.ValidateURL(text); err != nil {
		return "", fmt.Errorf("clipboard does not hold a URL: %w", err)
	}
	return text, nil
}

// resolveProgram finds a program by full ID, unique ID prefix or exact name.
func (a *app) resolveProgram(ref string) (*program.Program, error) {
	p, err := a.manager.FindByID(ref)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, program.ErrProgramNotFound) {
		return nil, err
	}
	if p := a.manager.FindByName(ref); p != nil {
		return p, nil
	}
	return nil, err
}
