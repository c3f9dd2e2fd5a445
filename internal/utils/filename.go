package utils

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/vfaronov/httpheader"
)

// SniffLen is the number of leading bytes DetermineFilename needs for type detection.
const SniffLen = 261

// DetermineFilename picks a filename for a response, in order of preference:
// the Content-Disposition filename, the last segment of the final URL, the
// last segment of rawurl, then fallback. A name without an extension gets
// one from the content type sniffed from head.
func DetermineFilename(rawurl string, resp *http.Response, head []byte, fallback string) string {
	var name string

	if resp != nil {
		if _, filename, _ := httpheader.ContentDisposition(resp.Header); filename != "" {
			name = SanitizeFilename(filename)
			if name != "" {
				Debug("Filename from Content-Disposition: %s", name)
			}
		}
		if name == "" && resp.Request != nil && resp.Request.URL != nil {
			name = FilenameFromURL(resp.Request.URL.String())
		}
	}
	if name == "" {
		name = FilenameFromURL(rawurl)
	}
	if name == "" {
		name = fallback
	}

	if filepath.Ext(name) == "" && len(head) > 0 {
		if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
			Debug("Sniffed %s for %s", kind.MIME.Value, name)
			name = name + "." + kind.Extension
		}
	}
	return name
}

// UniqueFilePath returns dir/name, or "name (n).ext" with the smallest n
// for which nothing exists yet.
func UniqueFilePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	if !pathTaken(candidate) {
		return candidate
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if !pathTaken(candidate) {
			return candidate
		}
	}
}

func pathTaken(p string) bool {
	_, err := os.Lstat(p)
	return err == nil
}
