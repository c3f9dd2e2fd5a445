package utils

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(t *testing.T, finalURL string, header http.Header) *http.Response {
	t.Helper()
	u, err := url.Parse(finalURL)
	require.NoError(t, err)
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{Header: header, Request: &http.Request{URL: u}}
}

// pngHead is the PNG signature followed by an IHDR chunk header.
var pngHead = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestDetermineFilename(t *testing.T) {
	tests := []struct {
		name   string
		rawurl string
		final  string
		header http.Header
		head   []byte
		want   string
	}{
		{
			name:   "content disposition wins",
			rawurl: "http://example.com/download?id=1",
			final:  "http://example.com/download?id=1",
			header: http.Header{"Content-Disposition": {`attachment; filename="tool-1.2.zip"`}},
			want:   "tool-1.2.zip",
		},
		{
			name:   "disposition path components stripped",
			rawurl: "http://example.com/x",
			final:  "http://example.com/x",
			header: http.Header{"Content-Disposition": {`attachment; filename="../../etc/passwd"`}},
			want:   "passwd",
		},
		{
			name:   "final url after redirect",
			rawurl: "http://example.com/latest",
			final:  "http://cdn.example.com/files/setup-2.0.exe",
			want:   "setup-2.0.exe",
		},
		{
			name:   "fallback when url has no segment",
			rawurl: "http://example.com/",
			final:  "http://example.com/",
			want:   "download.bin",
		},
		{
			name:   "sniffed extension",
			rawurl: "http://example.com/image",
			final:  "http://example.com/image",
			head:   pngHead,
			want:   "image.png",
		},
		{
			name:   "existing extension kept",
			rawurl: "http://example.com/a.txt",
			final:  "http://example.com/a.txt",
			head:   pngHead,
			want:   "a.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := response(t, tt.final, tt.header)
			got := DetermineFilename(tt.rawurl, resp, tt.head, "download.bin")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetermineFilename_NilResponse(t *testing.T) {
	assert.Equal(t, "a.txt", DetermineFilename("http://example.com/a.txt", nil, nil, "x"))
}

func TestUniqueFilePath(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, "a.txt"), UniqueFilePath(dir, "a.txt"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "a (1).txt"), UniqueFilePath(dir, "a.txt"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a (1).txt"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "a (2).txt"), UniqueFilePath(dir, "a.txt"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "noext"), nil, 0o644))
	assert.Equal(t, filepath.Join(dir, "noext (1)"), UniqueFilePath(dir, "noext"))
}
