package engine

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/progkeep/progkeep/internal/engine/types"
	"github.com/progkeep/progkeep/internal/testutil"
)

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	tmpDir, cleanup, err := testutil.TempDir("progkeep-fetch")
	if err != nil {
		t.Fatal(err)
	}
	defer cleanup()

	fileSize := int64(64 * types.KB)
	server := testutil.NewMockServerT(t,
		testutil.WithFileSize(fileSize),
		testutil.WithRandomData(true),
		testutil.WithFilename("single_test.bin"),
	)
	defer server.Close()

	fetcher := NewHTTPFetcher(&types.RuntimeConfig{WorkerBufferSize: 8 * types.KB})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := fetcher.FetchWithResult(ctx, server.URL(), tmpDir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := filepath.Join(tmpDir, "single_test.bin")
	if res.Path != want {
		t.Errorf("Path = %s, want %s", res.Path, want)
	}
	if res.Size != fileSize {
		t.Errorf("Size = %d, want %d", res.Size, fileSize)
	}
	if err := testutil.VerifyFileSize(want, fileSize); err != nil {
		t.Error(err)
	}

	data, _ := os.ReadFile(want)
	if string(data) != string(server.Content()) {
		t.Error("Downloaded content doesn't match served content")
	}

	if testutil.FileExists(want + types.IncompleteSuffix) {
		t.Error(".part file should be removed after successful download")
	}

	if ua := server.LastUserAgent(); ua != (&types.RuntimeConfig{}).GetUserAgent() {
		t.Errorf("Expected default user agent, got %q", ua)
	}
}

func TestHTTPFetcher_Fetch_CreatesDirectory(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-mkdir")
	defer cleanup()

	server := testutil.NewMockServerT(t, testutil.WithFileSize(128))
	defer server.Close()

	dir := filepath.Join(tmpDir, "nested", "downloads")
	path, err := NewHTTPFetcher(nil).Fetch(context.Background(), server.URL(), dir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("File written to %s, want directory %s", path, dir)
	}
}

func TestHTTPFetcher_Fetch_FilenameFromURL(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-urlname")
	defer cleanup()

	server := testutil.NewMockServerT(t,
		testutil.WithData([]byte("hello")),
		testutil.WithFilename(""),
	)
	defer server.Close()

	path, err := NewHTTPFetcher(nil).Fetch(context.Background(), server.URL()+"/files/a.txt", tmpDir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if filepath.Base(path) != "a.txt" {
		t.Errorf("Expected a.txt, got %s", filepath.Base(path))
	}
}

func TestHTTPFetcher_Fetch_SniffsExtension(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-sniff")
	defer cleanup()

	png := append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)
	server := testutil.NewMockServerT(t,
		testutil.WithData(png),
		testutil.WithFilename(""),
		testutil.WithContentType("image/png"),
	)
	defer server.Close()

	path, err := NewHTTPFetcher(nil).Fetch(context.Background(), server.URL()+"/logo", tmpDir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if filepath.Base(path) != "logo.png" {
		t.Errorf("Expected logo.png, got %s", filepath.Base(path))
	}
}

func TestHTTPFetcher_Fetch_ExistingFileNotOverwritten(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-dup")
	defer cleanup()

	existing, _ := testutil.CreateTestFile(tmpDir, "testfile.bin", 10, false)

	server := testutil.NewMockServerT(t, testutil.WithFileSize(100))
	defer server.Close()

	path, err := NewHTTPFetcher(nil).Fetch(context.Background(), server.URL(), tmpDir)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if filepath.Base(path) != "testfile (1).bin" {
		t.Errorf("Expected testfile (1).bin, got %s", filepath.Base(path))
	}
	if err := testutil.VerifyFileSize(existing, 10); err != nil {
		t.Errorf("existing file was modified: %v", err)
	}
}

func TestHTTPFetcher_Fetch_ServerError(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-404")
	defer cleanup()

	server := testutil.NewMockServerT(t, testutil.WithStatusCode(http.StatusNotFound))
	defer server.Close()

	_, err := NewHTTPFetcher(nil).Fetch(context.Background(), server.URL(), tmpDir)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Errorf("Expected StatusError 404, got %v", err)
	}

	entries, _ := os.ReadDir(tmpDir)
	if len(entries) != 0 {
		t.Errorf("Expected empty directory after failure, found %d entries", len(entries))
	}
}

func TestHTTPFetcher_Fetch_FailAfterBytes(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-failafter")
	defer cleanup()

	fileSize := int64(256 * types.KB)
	server := testutil.NewMockServerT(t,
		testutil.WithFileSize(fileSize),
		testutil.WithFailAfterBytes(50*types.KB),
	)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := NewHTTPFetcher(nil).Fetch(ctx, server.URL(), tmpDir)
	if err == nil {
		t.Fatal("Expected error when server fails mid-transfer")
	}

	if testutil.FileExists(filepath.Join(tmpDir, "testfile.bin"+types.IncompleteSuffix)) {
		t.Error("Partial file should be cleaned up")
	}
	if testutil.FileExists(filepath.Join(tmpDir, "testfile.bin")) {
		t.Error("No final file should exist after a failed transfer")
	}
}

func TestHTTPFetcher_Fetch_Cancellation(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-cancel")
	defer cleanup()

	server := testutil.NewMockServerT(t,
		testutil.WithFileSize(5*types.MB),
		testutil.WithByteLatency(20*time.Millisecond),
	)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := NewHTTPFetcher(nil).Fetch(ctx, server.URL(), tmpDir)
		done <- err
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Expected an error after cancellation")
		}
		if !errors.Is(err, context.Canceled) {
			t.Logf("Expected context.Canceled, got: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch didn't respond to cancellation")
	}
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-invalid")
	defer cleanup()

	for _, raw := range []string{"", "ftp://example.com/a", "not a url", "http://"} {
		if _, err := NewHTTPFetcher(nil).Fetch(context.Background(), raw, tmpDir); err == nil {
			t.Errorf("Expected error for %q", raw)
		}
	}
}

func TestHTTPFetcher_CustomUserAgentAndHeaders(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-ua")
	defer cleanup()

	seen := make(chan http.Header, 1)
	server := testutil.NewMockServerT(t, testutil.WithHandler(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	fetcher := NewHTTPFetcher(&types.RuntimeConfig{UserAgent: "progkeep/test"})
	fetcher.Headers = map[string]string{"Cookie": "session=1"}

	if _, err := fetcher.Fetch(context.Background(), server.URL(), tmpDir); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	header := <-seen
	if ua := header.Get("User-Agent"); ua != "progkeep/test" {
		t.Errorf("Expected custom user agent, got %q", ua)
	}
	if cookie := header.Get("Cookie"); cookie != "session=1" {
		t.Errorf("Expected cookie header, got %q", cookie)
	}
}

func TestHTTPFetcher_RateLimit(t *testing.T) {
	tmpDir, cleanup, _ := testutil.TempDir("progkeep-fetch-rate")
	defer cleanup()

	server := testutil.NewMockServerT(t, testutil.WithFileSize(8*types.KB))
	defer server.Close()

	fetcher := NewHTTPFetcher(&types.RuntimeConfig{RateLimit: 4 * types.KB})
	if fetcher.limiter == nil {
		t.Fatal("Expected a limiter when RateLimit is set")
	}

	start := time.Now()
	if _, err := fetcher.Fetch(context.Background(), server.URL(), tmpDir); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	// 4KB burst, then 4KB at 4KB/s.
	if elapsed := time.Since(start); elapsed < 800*time.Millisecond {
		t.Errorf("Rate limit not applied, took %v", elapsed)
	}
}

func TestNewHTTPFetcher_Transport(t *testing.T) {
	tests := []struct {
		name       string
		runtime    *types.RuntimeConfig
		wantProxy  bool
		wantTLSOff bool
	}{
		{"nil runtime", nil, true, false},
		{"http proxy", &types.RuntimeConfig{ProxyURL: "http://127.0.0.1:8080"}, true, false},
		{"socks5 proxy", &types.RuntimeConfig{ProxyURL: "socks5://127.0.0.1:1080"}, false, false},
		{"skip tls", &types.RuntimeConfig{SkipTLSVerification: true}, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewHTTPFetcher(tt.runtime)
			tr, ok := f.Client.Transport.(*http.Transport)
			if !ok {
				t.Fatalf("unexpected transport type %T", f.Client.Transport)
			}
			if (tr.Proxy != nil) != tt.wantProxy {
				t.Errorf("Proxy set = %v, want %v", tr.Proxy != nil, tt.wantProxy)
			}
			tlsOff := tr.TLSClientConfig != nil && tr.TLSClientConfig.InsecureSkipVerify
			if tlsOff != tt.wantTLSOff {
				t.Errorf("InsecureSkipVerify = %v, want %v", tlsOff, tt.wantTLSOff)
			}
			if tr.DialContext == nil {
				t.Error("DialContext should always be set")
			}
		})
	}
}

func TestAverageSpeed(t *testing.T) {
	tests := []struct {
		name    string
		written int64
		elapsed time.Duration
		want    int64
	}{
		{"one second", 2048, time.Second, 2048},
		{"half second", 1000, 500 * time.Millisecond, 2000},
		{"zero elapsed", 4096, 0, 0},
		{"clock went backwards", 4096, -time.Millisecond, 0},
		{"nothing written", 0, time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := averageSpeed(tt.written, tt.elapsed); got != tt.want {
				t.Errorf("averageSpeed(%d, %v) = %d, want %d", tt.written, tt.elapsed, got, tt.want)
			}
		})
	}
}
