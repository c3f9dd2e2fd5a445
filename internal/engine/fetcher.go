package engine

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"

	"github.com/progkeep/progkeep/internal/engine/types"
	"github.com/progkeep/progkeep/internal/utils"
)

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// HTTPFetcher downloads a URL into a directory over a single connection.
// Interrupted downloads are discarded and restart from the beginning.
type HTTPFetcher struct {
	Client  *http.Client
	Runtime *types.RuntimeConfig
	Headers map[string]string // Extra request headers (cookies, auth, etc.)

	limiter *rate.Limiter
	chunk   int
}

// NewHTTPFetcher creates a fetcher configured from runtime (proxy, TLS, user agent, rate limit).
func NewHTTPFetcher(runtime *types.RuntimeConfig) *HTTPFetcher {
	client := &http.Client{
		Timeout:   0,
		Transport: newTransport(runtime),
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= types.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", types.MaxRedirects)
			}
			return nil
		},
	}

	f := &HTTPFetcher{
		Client:  client,
		Runtime: runtime,
		chunk:   runtime.GetWorkerBufferSize(),
	}

	if limit := runtime.GetRateLimit(); limit > 0 {
		if limit < int64(f.chunk) {
			f.chunk = int(limit)
		}
		f.limiter = rate.NewLimiter(rate.Limit(limit), f.chunk)
		utils.Debug("Fetcher: rate limited to %s/s", utils.ConvertBytesToHumanReadable(limit))
	}
	return f
}

func newTransport(runtime *types.RuntimeConfig) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   types.DialTimeout,
		KeepAlive: types.KeepAliveDuration,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   types.DefaultTLSHandshakeTimeout,
		ResponseHeaderTimeout: types.DefaultResponseHeaderTimeout,
	}

	if runtime != nil && runtime.ProxyURL != "" {
		parsedURL, err := url.Parse(runtime.ProxyURL)
		if err != nil {
			utils.Debug("Fetcher: Invalid proxy URL %s: %v", runtime.ProxyURL, err)
			transport.Proxy = http.ProxyFromEnvironment
		} else if strings.HasPrefix(parsedURL.Scheme, "socks5") {
			utils.Debug("Fetcher: Using SOCKS5 proxy: %s", runtime.ProxyURL)
			var auth *proxy.Auth
			if parsedURL.User != nil {
				pass, _ := parsedURL.User.Password()
				auth = &proxy.Auth{User: parsedURL.User.Username(), Password: pass}
			}
			socks, dialErr := proxy.SOCKS5("tcp", parsedURL.Host, auth, dialer)
			if dialErr != nil {
				utils.Debug("Fetcher: Failed to create SOCKS5 dialer: %v", dialErr)
				transport.Proxy = http.ProxyFromEnvironment
			} else if cd, ok := socks.(proxy.ContextDialer); ok {
				transport.DialContext = cd.DialContext
			} else {
				transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
					return socks.Dial(network, addr)
				}
			}
		} else {
			transport.Proxy = http.ProxyURL(parsedURL)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	if runtime != nil && runtime.SkipTLSVerification {
		utils.Debug("Fetcher: TLS verification disabled")
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}
	return transport
}

// Fetch downloads rawurl into dir and returns the path of the written file.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawurl, dir string) (string, error) {
	res, err := f.FetchWithResult(ctx, rawurl, dir)
	if err != nil {
		return "", err
	}
	return res.Path, nil
}

// FetchWithResult is Fetch with size and timing details.
func (f *HTTPFetcher) FetchWithResult(ctx context.Context, rawurl, dir string) (*types.FetchResult, error) {
	if err := utils.ValidateURL(rawurl); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawurl, nil)
	if err != nil {
		return nil, err
	}
	for key, val := range f.Headers {
		req.Header.Set(key, val)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", f.Runtime.GetUserAgent())
	}

	utils.Debug("Fetching %s into %s", rawurl, dir)
	start := time.Now()

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			utils.Debug("Error closing response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body := bufio.NewReaderSize(resp.Body, max(f.chunk, utils.SniffLen))
	head, _ := body.Peek(utils.SniffLen)

	filename := utils.DetermineFilename(rawurl, resp, head, types.FallbackFilename)
	destPath := utils.UniqueFilePath(dir, filename)

	workingPath := destPath + types.IncompleteSuffix
	outFile, err := os.Create(workingPath)
	if err != nil {
		return nil, err
	}

	success := false
	defer func() {
		_ = outFile.Close()
		if !success {
			_ = os.Remove(workingPath)
		}
	}()

	written, err := f.copy(ctx, outFile, body)
	if err != nil {
		return nil, err
	}
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return nil, fmt.Errorf("incomplete download: got %d of %d bytes", written, resp.ContentLength)
	}

	if err := outFile.Sync(); err != nil {
		return nil, fmt.Errorf("sync error: %w", err)
	}
	if err := outFile.Close(); err != nil {
		return nil, fmt.Errorf("close error: %w", err)
	}

	if err := utils.MoveFile(workingPath, destPath); err != nil {
		return nil, fmt.Errorf("failed to finalize file: %w", err)
	}
	success = true

	elapsed := time.Since(start)
	utils.Debug("Downloaded %s in %s (%s/s)",
		destPath,
		elapsed.Round(time.Millisecond),
		utils.ConvertBytesToHumanReadable(averageSpeed(written, elapsed)),
	)

	return &types.FetchResult{
		Path:    destPath,
		Size:    written,
		Elapsed: elapsed.Milliseconds(),
	}, nil
}

// averageSpeed returns bytes per second, or 0 when no time was measured.
func averageSpeed(written int64, elapsed time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}
	return int64(float64(written) / elapsed.Seconds())
}

func (f *HTTPFetcher) copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var written int64
	buf := make([]byte, f.chunk)

	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			if f.limiter != nil {
				if err := f.limiter.WaitN(ctx, nr); err != nil {
					return written, err
				}
			}
			nw, writeErr := dst.Write(buf[:nr])
			if nw > 0 {
				written += int64(nw)
			}
			if writeErr != nil {
				return written, fmt.Errorf("write error: %w", writeErr)
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return written, nil
			}
			return written, fmt.Errorf("read error: %w", readErr)
		}
	}
}
