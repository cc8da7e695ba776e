// Package fetch opens clustering sources: local files, whole directories, HTTP(S) URLs
// and standard input.
package fetch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// File size limits to prevent memory overload
const (
	MaxFileSizeBytes = 50 * 1024 * 1024  // 50MB limit for files
	MaxHTTPSizeBytes = 100 * 1024 * 1024 // 100MB limit for HTTP content (may not have Content-Length)
)

// HTTPRequestTimeout bounds a whole HTTP fetch.
const HTTPRequestTimeout = 30 * time.Second

// specific timeout thresholds (based on HTTPRequestTimeout)
var (
	HTTPDialTimeout           = HTTPRequestTimeout / 6
	HTTPTLSTimeout            = HTTPRequestTimeout / 6
	HTTPResponseHeaderTimeout = HTTPRequestTimeout / 2
)

// SupportedExtensions lists the file extensions picked up when a directory is expanded.
var SupportedExtensions = []string{".html", ".htm", ".md", ".markdown", ".txt", ".json"}

// Resource is an opened source. Callers must Close it.
type Resource struct {
	io.ReadCloser
	Source      string // the source as given by the caller
	ContentType string // Content-Type header for URLs, empty otherwise
}

// limitedReadCloser wraps an io.ReadCloser to enforce size limits
type limitedReadCloser struct {
	io.ReadCloser
	N      int64  // max bytes remaining
	source string // for error messages
}

func (l *limitedReadCloser) Read(p []byte) (n int, err error) {
	if l.N <= 0 {
		// content of exactly the limit is fine; only a further byte is an overflow
		var next [1]byte
		if m, rerr := l.ReadCloser.Read(next[:]); m == 0 && rerr == io.EOF {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("content from %q exceeds size limit", l.source)
	}
	if int64(len(p)) > l.N {
		p = p[0:l.N]
	}
	n, err = l.ReadCloser.Read(p)
	l.N -= int64(n)
	return
}

// httpClient is shared and safe for concurrent use.
var httpClient = &http.Client{
	Timeout: HTTPRequestTimeout,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: HTTPDialTimeout,
		}).DialContext,
		TLSHandshakeTimeout:   HTTPTLSTimeout,
		ResponseHeaderTimeout: HTTPResponseHeaderTimeout,
		DisableKeepAlives:     true,
	},
}

// IsURL reports whether source is fetched over HTTP.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Expand replaces every directory in sources with the supported files it contains,
// recursively and in lexical order. Other sources are kept as given.
func Expand(sources []string) ([]string, error) {
	var expanded []string

	for _, source := range sources {
		if source == "-" || IsURL(source) {
			expanded = append(expanded, source)
			continue
		}

		info, err := os.Stat(source)
		if err != nil || !info.IsDir() {
			// missing files are reported when they are opened
			expanded = append(expanded, source)
			continue
		}

		err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != source && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path))) {
				expanded = append(expanded, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %q: %w", source, err)
		}
	}

	return expanded, nil
}

// Open retrieves content from a source:
//   - "-" reads from standard input
//   - URLs starting with "http://" or "https://" are fetched via HTTP
//   - everything else is treated as a local file path
func Open(ctx context.Context, source string) (*Resource, error) {
	switch {
	case source == "-":
		return &Resource{
			ReadCloser: &limitedReadCloser{
				ReadCloser: os.Stdin,
				N:          MaxFileSizeBytes,
				source:     "stdin",
			},
			Source: source,
		}, nil
	case IsURL(source):
		return fetchURL(ctx, source)
	default:
		return fetchFile(source)
	}
}

// fetchURL retrieves content from an HTTP or HTTPS URL
func fetchURL(ctx context.Context, url string) (*Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for URL %q: %w", url, err)
	}
	req.Header.Set("User-Agent", "clump/0.1")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %q: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP request failed for URL %q: status %d", url, resp.StatusCode)
	}

	if contentLength := resp.Header.Get("Content-Length"); contentLength != "" {
		if size, err := strconv.ParseInt(contentLength, 10, 64); err == nil && size > MaxHTTPSizeBytes {
			resp.Body.Close()
			return nil, fmt.Errorf("HTTP content too large (%d bytes > %d bytes limit)", size, MaxHTTPSizeBytes)
		}
	}

	return &Resource{
		ReadCloser: &limitedReadCloser{
			ReadCloser: resp.Body,
			N:          MaxHTTPSizeBytes,
			source:     url,
		},
		Source:      url,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// fetchFile opens a local file for reading
func fetchFile(path string) (*Resource, error) {
	fileInfo, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file %q does not exist", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %q: %w", path, err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}

	if fileInfo.Size() > MaxFileSizeBytes {
		return nil, fmt.Errorf("file %q is too large (%d bytes > %d bytes limit)",
			path, fileInfo.Size(), MaxFileSizeBytes)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", path, err)
	}

	// the file may grow after Stat, and pipes or devices report no size at all
	return &Resource{
		ReadCloser: &limitedReadCloser{
			ReadCloser: file,
			N:          MaxFileSizeBytes,
			source:     path,
		},
		Source: path,
	}, nil
}
