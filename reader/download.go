package reader

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/regexp"
)

// MaxDownloadBytes bounds the size of a downloaded file.
const MaxDownloadBytes = 2 << 30

var reDriveID = regexp.MustCompile(`^https?://(?:drive|docs)\.google\.com/(?:file/d/|open\?(?:.*&)?id=|uc\?(?:.*&)?id=)([A-Za-z0-9_-]+)`)

// extByContentType names downloads whose URL and headers carry no file name.
var extByContentType = map[string]string{
	"text/csv":                  ".csv",
	"text/plain":                ".txt",
	"text/tab-separated-values": ".txt",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"application/vnd.ms-excel.sheet.macroenabled.12":                    ".xlsm",
	"application/vnd.apache.parquet":                                    ".parquet",
	"application/x-parquet":                                             ".parquet",
}

type downloadConfig struct {
	client *http.Client
	logger log.Logger
}

// DownloadOption configures Download.
type DownloadOption func(*downloadConfig)

// WithHTTPClient sets the client used for the request.
func WithHTTPClient(c *http.Client) DownloadOption {
	return func(cfg *downloadConfig) {
		cfg.client = c
	}
}

// WithDownloadLogger sets the logger for download progress.
func WithDownloadLogger(l log.Logger) DownloadOption {
	return func(cfg *downloadConfig) {
		cfg.logger = l
	}
}

// DriveDownloadURL rewrites a Google Drive share link into its direct
// download URL. Other URLs are returned unchanged.
func DriveDownloadURL(rawURL string) string {
	m := reDriveID.FindStringSubmatch(rawURL)
	if m == nil {
		return rawURL
	}
	return "https://drive.google.com/uc?export=download&id=" + m[1]
}

// Download fetches rawURL into dir and returns the local path. The file
// name comes from the Content-Disposition header, then the URL path, then
// the content type.
func Download(ctx context.Context, rawURL, dir string, opts ...DownloadOption) (string, error) {
	cfg := downloadConfig{
		client: &http.Client{Timeout: 10 * time.Minute},
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	u, err := url.Parse(DriveDownloadURL(rawURL))
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: url scheme %q (want http or https)", ErrUnsupportedFormat, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	start := time.Now()
	resp, err := cfg.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("failed to download %s: unexpected status code: %d", rawURL, resp.StatusCode)
	}

	name := downloadName(resp, u)
	tmp, err := os.CreateTemp(dir, ".askdata-*")
	if err != nil {
		return "", fmt.Errorf("failed to create download file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, MaxDownloadBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", fmt.Errorf("failed to save %s: %w", rawURL, err)
	}
	if n > MaxDownloadBytes {
		return "", fmt.Errorf("download %s exceeds %s", rawURL, humanize.IBytes(MaxDownloadBytes))
	}

	dest := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", dest, err)
	}
	level.Info(cfg.logger).Log("msg", "downloaded data file", "url", rawURL, "path", dest,
		"size", humanize.Bytes(uint64(n)), "duration", time.Since(start))
	return dest, nil
}

func downloadName(resp *http.Response, u *url.URL) string {
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		if name := safeName(params["filename"]); name != "" {
			return name
		}
	}
	if name := safeName(path.Base(u.Path)); name != "" && path.Ext(name) != "" {
		return name
	}
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if ext, ok := extByContentType[strings.ToLower(mediaType)]; ok {
		return "download" + ext
	}
	return "download.csv"
}

// safeName strips directories from a server-supplied name.
func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
