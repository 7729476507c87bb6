// Package fetch downloads the published search index blob to a local cache file.
package fetch

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxBytes caps a downloaded blob after decompression.
const DefaultMaxBytes = 256 << 20

var gzipMagic = []byte{0x1f, 0x8b}

// ErrTooLarge is returned when a download exceeds the size limit.
var ErrTooLarge = errors.New("download exceeds size limit")

// Fetcher downloads blobs over HTTP.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
	// Logger is used for informational messages. nil means slog.Default().
	Logger *slog.Logger
}

// New returns a Fetcher with a 60 second client timeout.
func New() *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: 60 * time.Second},
		MaxBytes: DefaultMaxBytes,
	}
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}

// EnsureBlob checks if a file exists at path.
// If not, it downloads url and writes it there, unpacking gzip content on the way.
func EnsureBlob(ctx context.Context, url, path string) error {
	return New().EnsureBlob(ctx, url, path)
}

// EnsureBlob is the method form of the package-level EnsureBlob.
func (f *Fetcher) EnsureBlob(ctx context.Context, url, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	f.logger().Info("index not cached, downloading", "url", url, "path", path)
	return f.Download(ctx, url, path)
}

// Download fetches url into path unconditionally. The file is written to a temporary name in
// the same directory and renamed once complete, so path never holds a partial blob.
func (f *Fetcher) Download(ctx context.Context, url, path string) error {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "kanjigraph")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	body, err := decompressed(resp.Body, strings.HasSuffix(url, ".gz"))
	if err != nil {
		return err
	}
	defer body.Close()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	n, err := io.Copy(tmp, io.LimitReader(body, limit+1))
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if n > limit {
		tmp.Close()
		return fmt.Errorf("%s: %w (%d bytes)", url, ErrTooLarge, limit)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move into place: %w", err)
	}
	f.logger().Info("index downloaded", "path", path, "bytes", n, "elapsed", time.Since(start))
	return nil
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }

// decompressed unwraps gzip content, detected by the magic bytes or forced by a .gz name.
func decompressed(r io.Reader, forceGzip bool) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read download: %w", err)
	}
	if !forceGzip && !bytes.Equal(head, gzipMagic) {
		return io.NopCloser(br), nil
	}
	zr, err := gzip.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	return readCloser{Reader: zr, close: zr.Close}, nil
}
