package registry

import (
	"archive/tar"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/klauspost/compress/gzip"

	"github.com/cratesweep/cratesweep/pkg/logger"
	"github.com/cratesweep/cratesweep/pkg/utils"
)

// unpackedMarker is written into a source directory once it is complete
const unpackedMarker = ".cratesweep-ok"

// maxArchiveSize bounds a single downloaded archive
const maxArchiveSize = 512 << 20

// Downloader fetches package archives from the registry's download endpoint
type Downloader struct {
	baseURL    string
	client     *http.Client
	maxTries   uint
	newBackOff func() backoff.BackOff
	logger     logger.Logger
}

// DownloaderOption configures a Downloader
type DownloaderOption func(*Downloader)

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(c *http.Client) DownloaderOption {
	return func(d *Downloader) { d.client = c }
}

// WithRetries sets the retry policy for transient failures
func WithRetries(maxTries uint, newBackOff func() backoff.BackOff) DownloaderOption {
	return func(d *Downloader) {
		d.maxTries = maxTries
		d.newBackOff = newBackOff
	}
}

// NewDownloader creates a downloader for baseURL
func NewDownloader(baseURL string, log logger.Logger, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: 5 * time.Minute},
		maxTries: 4,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		logger: log,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ArchiveURL returns the download location of one version
func (d *Downloader) ArchiveURL(name, version string) string {
	return fmt.Sprintf("%s/%s/%s-%s.crate", d.baseURL, url.PathEscape(name), url.PathEscape(name), url.PathEscape(version))
}

// Fetch downloads the archive of e and verifies it against the index checksum
func (d *Downloader) Fetch(ctx context.Context, e IndexEntry) ([]byte, error) {
	target := d.ArchiveURL(e.Name, e.Version)

	data, err := backoff.Retry(ctx, func() ([]byte, error) {
		return d.get(ctx, target)
	},
		backoff.WithBackOff(d.newBackOff()),
		backoff.WithMaxTries(d.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			d.logger.Warn("Download failed, retrying",
				logger.WithField("url", target),
				logger.WithField("retry_in", next),
				logger.WithError(err))
		}),
	)
	if err != nil {
		return nil, err
	}

	if e.Checksum != "" {
		sum := sha256.Sum256(data)
		if got := hex.EncodeToString(sum[:]); !strings.EqualFold(got, e.Checksum) {
			return nil, fmt.Errorf("%w: %s-%s has sha256 %s, index says %s", ErrChecksumMismatch, e.Name, e.Version, got, e.Checksum)
		}
	}
	return data, nil
}

func (d *Downloader) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("GET %s: %s", target, resp.Status)
	default:
		return nil, backoff.Permanent(fmt.Errorf("GET %s: %s", target, resp.Status))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchiveSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxArchiveSize {
		return nil, backoff.Permanent(fmt.Errorf("GET %s: archive larger than %d bytes", target, maxArchiveSize))
	}
	return data, nil
}

// Unpacked reports whether dir holds a completely unpacked archive
func Unpacked(dir string) bool {
	return utils.FileExists(filepath.Join(dir, unpackedMarker))
}

// Unpack extracts a gzipped tar archive whose entries live under topDir
// into root/topDir. Extraction happens in a scratch directory that is
// renamed into place, so a partially unpacked tree is never visible.
func Unpack(archive []byte, root, topDir string) (string, error) {
	if err := utils.EnsureDirectory(root); err != nil {
		return "", err
	}
	scratch, err := os.MkdirTemp(root, ".unpack-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(scratch)

	if err := extract(archive, scratch); err != nil {
		return "", err
	}

	unpacked := filepath.Join(scratch, topDir)
	if !utils.DirectoryExists(unpacked) {
		return "", fmt.Errorf("archive has no %s directory", topDir)
	}
	if err := os.WriteFile(filepath.Join(unpacked, unpackedMarker), nil, 0644); err != nil {
		return "", err
	}

	final := filepath.Join(root, topDir)
	if err := os.RemoveAll(final); err != nil {
		return "", err
	}
	if err := os.Rename(unpacked, final); err != nil {
		return "", err
	}
	return final, nil
}

func extract(archive []byte, dest string) error {
	zr, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("invalid gzip stream: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("invalid tar stream: %w", err)
		}

		path, err := utils.SafeJoin(dest, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(path, tr, hdr.FileInfo().Mode()); err != nil {
				return err
			}
		default:
			// Links and devices are not part of a published source archive
		}
	}
}

func writeEntry(path string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
