// Package fetch retrieves example dataset files from a fixed storage origin
// into the local cache. A file already present is never re-fetched; a file
// being fetched is written to a temp file, verified, and renamed into place,
// so an interrupted transfer never leaves a partial file at the target path.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dataquill/tutorkit/internal/config"
	"github.com/dataquill/tutorkit/internal/errors"
	"github.com/dataquill/tutorkit/internal/logger"
	"github.com/dataquill/tutorkit/internal/metrics"
)

type Fetcher struct {
	origin      string
	client      *http.Client
	s3          *s3Origin
	verifySums  bool
	concurrency int
	log         *logger.Logger
	metrics     *metrics.Metrics
}

func New(cfg config.FetchConfig, log *logger.Logger, m *metrics.Metrics) (*Fetcher, error) {
	if log == nil {
		log = logger.Nop()
	}
	f := &Fetcher{
		origin:      strings.TrimRight(cfg.Origin, "/"),
		client:      &http.Client{Timeout: cfg.Timeout},
		verifySums:  cfg.VerifySums,
		concurrency: cfg.Concurrency,
		log:         log,
		metrics:     m,
	}
	if strings.HasPrefix(f.origin, "s3://") {
		s3, err := newS3Origin(f.origin, cfg.S3)
		if err != nil {
			return nil, err
		}
		f.s3 = s3
	}
	return f, nil
}

// Fetch retrieves remote into target unless target already exists. sum is an
// optional sha256 in hex; empty means unverified. Network and filesystem
// errors propagate to the caller; there is no retry.
func (f *Fetcher) Fetch(ctx context.Context, remote, target, sum string) error {
	if _, err := os.Stat(target); err == nil {
		f.log.Debug("cache hit: %s", target)
		if f.metrics != nil {
			f.metrics.CacheHitsTotal.Inc()
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".partial-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name()) // no-op after a successful rename
	}()

	var n int64
	if f.s3 != nil {
		n, err = f.s3.download(ctx, remote, tmp, sumVerifier(sum, f.verifySums))
	} else {
		n, err = f.download(ctx, remote, tmp, sumVerifier(sum, f.verifySums))
	}
	if err != nil {
		return err
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}

	f.log.Info("fetched %s (%d bytes)", filepath.Base(target), n)
	if f.metrics != nil {
		f.metrics.FetchesTotal.Inc()
		f.metrics.BytesFetched.Add(float64(n))
	}
	return nil
}

func (f *Fetcher) download(ctx context.Context, remote string, w io.Writer, verify verifier) (int64, error) {
	url := f.origin + "/" + strings.TrimLeft(remote, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s fetching %s", errors.ErrBadStatus, resp.Status, url)
	}

	n, err := verify.copy(w, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.ContentLength >= 0 && n != resp.ContentLength {
		return 0, fmt.Errorf("%w: got %d of %d bytes from %s",
			errors.ErrTruncatedDownload, n, resp.ContentLength, url)
	}
	if err := verify.check(); err != nil {
		return 0, fmt.Errorf("%s: %w", url, err)
	}
	return n, nil
}

// verifier tees a download through sha256 when a sum is expected.
type verifier struct {
	want string
	hash io.Writer
	sum  func() string
}

func sumVerifier(want string, enabled bool) verifier {
	if !enabled || want == "" {
		return verifier{}
	}
	h := sha256.New()
	return verifier{
		want: want,
		hash: h,
		sum:  func() string { return hex.EncodeToString(h.Sum(nil)) },
	}
}

func (v verifier) copy(dst io.Writer, src io.Reader) (int64, error) {
	if v.hash != nil {
		dst = io.MultiWriter(dst, v.hash)
	}
	return io.Copy(dst, src)
}

func (v verifier) check() error {
	if v.hash == nil {
		return nil
	}
	if got := v.sum(); got != v.want {
		return fmt.Errorf("%w: got %s want %s", errors.ErrChecksumMismatch, got, v.want)
	}
	return nil
}
