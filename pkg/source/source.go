// Package source turns a model location into a local file path. Remote
// models are downloaded into a cache directory once and read from there.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"k8s.io/klog/v2"

	"github.com/zerfoo/onnxprobe/internal/ui"
	"github.com/zerfoo/onnxprobe/pkg/downloader"
)

// ErrUnsupportedScheme is returned for locations whose scheme has no fetcher.
var ErrUnsupportedScheme = errors.New("unsupported model location scheme")

// ObjectOpener reads objects from a bucket store.
type ObjectOpener interface {
	NewReader(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// Resolver maps model locations to local paths.
type Resolver struct {
	cacheDir  string
	client    *http.Client
	objects   ObjectOpener
	progress  io.Writer
	hfAPIKey  string
	hfOptions []downloader.Option
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient sets the client used for http(s) locations.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.client = c }
}

// WithObjectOpener replaces the Cloud Storage client used for gs:// locations.
func WithObjectOpener(o ObjectOpener) Option {
	return func(r *Resolver) { r.objects = o }
}

// WithProgress draws download progress on w.
func WithProgress(w io.Writer) Option {
	return func(r *Resolver) { r.progress = w }
}

// WithHuggingFace configures hf:// locations.
func WithHuggingFace(apiKey string, opts ...downloader.Option) Option {
	return func(r *Resolver) {
		r.hfAPIKey = apiKey
		r.hfOptions = opts
	}
}

// NewResolver returns a Resolver that caches remote models under cacheDir.
func NewResolver(cacheDir string, opts ...Option) *Resolver {
	r := &Resolver{
		cacheDir: cacheDir,
		client:   &http.Client{},
		objects:  &GCSObjectOpener{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a local path for location. Plain paths and file:// URLs are
// returned without checking that the file exists. http(s)://, gs:// and
// hf://org/repo[/file] locations are fetched into the cache unless already
// there.
func (r *Resolver) Resolve(ctx context.Context, location string) (string, error) {
	scheme, _, ok := strings.Cut(location, "://")
	if !ok {
		return location, nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parsing model location %q: %w", location, err)
	}

	switch strings.ToLower(scheme) {
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return "", fmt.Errorf("file location %q names host %q; use file:///path for local files", location, u.Host)
		}
		return filepath.FromSlash(u.Path), nil
	case "http", "https":
		return r.cached(ctx, location, u, func(ctx context.Context, dst string) error {
			return r.fetchHTTP(ctx, location, dst)
		})
	case "gs":
		object := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || object == "" {
			return "", fmt.Errorf("gs location %q must name a bucket and an object", location)
		}
		return r.cached(ctx, location, u, func(ctx context.Context, dst string) error {
			return r.fetchObject(ctx, u.Host, object, dst)
		})
	case "hf":
		return r.resolveHuggingFace(ctx, u)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
}

// cachePath maps a remote location to a file under the cache directory. The
// path keeps the original file name so format detection by extension works.
func (r *Resolver) cachePath(u *url.URL) string {
	p := path.Clean("/" + sanitize(u.Host) + "/" + sanitize(u.Path))
	if u.RawQuery != "" {
		p += "_" + strings.ReplaceAll(sanitize(u.RawQuery), "/", "_")
	}
	if path.Dir(p) == "/" {
		p += "/index"
	}
	return filepath.Join(r.cacheDir, strings.ToLower(u.Scheme), filepath.FromSlash(p))
}

func (r *Resolver) cached(ctx context.Context, location string, u *url.URL, fetch func(context.Context, string) error) (string, error) {
	log := klog.FromContext(ctx).WithValues("location", location)

	dst := r.cachePath(u)
	if info, err := os.Stat(dst); err == nil && info.Mode().IsRegular() {
		log.V(2).Info("using cached model", "path", dst)
		return dst, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("creating cache directory: %w", err)
	}

	startedAt := time.Now()
	if err := fetch(klog.NewContext(ctx, log), dst); err != nil {
		return "", err
	}
	log.Info("fetched model", "path", dst, "duration", time.Since(startedAt))
	return dst, nil
}

func (r *Resolver) fetchHTTP(ctx context.Context, location, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", location, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("downloading %s: status code %s", location, resp.Status)
	}

	if _, err := r.writeToFile(ctx, resp.Body, resp.ContentLength, dst); err != nil {
		return fmt.Errorf("downloading %s: %w", location, err)
	}
	return nil
}

func (r *Resolver) fetchObject(ctx context.Context, bucket, object, dst string) error {
	gcsURL := "gs://" + bucket + "/" + object

	src, err := r.objects.NewReader(ctx, bucket, object)
	if err != nil {
		return fmt.Errorf("opening object from GCS %q: %w", gcsURL, err)
	}
	defer src.Close()

	if _, err := r.writeToFile(ctx, src, -1, dst); err != nil {
		return fmt.Errorf("downloading from GCS: %w", err)
	}
	return nil
}

// resolveHuggingFace handles hf://org/repo[/path/to/file.onnx].
func (r *Resolver) resolveHuggingFace(ctx context.Context, u *url.URL) (string, error) {
	parts := strings.SplitN(strings.Trim(u.Host+u.Path, "/"), "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("hf location %q must name an organisation and a repository", u.String())
	}
	modelID := parts[0] + "/" + parts[1]
	dest := filepath.Join(r.cacheDir, "hf", sanitize(parts[0]), sanitize(parts[1]))

	opts := append([]downloader.Option{}, r.hfOptions...)
	if len(parts) == 3 {
		file := parts[2]
		cachedPath := filepath.Join(dest, filepath.Base(file))
		if info, err := os.Stat(cachedPath); err == nil && info.Mode().IsRegular() {
			klog.FromContext(ctx).V(2).Info("using cached model", "model", modelID, "path", cachedPath)
			return cachedPath, nil
		}
		opts = append(opts, downloader.WithModelFile(file))
	} else if cachedPath, ok := readDefaultModel(dest); ok {
		klog.FromContext(ctx).V(2).Info("using cached model", "model", modelID, "path", cachedPath)
		return cachedPath, nil
	}
	if r.progress != nil {
		opts = append(opts, downloader.WithProgress(r.progress))
	}

	d := downloader.NewDownloader(downloader.NewHuggingFaceSource(r.hfAPIKey, opts...))
	result, err := d.Download(ctx, modelID, dest)
	if err != nil {
		return "", fmt.Errorf("downloading %s from HuggingFace: %w", modelID, err)
	}
	if len(parts) == 2 {
		marker := filepath.Join(dest, defaultModelMarker)
		if err := os.WriteFile(marker, []byte(filepath.Base(result.ModelPath)), 0o644); err != nil {
			return "", fmt.Errorf("recording default model for %s: %w", modelID, err)
		}
	}
	return result.ModelPath, nil
}

// defaultModelMarker names the file that records which model an
// hf://org/repo location without a file name resolved to.
const defaultModelMarker = ".default-model"

func readDefaultModel(dest string) (string, bool) {
	name, err := os.ReadFile(filepath.Join(dest, defaultModelMarker))
	if err != nil {
		return "", false
	}
	p := filepath.Join(dest, filepath.Base(strings.TrimSpace(string(name))))
	if info, err := os.Stat(p); err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return p, true
}

// writeToFile copies src into a temp file next to dst and renames it into
// place.
func (r *Resolver) writeToFile(ctx context.Context, src io.Reader, size int64, dst string) (int64, error) {
	log := klog.FromContext(ctx)

	tempFile, err := os.CreateTemp(filepath.Dir(dst), "download")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	shouldDeleteTempFile := true
	defer func() {
		if shouldDeleteTempFile {
			if err := os.Remove(tempFile.Name()); err != nil {
				log.Error(err, "removing temp file", "path", tempFile.Name())
			}
		}
	}()

	shouldCloseTempFile := true
	defer func() {
		if shouldCloseTempFile {
			if err := tempFile.Close(); err != nil {
				log.Error(err, "closing temp file", "path", tempFile.Name())
			}
		}
	}()

	var w io.Writer = tempFile
	if r.progress != nil {
		bar := ui.NewProgressBar(r.progress, size, filepath.Base(dst))
		defer bar.Finish()
		w = io.MultiWriter(tempFile, bar)
	}

	n, err := io.Copy(w, src)
	if err != nil {
		return n, fmt.Errorf("downloading from upstream source: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	shouldCloseTempFile = false

	if err := os.Rename(tempFile.Name(), dst); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	shouldDeleteTempFile = false

	log.V(2).Info("wrote model", "path", dst, "size", ui.FormatBytes(n))
	return n, nil
}

// sanitize keeps characters that are safe in a file name on every platform.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_', r == '/':
			return r
		}
		return '_'
	}, s)
}
