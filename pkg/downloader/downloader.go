package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"k8s.io/klog/v2"

	"github.com/zerfoo/onnxprobe/internal/ui"
)

const (
	DefaultAPIURL = "https://huggingface.co/api/models/"
	DefaultCDNURL = "https://huggingface.co/" // Base URL for direct file downloads
)

// ModelSource defines the interface for a model source, such as HuggingFace.
// It provides methods to download a model and its associated files.
type ModelSource interface {
	// DownloadModel downloads the specified model and its associated files
	// to the given destination. It returns a DownloadResult containing the
	// paths to the downloaded files, or an error if the download fails.
	DownloadModel(ctx context.Context, modelID string, destination string) (*DownloadResult, error)
}

// DownloadResult contains the paths to the downloaded model and tokenizer files.
type DownloadResult struct {
	ModelPath      string
	TokenizerPaths []string
}

// Downloader handles the overall download process using a ModelSource.
type Downloader struct {
	source ModelSource
}

// NewDownloader creates a new Downloader with the given ModelSource.
func NewDownloader(source ModelSource) *Downloader {
	return &Downloader{source: source}
}

// Download orchestrates the download of a model and its associated files
// using the configured ModelSource.
func (d *Downloader) Download(ctx context.Context, modelID string, destination string) (*DownloadResult, error) {
	return d.source.DownloadModel(ctx, modelID, destination)
}

// fetcher performs authenticated GETs and writes bodies to disk.
type fetcher struct {
	client   *http.Client
	apiKey   string
	progress io.Writer
}

func (f *fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.apiKey)
	}
	return f.client.Do(req)
}

// downloadFile downloads a single file from a URL to a local path. The body is
// written to a temporary file in the same directory and renamed into place, so
// filePath either holds the complete file or does not exist.
func (f *fetcher) downloadFile(ctx context.Context, url, filePath string) error {
	log := klog.FromContext(ctx)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	resp, err := f.get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to download file from %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.V(2).Info("error closing response body", "url", url, "err", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file from %s: status code %s", url, resp.Status)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create file in %s: %w", dir, err)
	}
	shouldDelete := true
	defer func() {
		if shouldDelete {
			if rerr := os.Remove(tempFile.Name()); rerr != nil && !os.IsNotExist(rerr) {
				log.Error(rerr, "removing temp file", "path", tempFile.Name())
			}
		}
	}()

	var dst io.Writer = tempFile
	var bar *ui.ProgressBar
	if f.progress != nil {
		bar = ui.NewProgressBar(f.progress, resp.ContentLength, filepath.Base(filePath))
		dst = io.MultiWriter(tempFile, bar)
	}

	n, err := copyFile(resp.Body, dst)
	if err != nil {
		if cerr := tempFile.Close(); cerr != nil {
			log.V(2).Info("error closing temp file", "path", tempFile.Name(), "err", cerr)
		}
		return fmt.Errorf("failed to write file %s: %w", filePath, err)
	}
	if bar != nil {
		if err := bar.Finish(); err != nil {
			log.V(2).Info("error finishing progress bar", "err", err)
		}
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close file %s: %w", tempFile.Name(), err)
	}
	if err := os.Rename(tempFile.Name(), filePath); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tempFile.Name(), filePath, err)
	}
	shouldDelete = false

	log.V(2).Info("downloaded file", "url", url, "path", filePath, "size", ui.FormatBytes(n))
	return nil
}

// copyFile copies content from a source reader to a destination writer.
func copyFile(src io.Reader, dst io.Writer) (int64, error) {
	return io.Copy(dst, src)
}

// HuggingFaceSource implements the ModelSource interface for HuggingFace Hub.
type HuggingFaceSource struct {
	fetcher
	apiURL    string
	cdnURL    string
	modelFile string
}

// Option configures a HuggingFaceSource.
type Option func(*HuggingFaceSource)

// WithEndpoints overrides the API and CDN base URLs. Empty values keep the
// current setting.
func WithEndpoints(apiURL, cdnURL string) Option {
	return func(h *HuggingFaceSource) {
		if apiURL != "" {
			h.apiURL = apiURL
		}
		if cdnURL != "" {
			h.cdnURL = cdnURL
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HuggingFaceSource) { h.client = c }
}

// WithProgress draws a progress bar on w for every file downloaded.
func WithProgress(w io.Writer) Option {
	return func(h *HuggingFaceSource) { h.progress = w }
}

// WithModelFile selects the repository file to fetch as the model, for
// repositories that ship several .onnx variants. The path is relative to the
// repository root.
func WithModelFile(name string) Option {
	return func(h *HuggingFaceSource) { h.modelFile = name }
}

// NewHuggingFaceSource creates a new HuggingFaceSource. apiKey may be empty
// for public repositories.
func NewHuggingFaceSource(apiKey string, opts ...Option) *HuggingFaceSource {
	h := &HuggingFaceSource{
		fetcher: fetcher{
			client: &http.Client{},
			apiKey: apiKey,
		},
		apiURL: DefaultAPIURL,
		cdnURL: DefaultCDNURL,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HuggingFaceModelInfo represents the structure of the JSON response from HuggingFace API.
type HuggingFaceModelInfo struct {
	ModelID string `json:"modelId"`
	// Other fields might be present, but we only care about siblings for now
	Siblings []struct {
		RPath string `json:"rfilename"` // Relative path of the file
	} `json:"siblings"`
}

// DownloadModel downloads the specified model and its associated files from
// HuggingFace Hub. The first .onnx file listed is taken as the model unless a
// file was selected with WithModelFile.
func (h *HuggingFaceSource) DownloadModel(ctx context.Context, modelID string, destination string) (*DownloadResult, error) {
	log := klog.FromContext(ctx).WithValues("model", modelID)
	ctx = klog.NewContext(ctx, log)

	modelInfo, err := h.modelInfo(ctx, modelID)
	if err != nil {
		return nil, err
	}

	var modelPath string
	var tokenizerPaths []string

	for _, sibling := range modelInfo.Siblings {
		rPath := sibling.RPath
		switch {
		case isModelFile(rPath, h.modelFile):
			if modelPath != "" {
				log.V(2).Info("skipping additional ONNX file", "file", rPath)
				continue
			}
			target := filepath.Join(destination, filepath.Base(rPath))
			if err := h.downloadFile(ctx, h.fileURL(modelID, rPath), target); err != nil {
				return nil, fmt.Errorf("failed to download ONNX model %s: %w", rPath, err)
			}
			modelPath = target
		case isTokenizerFile(rPath):
			target := filepath.Join(destination, filepath.Base(rPath))
			if err := h.downloadFile(ctx, h.fileURL(modelID, rPath), target); err != nil {
				return nil, fmt.Errorf("failed to download tokenizer file %s: %w", rPath, err)
			}
			tokenizerPaths = append(tokenizerPaths, target)
		}
	}

	if modelPath == "" {
		if h.modelFile != "" {
			return nil, fmt.Errorf("file %s not found for model ID: %s", h.modelFile, modelID)
		}
		return nil, fmt.Errorf("no ONNX model found for model ID: %s", modelID)
	}

	log.Info("downloaded model", "path", modelPath, "tokenizerFiles", len(tokenizerPaths))
	return &DownloadResult{
		ModelPath:      modelPath,
		TokenizerPaths: tokenizerPaths,
	}, nil
}

func (h *HuggingFaceSource) modelInfo(ctx context.Context, modelID string) (info *HuggingFaceModelInfo, err error) {
	apiURL := h.apiURL + modelID

	resp, err := h.get(ctx, apiURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch model info from HuggingFace API: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close response body for %s: %w", apiURL, cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HuggingFace API returned non-OK status: %s", resp.Status)
	}

	info = &HuggingFaceModelInfo{}
	if err := json.NewDecoder(resp.Body).Decode(info); err != nil {
		return nil, fmt.Errorf("failed to decode HuggingFace API response: %w", err)
	}
	return info, nil
}

// fileURL builds the CDN address of a repository file on the main revision.
func (h *HuggingFaceSource) fileURL(modelID, rPath string) string {
	return strings.TrimSuffix(h.cdnURL, "/") + "/" + path.Join(modelID, "resolve", "main", rPath)
}

func isModelFile(rPath, want string) bool {
	if want != "" {
		return rPath == want
	}
	return strings.HasSuffix(rPath, ".onnx")
}

// isTokenizerFile is a heuristic: names containing "tokenizer", or .json and
// .txt files.
func isTokenizerFile(rPath string) bool {
	return strings.Contains(rPath, "tokenizer") || strings.HasSuffix(rPath, ".json") || strings.HasSuffix(rPath, ".txt")
}
