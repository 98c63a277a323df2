package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerfoo/onnxprobe/pkg/downloader"
)

type fakeObjects struct {
	objects map[string]string
	opened  []string
}

func (f *fakeObjects) NewReader(_ context.Context, bucket, object string) (io.ReadCloser, error) {
	key := bucket + "/" + object
	f.opened = append(f.opened, key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("storage: object doesn't exist")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestResolveLocalPaths(t *testing.T) {
	r := NewResolver(t.TempDir())

	tests := []struct {
		location string
		want     string
	}{
		{"model.onnx", "model.onnx"},
		{"/models/crop.onnx", "/models/crop.onnx"},
		{"file:///models/crop.onnx", filepath.FromSlash("/models/crop.onnx")},
	}
	for _, tt := range tests {
		got, err := r.Resolve(context.Background(), tt.location)
		require.NoError(t, err, tt.location)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolveFileWithHost(t *testing.T) {
	r := NewResolver(t.TempDir())

	got, err := r.Resolve(context.Background(), "file://localhost/models/crop.onnx")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/models/crop.onnx"), got)

	_, err = r.Resolve(context.Background(), "file://models/crop.onnx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `names host "models"`)
}

func TestResolveUnsupportedScheme(t *testing.T) {
	r := NewResolver(t.TempDir())
	_, err := r.Resolve(context.Background(), "ftp://example.com/model.onnx")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestResolveHTTPCachesDownload(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "model bytes")
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	r := NewResolver(cacheDir, WithHTTPClient(server.Client()))
	location := server.URL + "/models/crop.onnx"

	first, err := r.Resolve(context.Background(), location)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), location)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, "crop.onnx", filepath.Base(first))
	assert.True(t, strings.HasPrefix(first, cacheDir))

	content, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "model bytes", string(content))
}

func TestResolveHTTPErrorLeavesNothingCached(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	r := NewResolver(t.TempDir(), WithHTTPClient(server.Client()))
	location := server.URL + "/missing.onnx"
	_, err := r.Resolve(context.Background(), location)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code 404")

	u := mustParse(t, location)
	_, statErr := os.Stat(r.cachePath(u))
	assert.True(t, os.IsNotExist(statErr))
}

func TestResolveGCS(t *testing.T) {
	objects := &fakeObjects{objects: map[string]string{"models/v1/crop.onnx": "gcs bytes"}}
	r := NewResolver(t.TempDir(), WithObjectOpener(objects))

	got, err := r.Resolve(context.Background(), "gs://models/v1/crop.onnx")
	require.NoError(t, err)
	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "gcs bytes", string(content))

	_, err = r.Resolve(context.Background(), "gs://models/v1/crop.onnx")
	require.NoError(t, err)
	assert.Equal(t, []string{"models/v1/crop.onnx"}, objects.opened)

	_, err = r.Resolve(context.Background(), "gs://models/absent.onnx")
	require.Error(t, err)

	_, err = r.Resolve(context.Background(), "gs://models")
	require.Error(t, err)
}

func TestResolveHuggingFace(t *testing.T) {
	var apiHits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiHits.Add(1)
		fmt.Fprint(w, `{"siblings": [{"rfilename": "onnx/model.onnx"},{"rfilename": "onnx/model_int8.onnx"}]}`)
	}))
	defer api.Close()
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, filepath.Base(r.URL.Path))
	}))
	defer cdn.Close()

	cacheDir := t.TempDir()
	r := NewResolver(cacheDir, WithHuggingFace("", downloader.WithEndpoints(api.URL+"/", cdn.URL+"/")))

	got, err := r.Resolve(context.Background(), "hf://acme/crops/onnx/model_int8.onnx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "hf", "acme", "crops", "model_int8.onnx"), got)
	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "model_int8.onnx", string(content))

	again, err := r.Resolve(context.Background(), "hf://acme/crops/onnx/model_int8.onnx")
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, int32(1), apiHits.Load())
}

func TestResolveHuggingFaceFirstModel(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"siblings": [{"rfilename": "model.onnx"}]}`)
	}))
	defer api.Close()
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "onnx")
	}))
	defer cdn.Close()

	cacheDir := t.TempDir()
	r := NewResolver(cacheDir, WithHuggingFace("", downloader.WithEndpoints(api.URL+"/", cdn.URL+"/")))

	got, err := r.Resolve(context.Background(), "hf://acme/crops")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "hf", "acme", "crops", "model.onnx"), got)

	_, err = r.Resolve(context.Background(), "hf://acme")
	require.Error(t, err)
}

func TestResolveHuggingFaceDefaultIgnoresNamedFile(t *testing.T) {
	var apiHits atomic.Int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiHits.Add(1)
		fmt.Fprint(w, `{"siblings": [{"rfilename": "model.onnx"},{"rfilename": "model_int8.onnx"}]}`)
	}))
	defer api.Close()
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, filepath.Base(r.URL.Path))
	}))
	defer cdn.Close()

	cacheDir := t.TempDir()
	r := NewResolver(cacheDir, WithHuggingFace("", downloader.WithEndpoints(api.URL+"/", cdn.URL+"/")))
	repoDir := filepath.Join(cacheDir, "hf", "acme", "crops")

	named, err := r.Resolve(context.Background(), "hf://acme/crops/model_int8.onnx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoDir, "model_int8.onnx"), named)

	first, err := r.Resolve(context.Background(), "hf://acme/crops")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(repoDir, "model.onnx"), first)
	assert.Equal(t, int32(2), apiHits.Load())

	again, err := r.Resolve(context.Background(), "hf://acme/crops")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, int32(2), apiHits.Load())
}

func TestCachePathStaysInCache(t *testing.T) {
	cacheDir := t.TempDir()
	r := NewResolver(cacheDir)

	for _, location := range []string{
		"https://example.com/../../etc/passwd",
		"https://example.com/",
		"https://example.com/model.onnx?rev=2",
		"http://example.com:8080/a%20b/model.onnx",
	} {
		p := r.cachePath(mustParse(t, location))
		rel, err := filepath.Rel(cacheDir, p)
		require.NoError(t, err)
		assert.False(t, strings.HasPrefix(rel, ".."), "%s escaped the cache: %s", location, p)
	}
}

func mustParse(t *testing.T, location string) *url.URL {
	t.Helper()
	u, err := url.Parse(location)
	require.NoError(t, err)
	return u
}
