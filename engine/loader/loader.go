package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/scene"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// ProgressFunc receives the number of bytes read so far and the total size, or -1 when the size is unknown.
type ProgressFunc func(loaded, total int64)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	baseDir    string
	httpClient *http.Client

	modelCache map[string]*scene.Node

	backend loaderBackend
}

// Loader fetches the room's assets: the model scene graph and the baked texture.
// Asset locations are file paths or http(s) URLs; paths starting with "/" are resolved against
// the configured base directory. Every failure is reported as a *common.AssetLoadFailed.
type Loader interface {
	// LoadScene imports a model and caches it by URL.
	// If the model is already cached, the cached node is returned and no progress is reported.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - url: model location
	//   - onProgress: optional byte progress callback
	//
	// Returns:
	//   - *scene.Node: the model's root node
	//   - error: *common.AssetLoadFailed if loading fails
	LoadScene(ctx context.Context, url string, onProgress ProgressFunc) (*scene.Node, error)

	// LoadTexture fetches and decodes an image as an sRGB texture with FlipY disabled.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - url: image location
	//
	// Returns:
	//   - *material.Texture: the decoded texture
	//   - error: *common.AssetLoadFailed if loading fails
	LoadTexture(ctx context.Context, url string) (*material.Texture, error)

	// Start loads the model and texture concurrently in the background.
	//
	// Parameters:
	//   - ctx: cancels both loads
	//   - modelURL: model location
	//   - textureURL: baked texture location
	//   - onProgress: optional model progress callback, called from the loading goroutine
	//
	// Returns:
	//   - *Task: the pending result
	Start(ctx context.Context, modelURL, textureURL string, onProgress ProgressFunc) *Task

	// Get retrieves a cached model by URL. Returns nil if not found.
	Get(url string) *scene.Node

	// Models returns a copy of the model cache keyed by URL.
	Models() map[string]*scene.Node
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:         sync.RWMutex{},
		httpClient: http.DefaultClient,
		modelCache: make(map[string]*scene.Node),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) LoadScene(ctx context.Context, url string, onProgress ProgressFunc) (*scene.Node, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[url]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	node, err := l.loadScene(ctx, url, onProgress)
	if err != nil {
		return nil, common.NewAssetLoadFailed(url, err)
	}

	l.mu.Lock()
	l.modelCache[url] = node
	l.mu.Unlock()

	return node, nil
}

func (l *loader) loadScene(ctx context.Context, url string, onProgress ProgressFunc) (*scene.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ext := extension(url)
	if ext != ".gltf" && ext != ".glb" {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	if !isRemote(url) && !l.backend.Streamable(ext) {
		// External buffers are resolved next to the file, so hand the backend the path.
		p := l.resolve(url)
		node, err := l.backend.Open(p)
		if err != nil {
			return nil, err
		}
		if onProgress != nil {
			if info, statErr := os.Stat(p); statErr == nil {
				onProgress(info.Size(), info.Size())
			}
		}
		return node, nil
	}

	rc, size, err := l.open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return l.backend.Decode(newProgressReader(ctx, rc, size, onProgress), baseName(url))
}

func (l *loader) LoadTexture(ctx context.Context, url string) (*material.Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.NewAssetLoadFailed(url, err)
	}

	rc, size, err := l.open(ctx, url)
	if err != nil {
		return nil, common.NewAssetLoadFailed(url, err)
	}
	defer rc.Close()

	img, _, err := common.DecodeRGBA(newProgressReader(ctx, rc, size, nil))
	if err != nil {
		return nil, common.NewAssetLoadFailed(url, err)
	}
	return material.NewTexture(baseName(url), img), nil
}

func (l *loader) Start(ctx context.Context, modelURL, textureURL string, onProgress ProgressFunc) *Task {
	return startTask(ctx, l, modelURL, textureURL, onProgress)
}

func (l *loader) Get(url string) *scene.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[url]
}

func (l *loader) Models() map[string]*scene.Node {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*scene.Node, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// open returns a stream for url and its size in bytes, or -1 when the size is unknown.
func (l *loader) open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	if isRemote(url) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, 0, err
		}
		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, 0, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, 0, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return resp.Body, resp.ContentLength, nil
	}

	f, err := os.Open(l.resolve(url))
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	if info.IsDir() {
		f.Close()
		return nil, 0, fmt.Errorf("%s is a directory", url)
	}
	return f, info.Size(), nil
}

// resolve maps a local asset location onto the filesystem.
// Root-relative paths are served from the base directory, as a web server would.
func (l *loader) resolve(url string) string {
	if l.baseDir != "" && strings.HasPrefix(url, "/") {
		return filepath.Join(l.baseDir, filepath.FromSlash(url))
	}
	return filepath.FromSlash(url)
}

func isRemote(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

func extension(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 && isRemote(url) {
		url = url[:i]
	}
	return strings.ToLower(path.Ext(url))
}

func baseName(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 && isRemote(url) {
		url = url[:i]
	}
	return path.Base(filepath.ToSlash(url))
}
