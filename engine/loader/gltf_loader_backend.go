package loader

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-room/engine/scene"
	"github.com/qmuntal/gltf"
)

// gltfLoaderBackendImpl is a loaderBackend for glTF/GLB files.
// Decoding is done by github.com/qmuntal/gltf; the importer builds the scene graph.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

var _ loaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - loaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() loaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(),
	}
}

func (b *gltfLoaderBackendImpl) Open(path string) (*scene.Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open gltf %s: %w", path, err)
	}
	return b.importer.Import(doc, filepath.Base(path))
}

func (b *gltfLoaderBackendImpl) Decode(r io.Reader, name string) (*scene.Node, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(r).Decode(doc); err != nil {
		return nil, fmt.Errorf("failed to decode gltf %s: %w", name, err)
	}
	return b.importer.Import(doc, name)
}

func (b *gltfLoaderBackendImpl) Streamable(ext string) bool {
	return ext == ".glb"
}
