package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-room/engine/scene"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (e.g., gltfLoaderBackendImpl) handle format-specific details.
type loaderBackend interface {
	// Open imports a model from a file path. Formats with external resources resolve them relative to the file.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *scene.Node: the model's root node
	//   - error: error if loading fails
	Open(path string) (*scene.Node, error)

	// Decode imports a self-contained model (e.g. GLB) from a stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - name: the name given to the root node
	//
	// Returns:
	//   - *scene.Node: the model's root node
	//   - error: error if loading fails
	Decode(r io.Reader, name string) (*scene.Node, error)

	// Streamable reports whether a file with extension ext can be passed to Decode.
	Streamable(ext string) bool
}
