package loader

import "net/http"

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loader)

// WithBaseDir sets the directory that root-relative asset paths such as "/model.glb" resolve against.
//
// Parameters:
//   - dir: the asset root directory
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithBaseDir(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.baseDir = dir
	}
}

// WithHTTPClient sets the client used for http(s) asset URLs.
//
// Parameters:
//   - client: the HTTP client, ignored when nil
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithHTTPClient(client *http.Client) LoaderBuilderOption {
	return func(l *loader) {
		if client != nil {
			l.httpClient = client
		}
	}
}
