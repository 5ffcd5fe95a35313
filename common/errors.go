package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when an asset has an extension no loader understands.
	ErrUnsupportedFormat = errors.New("unsupported asset format")

	// ErrEmptyAsset is returned when an asset decodes to nothing usable.
	ErrEmptyAsset = errors.New("asset is empty")
)

// AssetLoadFailed reports that the model or baked texture at URL could not be fetched or decoded.
// Err carries the underlying cause and is exposed through Unwrap.
type AssetLoadFailed struct {
	URL string
	Err error
}

func (e *AssetLoadFailed) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("asset load failed: %s", e.URL)
	}
	return fmt.Sprintf("asset load failed: %s: %v", e.URL, e.Err)
}

func (e *AssetLoadFailed) Unwrap() error {
	return e.Err
}

// NewAssetLoadFailed wraps err as an AssetLoadFailed for url.
// An error that already is an AssetLoadFailed for the same url is returned unchanged.
//
// Parameters:
//   - url: the asset location that failed
//   - err: the underlying cause
//
// Returns:
//   - error: the wrapped error
func NewAssetLoadFailed(url string, err error) error {
	var existing *AssetLoadFailed
	if errors.As(err, &existing) && existing.URL == url {
		return err
	}
	return &AssetLoadFailed{URL: url, Err: err}
}
