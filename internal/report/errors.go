package report

import (
	"errors"
	"fmt"
)

var (
	// ErrAssetMissing is returned when a required image such as the header logo is absent
	ErrAssetMissing = errors.New("report asset missing")
	// ErrOutputNotWritable is returned when the report file cannot be written
	ErrOutputNotWritable = errors.New("report output not writable")
)

// AssetError names the asset that could not be used
type AssetError struct {
	Path string
	Err  error
}

// Error implements the error interface
func (e *AssetError) Error() string {
	return fmt.Sprintf("asset %s: %v", e.Path, e.Err)
}

// Unwrap allows errors.Is(err, ErrAssetMissing)
func (e *AssetError) Unwrap() []error {
	return []error{ErrAssetMissing, e.Err}
}
