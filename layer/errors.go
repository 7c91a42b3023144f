// Package layer implements ImageLayer: a logical 2-D plane replicated
// across one or more backends (CPU bitmaps, GPU tiled images), kept
// coherent across mutating operations.
package layer

import "errors"

var (
	ErrInvalidDimensions = errors.New("layer: invalid dimensions")
	ErrBackendExists     = errors.New("layer: backend object already present for this device")
	ErrNoBackendObjects  = errors.New("layer: layer has no backend objects")
	ErrNoCPUBackend      = errors.New("layer: operation requires a CPU backend object")
	ErrFormatMismatch    = errors.New("layer: source and destination formats differ")
	ErrSizeMismatch      = errors.New("layer: source and destination dimensions differ")
	ErrChannelOutOfRange = errors.New("layer: channel index out of range")
	ErrRectOutOfBounds   = errors.New("layer: rect out of bounds")
	ErrBackendFailure    = errors.New("layer: backend operation failed, layer was reset")
)
