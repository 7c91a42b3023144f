// Package canvas implements Image: an ordered list of ImageLayer values
// sharing a common pixel format, the topmost layer at index 0.
package canvas

import "errors"

var (
	ErrFormatMismatch     = errors.New("canvas: layer format does not match image format")
	ErrNoCompatibleDevice = errors.New("canvas: no existing layer shares a device with this layer")
	ErrLayerNotFound      = errors.New("canvas: layer is not present in this image")
	ErrMoveOutOfBounds    = errors.New("canvas: move would place the layer out of bounds")
	ErrEmptyImage         = errors.New("canvas: image has no layers")
)
