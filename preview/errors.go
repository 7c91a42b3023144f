package preview

import "errors"

// ErrEmptyOriginal is returned by BuildPreview when the original image has
// no layers to scale from.
var ErrEmptyOriginal = errors.New("preview: original image has no layers")
