package canvas

import (
	"sync"

	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/pixfmt"
)

// Image is an ordered stack of layers sharing one pixel format. Index 0 is
// the topmost layer; the last index is the bottommost.
type Image struct {
	mu     sync.Mutex
	format pixfmt.Format
	layers []*layer.ImageLayer
}

// New constructs an empty Image constraining every appended layer to
// format.
func New(format pixfmt.Format) *Image {
	return &Image{format: format}
}

// Format returns the image's pixel format.
func (img *Image) Format() pixfmt.Format { return img.format }

// Len reports the number of layers currently in the image.
func (img *Image) Len() int {
	img.mu.Lock()
	defer img.mu.Unlock()
	return len(img.layers)
}

// AppendLayer inserts l at the bottom of the stack. It fails if l's format
// does not match the image's format.
func (img *Image) AppendLayer(l *layer.ImageLayer) error {
	if l.Format() != img.format {
		return ErrFormatMismatch
	}
	img.mu.Lock()
	defer img.mu.Unlock()
	img.layers = append(img.layers, l)
	return nil
}

// AppendLayerWithCompatibleDevice is AppendLayer plus the additional
// constraint that, unless the image is currently empty, at least one
// existing layer must share a backend device with l.
func (img *Image) AppendLayerWithCompatibleDevice(l *layer.ImageLayer) error {
	if l.Format() != img.format {
		return ErrFormatMismatch
	}
	img.mu.Lock()
	defer img.mu.Unlock()
	if len(img.layers) > 0 && !img.hasCompatibleDeviceLocked(l) {
		return ErrNoCompatibleDevice
	}
	img.layers = append(img.layers, l)
	return nil
}

func (img *Image) hasCompatibleDeviceLocked(l *layer.ImageLayer) bool {
	ids := l.BackendIDs()
	for _, existing := range img.layers {
		for _, id := range ids {
			if existing.ContainsDataForBackend(id) {
				return true
			}
		}
	}
	return false
}

func (img *Image) indexOfLocked(l *layer.ImageLayer) int {
	for i, candidate := range img.layers {
		if candidate == l {
			return i
		}
	}
	return -1
}

// MoveLayer shifts l by n positions; positive n moves toward index 0 (the
// top). It fails if l is not present or the move would exceed the stack's
// bounds.
func (img *Image) MoveLayer(l *layer.ImageLayer, n int) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	i := img.indexOfLocked(l)
	if i < 0 {
		return ErrLayerNotFound
	}
	target := i - n
	if target < 0 || target >= len(img.layers) {
		return ErrMoveOutOfBounds
	}
	img.layers = append(img.layers[:i], img.layers[i+1:]...)
	img.layers = append(img.layers[:target], append([]*layer.ImageLayer{l}, img.layers[target:]...)...)
	return nil
}

// SwitchLayers swaps the positions of a and b. It fails if either is not
// present in the image.
func (img *Image) SwitchLayers(a, b *layer.ImageLayer) error {
	img.mu.Lock()
	defer img.mu.Unlock()
	ia := img.indexOfLocked(a)
	ib := img.indexOfLocked(b)
	if ia < 0 || ib < 0 {
		return ErrLayerNotFound
	}
	img.layers[ia], img.layers[ib] = img.layers[ib], img.layers[ia]
	return nil
}

// Layers returns a snapshot of the current layer order, top first.
func (img *Image) Layers() []*layer.ImageLayer {
	img.mu.Lock()
	defer img.mu.Unlock()
	out := make([]*layer.ImageLayer, len(img.layers))
	copy(out, img.layers)
	return out
}

// TopLayer returns the topmost layer, or (nil, false) if the image is
// empty.
func (img *Image) TopLayer() (*layer.ImageLayer, bool) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if len(img.layers) == 0 {
		return nil, false
	}
	return img.layers[0], true
}

// BottomLayer returns the bottommost layer, or (nil, false) if the image
// is empty.
func (img *Image) BottomLayer() (*layer.ImageLayer, bool) {
	img.mu.Lock()
	defer img.mu.Unlock()
	if len(img.layers) == 0 {
		return nil, false
	}
	return img.layers[len(img.layers)-1], true
}

// CloneTopLayer duplicates the topmost layer and appends the duplicate to
// the bottom of the stack.
func (img *Image) CloneTopLayer() (*layer.ImageLayer, error) {
	top, ok := img.TopLayer()
	if !ok {
		return nil, ErrEmptyImage
	}
	return img.cloneAndAppend(top)
}

// CloneBottomLayer duplicates the bottommost layer and appends the
// duplicate to the bottom of the stack.
func (img *Image) CloneBottomLayer() (*layer.ImageLayer, error) {
	bottom, ok := img.BottomLayer()
	if !ok {
		return nil, ErrEmptyImage
	}
	return img.cloneAndAppend(bottom)
}

func (img *Image) cloneAndAppend(source *layer.ImageLayer) (*layer.ImageLayer, error) {
	dup, err := source.Duplicate()
	if err != nil {
		return nil, err
	}
	img.mu.Lock()
	img.layers = append(img.layers, dup)
	img.mu.Unlock()
	return dup, nil
}

// ByName returns every layer whose Name() equals name, top-to-bottom
// order preserved.
func (img *Image) ByName(name string) []*layer.ImageLayer {
	return img.filter(func(l *layer.ImageLayer) bool { return l.Name() == name })
}

// BySize returns every layer of the given pixel dimensions.
func (img *Image) BySize(width, height int) []*layer.ImageLayer {
	return img.filter(func(l *layer.ImageLayer) bool { return l.Width() == width && l.Height() == height })
}

// ByFormat returns every layer of the given pixel format.
func (img *Image) ByFormat(format pixfmt.Format) []*layer.ImageLayer {
	return img.filter(func(l *layer.ImageLayer) bool { return l.Format() == format })
}

// ByFormatAndSize returns every layer matching both format and
// dimensions.
func (img *Image) ByFormatAndSize(format pixfmt.Format, width, height int) []*layer.ImageLayer {
	return img.filter(func(l *layer.ImageLayer) bool {
		return l.Format() == format && l.Width() == width && l.Height() == height
	})
}

// ByBackend returns every layer with a resident backend object on id.
func (img *Image) ByBackend(id backend.ID) []*layer.ImageLayer {
	return img.filter(func(l *layer.ImageLayer) bool { return l.ContainsDataForBackend(id) })
}

func (img *Image) filter(keep func(*layer.ImageLayer) bool) []*layer.ImageLayer {
	img.mu.Lock()
	defer img.mu.Unlock()
	var out []*layer.ImageLayer
	for _, l := range img.layers {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}
