package layer

import (
	"sync"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/bitmap"
	"github.com/tonefx/tonefx/gputile"
	"github.com/tonefx/tonefx/pixfmt"
)

// backendObject is the per-backend resident copy of a logical ImageLayer:
// exactly one of cpu/gpu is non-nil, selected by device.ID().
type backendObject struct {
	device backend.Device
	cpu    *bitmap.Bitmap
	gpu    *gputile.Image
}

func (bo *backendObject) retrieveRect(rect tonefx.Rect) ([]byte, error) {
	if bo.cpu != nil {
		out := make([]byte, rect.Width*rect.Height*bo.cpu.Format().PixelSize())
		packed := tonefx.NewRect(0, 0, rect.Width, rect.Height)
		if err := bo.cpu.Write(out, packed, rect.Width, rect); err != nil {
			return nil, err
		}
		return out, nil
	}
	return bo.gpu.Retrieve(rect)
}

func (bo *backendObject) discard() {
	if bo.gpu != nil {
		bo.gpu.DiscardBuffers()
	}
}

// ImageLayer is a logical 2-D plane replicated across one or more backends.
// Its zero value is not usable; construct with New.
type ImageLayer struct {
	mu sync.Mutex

	name   string
	format pixfmt.Format
	width  int
	height int

	backends map[backend.ID]*backendObject

	mask     *ImageLayer
	maskMode MaskMode
}

// New constructs an ImageLayer of (format, width, height), creating its
// first backend object on device. data, if non-nil, seeds that backend
// object's pixels; otherwise the layer starts zero-filled.
func New(name string, device backend.Device, format pixfmt.Format, width, height int, data []byte) (*ImageLayer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	l := &ImageLayer{
		name:     name,
		format:   format,
		width:    width,
		height:   height,
		backends: map[backend.ID]*backendObject{},
	}
	if err := l.createBackendObject(device, data); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *ImageLayer) createBackendObject(device backend.Device, data []byte) error {
	id := device.ID()
	if _, exists := l.backends[id]; exists {
		return ErrBackendExists
	}
	if id == backend.CPU {
		b := bitmap.New()
		if err := b.Reset(l.format, l.width, l.height, data); err != nil {
			return err
		}
		l.backends[id] = &backendObject{device: device, cpu: b}
		return nil
	}

	var (
		img *gputile.Image
		err error
	)
	if data != nil {
		img, err = gputile.CreateFromData(device, l.format, l.width, l.height, data)
	} else {
		img, err = gputile.NewFull(device, l.format, l.width, l.height)
	}
	if err != nil {
		return err
	}
	l.backends[id] = &backendObject{device: device, gpu: img}
	return nil
}

// Name returns the layer's display name.
func (l *ImageLayer) Name() string { return l.name }

// Format returns the layer's current pixel format.
func (l *ImageLayer) Format() pixfmt.Format { return l.format }

// Width returns the layer's width in pixels.
func (l *ImageLayer) Width() int { return l.width }

// Height returns the layer's height in pixels.
func (l *ImageLayer) Height() int { return l.height }

// ContainsDataForBackend reports whether id has a resident backend object.
func (l *ImageLayer) ContainsDataForBackend(id backend.ID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.backends[id]
	return ok
}

// BackendIDs returns the set of backends with a resident object on this
// layer, in no particular order.
func (l *ImageLayer) BackendIDs() []backend.ID {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]backend.ID, 0, len(l.backends))
	for id := range l.backends {
		ids = append(ids, id)
	}
	return ids
}

// Retrieve reads rect back into a freshly allocated, tightly packed buffer
// in the layer's format. Prefers a CPU-resident backend object if present,
// else reads from whichever other backend object exists.
func (l *ImageLayer) Retrieve(rect tonefx.Rect) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retrieveLocked(rect)
}

func (l *ImageLayer) retrieveLocked(rect tonefx.Rect) ([]byte, error) {
	if !rect.ValidFor(l.width, l.height) {
		return nil, ErrRectOutOfBounds
	}
	if cpuObj, ok := l.backends[backend.CPU]; ok {
		return cpuObj.retrieveRect(rect)
	}
	for _, bo := range l.backends {
		return bo.retrieveRect(rect)
	}
	return nil, ErrNoBackendObjects
}

// RetrieveBitmap is the Bitmap-destined convenience form of Retrieve.
func (l *ImageLayer) RetrieveBitmap(dst *bitmap.Bitmap, rect tonefx.Rect) error {
	data, err := l.Retrieve(rect)
	if err != nil {
		return err
	}
	if err := dst.Reset(l.format, rect.Width, rect.Height, nil); err != nil {
		return err
	}
	packed := tonefx.NewRect(0, 0, rect.Width, rect.Height)
	return dst.CopyRaw(data, l.format, rect.Width, rect.Height, packed, 0, 0)
}

// RetrieveChannel stages a full-pixel buffer via Retrieve, then extracts
// channelIndex's bytes per pixel into a tightly packed channel-sized
// buffer.
func (l *ImageLayer) RetrieveChannel(channelIndex int, rect tonefx.Rect) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if channelIndex < 0 || channelIndex >= l.format.ChannelCount {
		return nil, ErrChannelOutOfRange
	}
	full, err := l.retrieveLocked(rect)
	if err != nil {
		return nil, err
	}
	chSize := l.format.ChannelSize()
	pixelSize := l.format.PixelSize()
	out := make([]byte, rect.Width*rect.Height*chSize)
	for p := 0; p < rect.Width*rect.Height; p++ {
		so := p*pixelSize + channelIndex*chSize
		do := p * chSize
		copy(out[do:do+chSize], full[so:so+chSize])
	}
	return out, nil
}

// UpdateDataForBackend is idempotent: if device's backend already has a
// resident object, it returns immediately. Otherwise it downloads the full
// plane from an existing backend object and constructs a new one of the
// same (format,width,height) from that buffer.
func (l *ImageLayer) UpdateDataForBackend(device backend.Device) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.backends[device.ID()]; ok {
		return nil
	}
	data, err := l.retrieveLocked(tonefx.NewRect(0, 0, l.width, l.height))
	if err != nil {
		return err
	}
	return l.createBackendObject(device, data)
}

// DeleteDataForBackend drops exactly the backend object for id, if present.
func (l *ImageLayer) DeleteDataForBackend(id backend.ID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bo, ok := l.backends[id]
	if !ok {
		return
	}
	bo.discard()
	delete(l.backends, id)
}

// DeleteDataForDevice drops the backend object for device.ID(), if present.
func (l *ImageLayer) DeleteDataForDevice(device backend.Device) {
	l.DeleteDataForBackend(device.ID())
}

// Reset drops all backend objects and clears (format, width, height), per
// the data model's failure-recovery contract: partial backend incoherence
// is worse than an empty layer.
func (l *ImageLayer) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetLocked()
}

func (l *ImageLayer) resetLocked() {
	for _, bo := range l.backends {
		bo.discard()
	}
	l.backends = map[backend.ID]*backendObject{}
	l.format = pixfmt.Format{}
	l.width, l.height = 0, 0
}

// rebuildOtherBackendsFromCPULocked reconstructs every non-CPU backend
// object from cpu's current contents, after a CPU-staged mutation. Called
// with l.mu held.
func (l *ImageLayer) rebuildOtherBackendsFromCPULocked(cpu *bitmap.Bitmap) error {
	for id, bo := range l.backends {
		if id == backend.CPU {
			continue
		}
		img, err := gputile.CreateFromBitmap(bo.device, cpu, nil)
		if err != nil {
			return err
		}
		bo.gpu.DiscardBuffers()
		bo.gpu = img
	}
	return nil
}
