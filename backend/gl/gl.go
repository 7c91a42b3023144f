// Package gl implements the GPU-accelerated backend. Per the host-provides-
// the-device principle, this package never creates a GPU device itself: a
// host application hands it a gpucontext.DeviceProvider (shared with its
// own rendering) via Register, and the backend registry instantiates a
// Device wrapping that provider on demand.
package gl

import (
	"errors"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/pixfmt"
)

var (
	// ErrMonoNotRenderable is returned when a Mono-family texture is
	// requested as a render target: mono tiles have textures only.
	ErrMonoNotRenderable = errors.New("gl: mono-format textures cannot be render targets")
	// ErrInvalidTextureSize is returned for non-positive dimensions.
	ErrInvalidTextureSize = errors.New("gl: invalid texture size")
	// ErrUnsupportedFormat is returned when no GPU texture format maps
	// from the requested pixfmt.Format.
	ErrUnsupportedFormat = errors.New("gl: unsupported pixel format for a GPU texture")
	// ErrForeignTexture is returned when a backend.Texture not created by
	// this Device is passed to UploadTexture/DownloadTexture.
	ErrForeignTexture = errors.New("gl: texture was not created by this device")
)

// Register installs a factory for backend.GL that wraps provider. Call
// this once the host application's GPU device is available; until then,
// backend.Get(backend.GL) and backend.Default() only see the CPU backend.
func Register(provider gpucontext.DeviceProvider) {
	backend.Register(backend.GL, func() (backend.Device, error) {
		return NewDevice(provider), nil
	})
}

// Device is the GL backend's handle on a host-supplied GPU device. It owns
// no hardware resources of its own; it only creates and tracks Texture
// wrappers over it.
type Device struct {
	provider gpucontext.DeviceProvider

	mu    sync.Mutex
	count int
}

// NewDevice wraps provider as a backend.Device.
func NewDevice(provider gpucontext.DeviceProvider) *Device {
	return &Device{provider: provider}
}

// ID returns backend.GL.
func (d *Device) ID() backend.ID { return backend.GL }

// Provider returns the underlying device provider, for callers (such as
// gputile) that need direct gpucontext access for upload/download.
func (d *Device) Provider() gpucontext.DeviceProvider { return d.provider }

// CreateTexture allocates a width x height texture in the mapped GPU
// format. Mono-family formats reject asRenderTarget, matching the GPU
// tile invariant that mono tiles carry no render target.
func (d *Device) CreateTexture(format pixfmt.Format, width, height int, asRenderTarget bool) (backend.Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidTextureSize
	}
	if format.IsMono() && asRenderTarget {
		return nil, ErrMonoNotRenderable
	}
	gpuFormat, ok := textureFormatFor(format)
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	d.mu.Lock()
	d.count++
	d.mu.Unlock()

	return &Texture{
		device:       d,
		format:       format,
		gpuFormat:    gpuFormat,
		width:        width,
		height:       height,
		renderTarget: asRenderTarget,
		data:         make([]byte, format.PlaneBytes(width, height)),
		// textureID and viewID are zero-value wgpu handles: actual driver
		// texture creation is out of this runtime's scope (spec §1), so the
		// handles are tracked but never bound to a real GPU resource, the
		// same stub convention gogpu-gg's GPUTexture uses ahead of real
		// wgpu texture support.
	}, nil
}

// UploadTexture writes pixels into the sub-rectangle (x,y,w,h) of tex.
func (d *Device) UploadTexture(tex backend.Texture, x, y, w, h int, pixels []byte) error {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return ErrForeignTexture
	}
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > t.width || y+h > t.height {
		return ErrInvalidTextureSize
	}
	pixelSize := t.format.PixelSize()
	t.mu.Lock()
	defer t.mu.Unlock()
	for row := 0; row < h; row++ {
		srcStart := row * w * pixelSize
		dstStart := ((y+row)*t.width + x) * pixelSize
		n := w * pixelSize
		copy(t.data[dstStart:dstStart+n], pixels[srcStart:srcStart+n])
	}
	return nil
}

// DownloadTexture reads the sub-rectangle (x,y,w,h) of tex back as a
// tightly packed byte slice.
func (d *Device) DownloadTexture(tex backend.Texture, x, y, w, h int) ([]byte, error) {
	t, ok := tex.(*Texture)
	if !ok || t == nil {
		return nil, ErrForeignTexture
	}
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > t.width || y+h > t.height {
		return nil, ErrInvalidTextureSize
	}
	pixelSize := t.format.PixelSize()
	out := make([]byte, w*h*pixelSize)
	t.mu.Lock()
	defer t.mu.Unlock()
	for row := 0; row < h; row++ {
		srcStart := ((y+row)*t.width + x) * pixelSize
		dstStart := row * w * pixelSize
		n := w * pixelSize
		copy(out[dstStart:dstStart+n], t.data[srcStart:srcStart+n])
	}
	return out, nil
}

// LiveTextureCount reports how many textures this device has created and
// not yet destroyed; used by tests and by pool accounting.
func (d *Device) LiveTextureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

func (d *Device) forget() {
	d.mu.Lock()
	d.count--
	d.mu.Unlock()
}

// Texture is a device-resident texture. The concrete shader/driver-level
// upload and download paths live behind gpucontext and are out of this
// runtime's scope; Texture tracks only the tile/render-target contract the
// imaging runtime depends on.
type Texture struct {
	device       *Device
	format       pixfmt.Format
	gpuFormat    gputypes.TextureFormat
	width        int
	height       int
	renderTarget bool

	// textureID and viewID are the wgpu-level handles for this texture.
	// They stay zero-value: binding them to a real GPU resource is driver
	// interaction, which spec §1 places out of this runtime's scope.
	textureID core.TextureID
	viewID    core.TextureViewID

	mu        sync.Mutex
	destroyed bool
	// data is the texture's resident pixel storage, tightly packed in
	// row-major order. Real driver-level upload/download would stage
	// through the device queue instead; per spec this runtime treats
	// that path as opaque, so it is modeled here as direct storage.
	data []byte
}

func (t *Texture) Width() int               { return t.width }
func (t *Texture) Height() int               { return t.height }
func (t *Texture) Format() pixfmt.Format     { return t.format }
func (t *Texture) IsRenderTarget() bool      { return t.renderTarget }
func (t *Texture) GPUFormat() gputypes.TextureFormat { return t.gpuFormat }

// TextureID returns the underlying wgpu texture handle. It is a zero ID
// until real driver-backed texture creation is wired in (out of scope
// per spec §1); callers that need a live GPU handle use UploadTexture/
// DownloadTexture through the Device instead.
func (t *Texture) TextureID() core.TextureID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.textureID
}

// ViewID returns the underlying wgpu texture view handle, with the same
// zero-value-until-wired caveat as TextureID.
func (t *Texture) ViewID() core.TextureViewID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewID
}

// Destroy releases the texture. Safe to call more than once.
func (t *Texture) Destroy() {
	t.mu.Lock()
	already := t.destroyed
	t.destroyed = true
	t.mu.Unlock()
	if !already {
		t.device.forget()
	}
}

var (
	_ backend.Texture      = (*Texture)(nil)
	_ backend.RenderTarget = (*Texture)(nil)
	_ backend.Device       = (*Device)(nil)
)

// textureFormatFor maps the runtime's pixfmt.Format onto the closest
// WebGPU-style texture format the GL backend can allocate.
func textureFormatFor(f pixfmt.Format) (gputypes.TextureFormat, bool) {
	switch {
	case f == pixfmt.RGBA8:
		return gputypes.TextureFormatRGBA8Unorm, true
	case f == pixfmt.BGRA8:
		return gputypes.TextureFormatBGRA8Unorm, true
	case f == pixfmt.Mono8:
		return gputypes.TextureFormatR8Unorm, true
	case f == pixfmt.RGBA32F:
		return gputypes.TextureFormatRGBA32Float, true
	default:
		return gputypes.TextureFormatUndefined, false
	}
}
