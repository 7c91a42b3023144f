// Package backend defines the device-facade abstraction that lets the
// imaging runtime address the CPU and GPU execution backends uniformly: a
// stable integer ID, a Device handle for texture lifetime, and a
// priority-ordered registry used to pick a default.
package backend

import (
	"errors"

	"github.com/tonefx/tonefx/pixfmt"
)

// ID is the stable integer backend identifier used throughout the data
// model (ImageLayer.backendObjects, FilterMetaInfo, presets).
type ID uint8

const (
	// CPU is the always-available software backend.
	CPU ID = 1
	// GL is the GPU-accelerated backend, instantiated on demand.
	GL ID = 2
)

func (id ID) String() string {
	switch id {
	case CPU:
		return "cpu"
	case GL:
		return "gl"
	default:
		return "unknown"
	}
}

// ErrTexturesUnsupported is returned by a Device that cannot create GPU
// textures (the CPU backend): callers needing a texture should use a
// Bitmap directly instead.
var ErrTexturesUnsupported = errors.New("backend: device does not support textures")

// Texture is a device-resident 2-D image resource sized in pixels.
type Texture interface {
	Width() int
	Height() int
	Format() pixfmt.Format
	Destroy()
}

// RenderTarget is a Texture that can additionally be bound as a render
// destination. Mono-format tiles never implement this: per the GPU tile
// image invariant, mono textures have no render target.
type RenderTarget interface {
	Texture
	IsRenderTarget() bool
}

// Device is a backend-specific handle capable of creating and destroying
// textures, and moving pixels to/from them. The CPU backend implements
// Device as a null object: every texture method fails with
// ErrTexturesUnsupported, since CPU-side planes are represented by
// bitmap.Bitmap rather than a Texture.
type Device interface {
	// ID identifies which backend this device belongs to.
	ID() ID

	// CreateTexture allocates a width x height texture in the given
	// format. asRenderTarget requests a texture usable as a render
	// destination; mono formats must reject asRenderTarget=true.
	CreateTexture(format pixfmt.Format, width, height int, asRenderTarget bool) (Texture, error)

	// UploadTexture writes pixels (tightly packed in tex's format) into
	// the sub-rectangle (x,y,w,h) of tex.
	UploadTexture(tex Texture, x, y, w, h int, pixels []byte) error

	// DownloadTexture reads the sub-rectangle (x,y,w,h) of tex back as a
	// tightly packed byte slice in tex's format.
	DownloadTexture(tex Texture, x, y, w, h int) ([]byte, error)
}
