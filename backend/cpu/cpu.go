// Package cpu implements the always-available software backend. It is
// instantiated unconditionally by every Session; its Device is a null
// object with respect to textures, since CPU-side planes live in
// bitmap.Bitmap rather than a backend.Texture.
package cpu

import (
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/pixfmt"
)

func init() {
	backend.Register(backend.CPU, func() (backend.Device, error) {
		return Device{}, nil
	})
}

// Device is the CPU backend's handle. It carries no state: the CPU
// backend's actual work happens directly against bitmap.Bitmap values
// passed to filter operations, not through a Device-owned resource.
type Device struct{}

// ID returns backend.CPU.
func (Device) ID() backend.ID { return backend.CPU }

// CreateTexture always fails: the CPU backend has no texture concept.
// Callers needing a CPU-resident plane should allocate a bitmap.Bitmap
// directly.
func (Device) CreateTexture(pixfmt.Format, int, int, bool) (backend.Texture, error) {
	return nil, backend.ErrTexturesUnsupported
}

// UploadTexture always fails; see CreateTexture.
func (Device) UploadTexture(backend.Texture, int, int, int, int, []byte) error {
	return backend.ErrTexturesUnsupported
}

// DownloadTexture always fails; see CreateTexture.
func (Device) DownloadTexture(backend.Texture, int, int, int, int) ([]byte, error) {
	return nil, backend.ErrTexturesUnsupported
}
