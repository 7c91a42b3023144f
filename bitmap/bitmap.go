// Package bitmap implements the CPU-resident pixel plane: a row-major,
// unpadded byte buffer tagged with a pixfmt.Format, backed by the pooled
// allocator in blobpool.
package bitmap

import (
	"errors"
	"sync"

	"github.com/tonefx/tonefx/blobpool"
	"github.com/tonefx/tonefx/pixfmt"
)

// Errors returned by Bitmap operations, matching the precondition-violation
// and allocation-failure error kinds.
var (
	ErrInvalidDimensions  = errors.New("bitmap: invalid dimensions")
	ErrOutOfMemory        = errors.New("bitmap: allocation failed")
	ErrRectOutOfBounds    = errors.New("bitmap: rect out of bounds")
	ErrChannelMismatch    = errors.New("bitmap: incompatible channel size")
	ErrChannelOutOfRange  = errors.New("bitmap: channel index out of range")
	ErrNoAlphaChannel     = errors.New("bitmap: format has no alpha channel")
	ErrUnsupportedConvert = errors.New("bitmap: no conversion path between formats")
	ErrDataTooSmall       = errors.New("bitmap: raw data smaller than expected plane size")
)

// Bitmap is a single CPU plane: {format, width, height, buffer}. It
// exclusively owns its buffer, which is sourced from a blobpool.Pool when
// one is assigned, or from the heap otherwise.
type Bitmap struct {
	mu sync.Mutex

	format pixfmt.Format
	width  int
	height int
	blob   *blobpool.Blob // non-nil when buffer came from an allocator
	buffer []byte

	allocator *blobpool.Pool
}

// New constructs an empty bitmap with no allocator assigned; buffer comes
// from the heap until AssignAllocator is called.
func New() *Bitmap {
	return &Bitmap{}
}

// AssignAllocator migrates the bitmap's buffer into the given pool, and
// directs future Reset calls to allocate from it.
func (b *Bitmap) AssignAllocator(a *blobpool.Pool) {
	b.allocator = a
	if b.buffer == nil || a == nil {
		return
	}
	blob := a.Alloc(len(b.buffer))
	if blob.Empty() {
		return
	}
	copy(blob.Bytes(), b.buffer)
	if b.blob != nil {
		b.blob.Release()
	}
	b.blob = blob
	b.buffer = blob.Bytes()
}

// ClearAllocator migrates the bitmap's buffer into a heap blob, releasing
// any pooled blob, and forgets the assigned allocator.
func (b *Bitmap) ClearAllocator() {
	b.allocator = nil
	if b.blob == nil {
		return
	}
	heapBuf := make([]byte, len(b.buffer))
	copy(heapBuf, b.buffer)
	b.blob.Release()
	b.blob = nil
	b.buffer = heapBuf
}

// Format returns the bitmap's pixel format.
func (b *Bitmap) Format() pixfmt.Format { return b.format }

// Width returns the bitmap's width in pixels.
func (b *Bitmap) Width() int { return b.width }

// Height returns the bitmap's height in pixels.
func (b *Bitmap) Height() int { return b.height }

// Buffer returns the raw backing buffer. Callers mutating it directly
// should bracket the mutation with ManualLock/Unlock.
func (b *Bitmap) Buffer() []byte { return b.buffer }

// Empty reports whether buffer is nil, which per the data model invariant
// holds exactly when width*height == 0.
func (b *Bitmap) Empty() bool { return b.buffer == nil }

// ManualLock acquires the bitmap's mutation lock. Callers hold it across
// multi-step mutations that must appear atomic to concurrent readers;
// Unlock releases it. Not safe to call twice from the same goroutine
// without an intervening Unlock.
func (b *Bitmap) ManualLock() {
	b.mu.Lock()
}

// Unlock releases the mutation lock acquired by ManualLock.
func (b *Bitmap) Unlock() {
	b.mu.Unlock()
}

func (b *Bitmap) alloc(size int) ([]byte, *blobpool.Blob, bool) {
	if b.allocator == nil {
		return make([]byte, size), nil, true
	}
	blob := b.allocator.Alloc(size)
	if blob.Empty() {
		return nil, nil, false
	}
	return blob.Bytes(), blob, true
}

// Reset reallocates the bitmap's buffer for (format, w, h). If the prior
// (format, w, h) already match, the existing buffer is reused: zero-filled
// when data is nil, or overwritten with data otherwise. Returns
// ErrOutOfMemory if the allocator cannot satisfy the request.
func (b *Bitmap) Reset(format pixfmt.Format, width, height int, data []byte) error {
	if width < 0 || height < 0 {
		return ErrInvalidDimensions
	}
	size := format.PlaneBytes(width, height)

	if b.format == format && b.width == width && b.height == height && len(b.buffer) == size {
		if data == nil {
			clear(b.buffer)
		} else {
			n := copy(b.buffer, data)
			clear(b.buffer[n:])
		}
		return nil
	}

	if size == 0 {
		b.releaseBuffer()
		b.format, b.width, b.height = format, width, height
		b.buffer = nil
		return nil
	}

	buf, blob, ok := b.alloc(size)
	if !ok {
		return ErrOutOfMemory
	}
	if data != nil {
		n := copy(buf, data)
		clear(buf[n:])
	}

	b.releaseBuffer()
	b.format, b.width, b.height = format, width, height
	b.buffer, b.blob = buf, blob
	return nil
}

func (b *Bitmap) releaseBuffer() {
	if b.blob != nil {
		b.blob.Release()
		b.blob = nil
	}
	b.buffer = nil
}

// rowBytes returns the unpadded row pitch for the bitmap's format/width.
func (b *Bitmap) rowBytes() int { return b.format.RowBytes(b.width) }

// pixelOffset returns the byte offset of pixel (x,y), or -1 if out of
// bounds.
func (b *Bitmap) pixelOffset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return (y*b.width + x) * b.format.PixelSize()
}
