package bitmap

import (
	"os"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/pixfmt"
)

// DiscardAlphaChannel strips the alpha lane, valid only on families that
// carry one ({RGBA, BGRA, ARGB}). Rebuilds the buffer in the corresponding
// non-alpha family.
func (b *Bitmap) DiscardAlphaChannel() error {
	if !b.format.HasAlpha() {
		return ErrNoAlphaChannel
	}
	nonAlpha, ok := b.format.Family.NonAlphaFamily()
	if !ok {
		return ErrNoAlphaChannel
	}
	target := pixfmt.Format{Family: nonAlpha, ChannelDepth: b.format.ChannelDepth, ChannelCount: b.format.ChannelCount - 1}
	return b.discardChannel(b.format.AlphaIndex(), target)
}

// DiscardChannel drops the channel at index and rebuilds the buffer in
// newFormat, which must declare one fewer channel than the current format.
func (b *Bitmap) DiscardChannel(index int, newFormat pixfmt.Format) error {
	if index < 0 || index >= b.format.ChannelCount {
		return ErrChannelOutOfRange
	}
	return b.discardChannel(index, newFormat)
}

func (b *Bitmap) discardChannel(index int, newFormat pixfmt.Format) error {
	if newFormat.ChannelCount != b.format.ChannelCount-1 {
		return ErrChannelMismatch
	}
	chSize := b.format.ChannelSize()
	srcPixelSize := b.format.PixelSize()
	dstPixelSize := newFormat.PixelSize()

	newBuf, blob, ok := b.alloc(newFormat.PlaneBytes(b.width, b.height))
	if !ok {
		return ErrOutOfMemory
	}

	for p := 0; p < b.width*b.height; p++ {
		so := p * srcPixelSize
		do := p * dstPixelSize
		dc := 0
		for c := 0; c < b.format.ChannelCount; c++ {
			if c == index {
				continue
			}
			copy(newBuf[do+dc*chSize:do+dc*chSize+chSize], b.buffer[so+c*chSize:so+c*chSize+chSize])
			dc++
		}
	}

	b.releaseBuffer()
	b.format = newFormat
	b.buffer, b.blob = newBuf, blob
	return nil
}

// AddAlphaChannel appends a zero-filled alpha lane, valid only on
// families that have a well-defined alpha-carrying counterpart ({RGB, BGR}).
// Rebuilds the buffer in the corresponding alpha family, placing the new
// lane at that family's alpha index (RGBA/BGRA carry it last).
func (b *Bitmap) AddAlphaChannel() error {
	if b.format.HasAlpha() {
		return ErrChannelMismatch
	}
	withAlpha, ok := b.format.Family.WithAlpha()
	if !ok {
		return ErrUnsupportedConvert
	}
	target := pixfmt.Format{Family: withAlpha, ChannelDepth: b.format.ChannelDepth, ChannelCount: b.format.ChannelCount + 1}
	return b.addChannel(target)
}

func (b *Bitmap) addChannel(newFormat pixfmt.Format) error {
	if newFormat.ChannelCount != b.format.ChannelCount+1 {
		return ErrChannelMismatch
	}
	alphaIndex := newFormat.AlphaIndex()
	chSize := newFormat.ChannelSize()
	srcPixelSize := b.format.PixelSize()
	dstPixelSize := newFormat.PixelSize()

	newBuf, blob, ok := b.alloc(newFormat.PlaneBytes(b.width, b.height))
	if !ok {
		return ErrOutOfMemory
	}

	for p := 0; p < b.width*b.height; p++ {
		so := p * srcPixelSize
		do := p * dstPixelSize
		sc := 0
		for c := 0; c < newFormat.ChannelCount; c++ {
			if c == alphaIndex {
				continue
			}
			copy(newBuf[do+c*chSize:do+c*chSize+chSize], b.buffer[so+sc*chSize:so+sc*chSize+chSize])
			sc++
		}
	}

	b.releaseBuffer()
	b.format = newFormat
	b.buffer, b.blob = newBuf, blob
	return nil
}

// TransformFormat converts this bitmap in place to target, following the
// three-step resolution order from pixfmt.Lookup (identity, direct
// converter, two-hop through RGBA32). Returns ErrUnsupportedConvert if no
// path exists; the bitmap is left untouched on failure.
func (b *Bitmap) TransformFormat(target pixfmt.Format) error {
	if target == b.format {
		return nil
	}
	conv, ok := pixfmt.Lookup(b.format, target)
	if !ok {
		return ErrUnsupportedConvert
	}

	newBuf, blob, okAlloc := b.alloc(target.PlaneBytes(b.width, b.height))
	if !okAlloc {
		return ErrOutOfMemory
	}
	conv(newBuf, b.buffer, b.width*b.height)

	b.releaseBuffer()
	b.format = target
	b.buffer, b.blob = newBuf, blob
	return nil
}

// ToFormat converts area of this bitmap into a newly allocated Bitmap of
// target format, leaving this bitmap untouched.
func (b *Bitmap) ToFormat(target pixfmt.Format, area tonefx.Rect) (*Bitmap, error) {
	if !area.ValidFor(b.width, b.height) {
		return nil, ErrRectOutOfBounds
	}
	conv, ok := pixfmt.Lookup(b.format, target)
	if !ok {
		return nil, ErrUnsupportedConvert
	}

	out := New()
	out.AssignAllocator(b.allocator)
	if err := out.Reset(target, area.Width, area.Height, nil); err != nil {
		return nil, err
	}

	srcPixelSize := b.format.PixelSize()
	for row := 0; row < area.Height; row++ {
		srcRowStart := ((area.Y+row)*b.width + area.X) * srcPixelSize
		srcRowEnd := srcRowStart + area.Width*srcPixelSize
		dstRowStart := row * area.Width * target.PixelSize()
		conv(out.buffer[dstRowStart:], b.buffer[srcRowStart:srcRowEnd], area.Width)
	}
	return out, nil
}

// SaveRawData dumps the bitmap's buffer headerlessly (no format/dimension
// metadata) to path.
func (b *Bitmap) SaveRawData(path string) error {
	return os.WriteFile(path, b.buffer, 0o644)
}

// LoadRawData restores a bitmap from a headerless raw dump, given the
// format/dimensions out-of-band. Fails if the file is missing or shorter
// than the expected plane size.
func LoadRawData(format pixfmt.Format, width, height int, path string) (*Bitmap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	size := format.PlaneBytes(width, height)
	if len(data) < size {
		return nil, ErrDataTooSmall
	}
	b := New()
	if err := b.Reset(format, width, height, data[:size]); err != nil {
		return nil, err
	}
	return b, nil
}
