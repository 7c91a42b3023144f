package bitmap

import (
	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/pixfmt"
)

// Copy copies srcRect from source into this bitmap at (dstX, dstY).
// Preconditions: srcRect lies inside source, the destination rect fits
// within this bitmap, and the two formats share a channelSize (byte-level
// compatibility only; semantic family mismatches are the caller's concern).
// When formats are identical, rows are copied verbatim; otherwise
// min(pixelSize) bytes are copied per pixel, truncating toward the
// destination's pixel layout.
func (b *Bitmap) Copy(source *Bitmap, srcRect tonefx.Rect, dstX, dstY int) error {
	if !srcRect.ValidFor(source.width, source.height) {
		return ErrRectOutOfBounds
	}
	dstRect := tonefx.NewRect(dstX, dstY, srcRect.Width, srcRect.Height)
	if !dstRect.ValidFor(b.width, b.height) {
		return ErrRectOutOfBounds
	}
	if source.format.ChannelSize() != b.format.ChannelSize() {
		return ErrChannelMismatch
	}

	return b.copyFromBuffer(source.buffer, source.format, source.width, srcRect, dstX, dstY)
}

// CopyRaw is the explicit-pitch variant of Copy: it copies srcRect out of a
// raw buffer of the given source plane format/width/height into this
// bitmap at (dstX, dstY).
func (b *Bitmap) CopyRaw(raw []byte, format pixfmt.Format, srcPlaneW, srcPlaneH int, srcRect tonefx.Rect, dstX, dstY int) error {
	if !srcRect.ValidFor(srcPlaneW, srcPlaneH) {
		return ErrRectOutOfBounds
	}
	dstRect := tonefx.NewRect(dstX, dstY, srcRect.Width, srcRect.Height)
	if !dstRect.ValidFor(b.width, b.height) {
		return ErrRectOutOfBounds
	}
	if format.ChannelSize() != b.format.ChannelSize() {
		return ErrChannelMismatch
	}
	return b.copyFromBuffer(raw, format, srcPlaneW, srcRect, dstX, dstY)
}

func (b *Bitmap) copyFromBuffer(src []byte, srcFormat pixfmt.Format, srcPlaneW int, srcRect tonefx.Rect, dstX, dstY int) error {
	srcPixelSize := srcFormat.PixelSize()
	dstPixelSize := b.format.PixelSize()
	perPixel := min(srcPixelSize, dstPixelSize)
	sameFormat := srcFormat == b.format

	for row := 0; row < srcRect.Height; row++ {
		srcRowStart := ((srcRect.Y+row)*srcPlaneW + srcRect.X) * srcPixelSize
		dstRowStart := ((dstY+row)*b.width + dstX) * dstPixelSize

		if sameFormat {
			rowBytes := srcRect.Width * srcPixelSize
			copy(b.buffer[dstRowStart:dstRowStart+rowBytes], src[srcRowStart:srcRowStart+rowBytes])
			continue
		}

		for col := 0; col < srcRect.Width; col++ {
			so := srcRowStart + col*srcPixelSize
			do := dstRowStart + col*dstPixelSize
			copy(b.buffer[do:do+perPixel], src[so:so+perPixel])
		}
	}
	return nil
}

// CopyChannel copies channelSize bytes per pixel from srcChannelIndex in
// source to dstChannelIndex in this bitmap, over srcRect placed at
// (dstX, dstY). Fails if either channel index is out of range.
func (b *Bitmap) CopyChannel(srcChannelIndex, dstChannelIndex int, source *Bitmap, srcRect tonefx.Rect, dstX, dstY int) error {
	if srcChannelIndex < 0 || srcChannelIndex >= source.format.ChannelCount {
		return ErrChannelOutOfRange
	}
	if dstChannelIndex < 0 || dstChannelIndex >= b.format.ChannelCount {
		return ErrChannelOutOfRange
	}
	if !srcRect.ValidFor(source.width, source.height) {
		return ErrRectOutOfBounds
	}
	dstRect := tonefx.NewRect(dstX, dstY, srcRect.Width, srcRect.Height)
	if !dstRect.ValidFor(b.width, b.height) {
		return ErrRectOutOfBounds
	}

	chSize := source.format.ChannelSize()
	if chSize != b.format.ChannelSize() {
		return ErrChannelMismatch
	}
	srcPixelSize := source.format.PixelSize()
	dstPixelSize := b.format.PixelSize()

	for row := 0; row < srcRect.Height; row++ {
		for col := 0; col < srcRect.Width; col++ {
			so := ((srcRect.Y+row)*source.width+(srcRect.X+col))*srcPixelSize + srcChannelIndex*chSize
			do := ((dstY+row)*b.width+(dstX+col))*dstPixelSize + dstChannelIndex*chSize
			copy(b.buffer[do:do+chSize], source.buffer[so:so+chSize])
		}
	}
	return nil
}

// Write is the inverse of Copy: it writes srcRect of this bitmap into dst
// (a raw buffer of the given plane pitch) at dstRect. Both rects must be
// the same size.
func (b *Bitmap) Write(dst []byte, dstRect tonefx.Rect, dstPlaneW int, srcRect tonefx.Rect) error {
	if !srcRect.ValidFor(b.width, b.height) {
		return ErrRectOutOfBounds
	}
	if srcRect.Width != dstRect.Width || srcRect.Height != dstRect.Height {
		return ErrRectOutOfBounds
	}
	pixelSize := b.format.PixelSize()
	for row := 0; row < srcRect.Height; row++ {
		so := ((srcRect.Y+row)*b.width + srcRect.X) * pixelSize
		do := ((dstRect.Y+row)*dstPlaneW + dstRect.X) * pixelSize
		rowBytes := srcRect.Width * pixelSize
		copy(dst[do:do+rowBytes], b.buffer[so:so+rowBytes])
	}
	return nil
}
