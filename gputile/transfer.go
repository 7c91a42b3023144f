package gputile

import (
	"errors"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/bitmap"
	"github.com/tonefx/tonefx/pixfmt"
)

var (
	ErrRectOutOfBounds    = errors.New("gputile: rect out of bounds")
	ErrUnsupportedConvert = errors.New("gputile: no conversion path between formats")
	ErrStagingAllocFailed = errors.New("gputile: staging buffer allocation failed")
	ErrNotStreamlined     = errors.New("gputile: operation requires a Streamlined image")
)

// Upload writes a sub-rectangle of a tightly packed plane (data, in format,
// srcPlaneW x srcPlaneH) at (dstX,dstY) in the image's logical space,
// converting pixel format as needed. For a Full image every tile
// intersecting the destination rect receives its own staged sub-upload; for
// a Streamlined image the write lands in the CPU mirror and, if it
// overlaps the active tile, in that tile's texture too.
func (img *Image) Upload(data []byte, format pixfmt.Format, srcPlaneW, srcPlaneH int, srcRect tonefx.Rect, dstX, dstY int) error {
	if !srcRect.ValidFor(srcPlaneW, srcPlaneH) {
		return ErrRectOutOfBounds
	}
	destRect := tonefx.NewRect(dstX, dstY, srcRect.Width, srcRect.Height)
	if !destRect.ValidFor(img.logicalWidth, img.logicalHeight) {
		return ErrRectOutOfBounds
	}
	if img.streamlined {
		return img.uploadStreamlined(data, format, srcPlaneW, srcRect, dstX, dstY)
	}
	return img.uploadFull(data, format, srcPlaneW, srcRect, dstX, dstY)
}

// UploadBitmap is the Bitmap-sourced convenience form of Upload.
func (img *Image) UploadBitmap(src *bitmap.Bitmap, rect tonefx.Rect, dstX, dstY int) error {
	if !rect.ValidFor(src.Width(), src.Height()) {
		return ErrRectOutOfBounds
	}
	return img.Upload(src.Buffer(), src.Format(), src.Width(), src.Height(), rect, dstX, dstY)
}

func (img *Image) uploadFull(data []byte, format pixfmt.Format, srcPlaneW int, srcRect tonefx.Rect, dstX, dstY int) error {
	destRect := tonefx.NewRect(dstX, dstY, srcRect.Width, srcRect.Height)
	pool := img.stagingPool()
	dstPixelSize := img.format.PixelSize()

	for _, tile := range img.tiles {
		if tile == nil {
			continue
		}
		tileRect := tonefx.NewRect(tile.X, tile.Y, tile.RealWidth, tile.RealHeight)
		inter, ok := destRect.Intersect(tileRect)
		if !ok {
			continue
		}
		srcSubRect := tonefx.NewRect(srcRect.X+(inter.X-dstX), srcRect.Y+(inter.Y-dstY), inter.Width, inter.Height)

		blob := pool.Alloc(inter.Width * inter.Height * dstPixelSize)
		if blob.Empty() {
			return ErrStagingAllocFailed
		}
		if err := fillConverted(blob.Bytes(), data, format, srcPlaneW, srcSubRect, img.format); err != nil {
			blob.Release()
			return err
		}
		err := img.device.UploadTexture(tile.texture, inter.X-tile.X, inter.Y-tile.Y, inter.Width, inter.Height, blob.Bytes())
		blob.Release()
		if err != nil {
			return err
		}
	}
	return nil
}

func (img *Image) uploadStreamlined(data []byte, format pixfmt.Format, srcPlaneW int, srcRect tonefx.Rect, dstX, dstY int) error {
	converted, err := convertPlane(data, format, srcPlaneW, srcRect, img.format)
	if err != nil {
		return err
	}
	packedRect := tonefx.NewRect(0, 0, srcRect.Width, srcRect.Height)
	if err := img.mirror.CopyRaw(converted, img.format, srcRect.Width, srcRect.Height, packedRect, dstX, dstY); err != nil {
		return err
	}
	if !img.hasActiveTile {
		return nil
	}

	activeTileRect := tonefx.NewRect(img.activeTile.X, img.activeTile.Y, img.activeTile.RealWidth, img.activeTile.RealHeight)
	destRect := tonefx.NewRect(dstX, dstY, srcRect.Width, srcRect.Height)
	inter, ok := destRect.Intersect(activeTileRect)
	if !ok {
		return nil
	}

	localSrcX := inter.X - dstX
	localSrcY := inter.Y - dstY
	localRect := tonefx.NewRect(localSrcX, localSrcY, inter.Width, inter.Height)
	pixelSize := img.format.PixelSize()
	staging := make([]byte, inter.Width*inter.Height*pixelSize)
	if err := fillConverted(staging, converted, img.format, srcRect.Width, localRect, img.format); err != nil {
		return err
	}
	return img.device.UploadTexture(img.activeTile.texture, inter.X-img.activeTile.X, inter.Y-img.activeTile.Y, inter.Width, inter.Height, staging)
}

// Retrieve reads rect (in logical coordinates) back into a freshly
// allocated, tightly packed buffer in the image's own format.
func (img *Image) Retrieve(rect tonefx.Rect) ([]byte, error) {
	if !rect.ValidFor(img.logicalWidth, img.logicalHeight) {
		return nil, ErrRectOutOfBounds
	}
	if img.streamlined {
		return img.retrieveStreamlined(rect)
	}
	return img.retrieveFull(rect)
}

// RetrieveBitmap is the Bitmap-destined convenience form of Retrieve: dst is
// reset to (format, rect.Width, rect.Height) and filled with rect's pixels.
func (img *Image) RetrieveBitmap(dst *bitmap.Bitmap, rect tonefx.Rect) error {
	data, err := img.Retrieve(rect)
	if err != nil {
		return err
	}
	if err := dst.Reset(img.format, rect.Width, rect.Height, nil); err != nil {
		return err
	}
	packed := tonefx.NewRect(0, 0, rect.Width, rect.Height)
	return dst.CopyRaw(data, img.format, rect.Width, rect.Height, packed, 0, 0)
}

func (img *Image) retrieveFull(rect tonefx.Rect) ([]byte, error) {
	pixelSize := img.format.PixelSize()
	out := make([]byte, rect.Width*rect.Height*pixelSize)

	for _, tile := range img.tiles {
		if tile == nil {
			continue
		}
		tileRect := tonefx.NewRect(tile.X, tile.Y, tile.RealWidth, tile.RealHeight)
		inter, ok := rect.Intersect(tileRect)
		if !ok {
			continue
		}
		pixels, err := img.device.DownloadTexture(tile.texture, inter.X-tile.X, inter.Y-tile.Y, inter.Width, inter.Height)
		if err != nil {
			return nil, err
		}
		dstOffX := inter.X - rect.X
		dstOffY := inter.Y - rect.Y
		for row := 0; row < inter.Height; row++ {
			dstRowStart := ((dstOffY+row)*rect.Width + dstOffX) * pixelSize
			srcRowStart := row * inter.Width * pixelSize
			n := inter.Width * pixelSize
			copy(out[dstRowStart:dstRowStart+n], pixels[srcRowStart:srcRowStart+n])
		}
	}
	return out, nil
}

func (img *Image) retrieveStreamlined(rect tonefx.Rect) ([]byte, error) {
	if img.hasActiveTile {
		if err := img.pullActiveTile(); err != nil {
			return nil, err
		}
	}
	out := make([]byte, rect.Width*rect.Height*img.format.PixelSize())
	packed := tonefx.NewRect(0, 0, rect.Width, rect.Height)
	if err := img.mirror.Write(out, packed, rect.Width, rect); err != nil {
		return nil, err
	}
	return out, nil
}

// Copy transfers srcRect of source into this image at (dstX,dstY), going
// through a CPU-side staging round trip: the concrete GPU-to-GPU driver
// copy path is out of this runtime's scope (see backend/gl), matching how
// Upload/Download already model device transfer as opaque staging.
func (img *Image) Copy(source *Image, srcRect tonefx.Rect, dstX, dstY int) error {
	data, err := source.Retrieve(srcRect)
	if err != nil {
		return err
	}
	packed := tonefx.NewRect(0, 0, srcRect.Width, srcRect.Height)
	return img.Upload(data, source.format, srcRect.Width, srcRect.Height, packed, dstX, dstY)
}

// ActiveTile returns the Streamlined image's currently resident GPU tile,
// or nil if none is active (or the image is Full, which has no single
// active tile).
func (img *Image) ActiveTile() *Tile {
	if !img.hasActiveTile {
		return nil
	}
	return img.activeTile
}

// SwitchTile makes the tile at grid index (nx,ny) the Streamlined image's
// active GPU tile: the previous active tile (if any) is synchronized back
// to the CPU mirror and released, then the new tile is acquired and primed
// from the mirror.
func (img *Image) SwitchTile(nx, ny int) error {
	if !img.streamlined {
		return ErrNotStreamlined
	}
	if nx < 0 || ny < 0 || nx >= img.horizontalTiles || ny >= img.verticalTiles {
		return ErrInvalidDimensions
	}
	if img.hasActiveTile && img.activeTX == nx && img.activeTY == ny {
		return nil
	}

	if img.hasActiveTile {
		if err := img.pullActiveTile(); err != nil {
			return err
		}
		img.pool.release(img.activeTile)
		img.activeTile = nil
		img.hasActiveTile = false
	}

	tile, err := img.pool.acquire(img.format, true)
	if err != nil {
		return err
	}
	tile.X, tile.Y = nx*TileSize, ny*TileSize
	tile.RealWidth = realExtent(nx, img.horizontalTiles, img.logicalWidth)
	tile.RealHeight = realExtent(ny, img.verticalTiles, img.logicalHeight)

	pixelSize := img.format.PixelSize()
	staging := make([]byte, tile.RealWidth*tile.RealHeight*pixelSize)
	tileRect := tonefx.NewRect(tile.X, tile.Y, tile.RealWidth, tile.RealHeight)
	packed := tonefx.NewRect(0, 0, tile.RealWidth, tile.RealHeight)
	if err := img.mirror.Write(staging, packed, tile.RealWidth, tileRect); err != nil {
		img.pool.release(tile)
		return err
	}
	if err := img.device.UploadTexture(tile.texture, 0, 0, tile.RealWidth, tile.RealHeight, staging); err != nil {
		img.pool.release(tile)
		return err
	}

	img.activeTile = tile
	img.activeTX, img.activeTY = nx, ny
	img.hasActiveTile = true
	return nil
}

// Synchronize pulls the Streamlined image's active tile back into the CPU
// mirror, reconciling any GPU-side writes (such as a filter render pass)
// the mirror does not yet reflect. A no-op for a Full image or a
// Streamlined image with no active tile.
func (img *Image) Synchronize() error {
	if !img.streamlined || !img.hasActiveTile {
		return nil
	}
	return img.pullActiveTile()
}

func (img *Image) pullActiveTile() error {
	tile := img.activeTile
	pixels, err := img.device.DownloadTexture(tile.texture, 0, 0, tile.RealWidth, tile.RealHeight)
	if err != nil {
		return err
	}
	rect := tonefx.NewRect(0, 0, tile.RealWidth, tile.RealHeight)
	return img.mirror.CopyRaw(pixels, img.format, tile.RealWidth, tile.RealHeight, rect, tile.X, tile.Y)
}

// convertPlane converts rect of a tightly packed plane (data, in format,
// pitch srcPlaneW) into a freshly allocated buffer in dstFormat.
func convertPlane(data []byte, format pixfmt.Format, srcPlaneW int, rect tonefx.Rect, dstFormat pixfmt.Format) ([]byte, error) {
	out := make([]byte, rect.Width*rect.Height*dstFormat.PixelSize())
	if err := fillConverted(out, data, format, srcPlaneW, rect, dstFormat); err != nil {
		return nil, err
	}
	return out, nil
}

// fillConverted converts rect of a tightly packed plane (data, in format,
// pitch srcPlaneW) into dst, which must already be sized
// rect.Width*rect.Height*dstFormat.PixelSize().
func fillConverted(dst []byte, data []byte, format pixfmt.Format, srcPlaneW int, rect tonefx.Rect, dstFormat pixfmt.Format) error {
	convFn, ok := pixfmt.Lookup(format, dstFormat)
	if !ok {
		return ErrUnsupportedConvert
	}
	srcPixelSize := format.PixelSize()
	dstPixelSize := dstFormat.PixelSize()
	for row := 0; row < rect.Height; row++ {
		srcRowStart := ((rect.Y+row)*srcPlaneW + rect.X) * srcPixelSize
		dstRowStart := row * rect.Width * dstPixelSize
		convFn(dst[dstRowStart:], data[srcRowStart:], rect.Width)
	}
	return nil
}
