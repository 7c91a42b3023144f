package gputile

import (
	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/bitmap"
	"github.com/tonefx/tonefx/blobpool"
	"github.com/tonefx/tonefx/pixfmt"
)

// Image is the tiled GPU-resident image: {format, logicalWidth,
// logicalHeight, paddedWidth, paddedHeight, horizontalTiles, verticalTiles,
// tiles}. It has two operating variants: Full (every tile resident on the
// device) and Streamlined (a single active tile plus a full CPU mirror),
// selected at construction via NewFull / NewStreamlined.
type Image struct {
	device backend.Device
	pool   *tilePool

	format pixfmt.Format
	logicalWidth, logicalHeight int
	paddedWidth, paddedHeight   int
	horizontalTiles, verticalTiles int

	tiles []*Tile

	streamlined bool
	mirror      *bitmap.Bitmap // non-nil only for Streamlined
	activeTile  *Tile
	activeTX, activeTY int
	hasActiveTile bool

	staging *blobpool.Pool // lazily created; backs upload/retrieve staging buffers
}

// stagingPool returns the image's staging allocator, creating it on first
// use. Staging buffers are per-tile-intersection and short-lived, so a
// shared pool avoids re-allocating one per Upload/Retrieve call.
func (img *Image) stagingPool() *blobpool.Pool {
	if img.staging == nil {
		img.staging = blobpool.New()
	}
	return img.staging
}

// NewFull allocates a Full GpuImageObject: every tile is resident on
// device immediately.
func NewFull(device backend.Device, format pixfmt.Format, width, height int) (*Image, error) {
	img, err := newImage(device, format, width, height, false)
	if err != nil {
		return nil, err
	}
	pool := newTilePool(device)
	img.pool = pool
	for ty := 0; ty < img.verticalTiles; ty++ {
		for tx := 0; tx < img.horizontalTiles; tx++ {
			tile, err := pool.acquire(format, true)
			if err != nil {
				img.DiscardBuffers()
				return nil, err
			}
			tile.X, tile.Y = tx*TileSize, ty*TileSize
			tile.RealWidth = realExtent(tx, img.horizontalTiles, width)
			tile.RealHeight = realExtent(ty, img.verticalTiles, height)
			img.tiles[ty*img.horizontalTiles+tx] = tile
		}
	}
	return img, nil
}

// NewStreamlined allocates a Streamlined GpuImageObject: a single active
// GPU tile plus a full CPU mirror at logical dimensions, used when device
// memory budget forbids full tiled residency.
func NewStreamlined(device backend.Device, format pixfmt.Format, width, height int) (*Image, error) {
	img, err := newImage(device, format, width, height, true)
	if err != nil {
		return nil, err
	}
	img.pool = newTilePool(device)
	img.mirror = bitmap.New()
	if err := img.mirror.Reset(format, width, height, nil); err != nil {
		return nil, err
	}
	return img, nil
}

func newImage(device backend.Device, format pixfmt.Format, width, height int, streamlined bool) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	ht := tileGridSize(width)
	vt := tileGridSize(height)
	img := &Image{
		device:          device,
		format:          format,
		logicalWidth:    width,
		logicalHeight:   height,
		paddedWidth:     ht * TileSize,
		paddedHeight:    vt * TileSize,
		horizontalTiles: ht,
		verticalTiles:   vt,
		streamlined:     streamlined,
	}
	if !streamlined {
		img.tiles = make([]*Tile, ht*vt)
	}
	return img, nil
}

// CreateFromData allocates a Full image of (format,w,h) and uploads data
// (a tightly packed w*h plane) into it.
func CreateFromData(device backend.Device, format pixfmt.Format, width, height int, data []byte) (*Image, error) {
	img, err := NewFull(device, format, width, height)
	if err != nil {
		return nil, err
	}
	if err := img.Upload(data, format, width, height, tonefx.NewRect(0, 0, width, height), 0, 0); err != nil {
		img.DiscardBuffers()
		return nil, err
	}
	return img, nil
}

// CreateFromBitmap allocates a Full image matching src's format/dimensions
// (or rect, if given) and uploads src into it.
func CreateFromBitmap(device backend.Device, src *bitmap.Bitmap, rect *tonefx.Rect) (*Image, error) {
	area := tonefx.NewRect(0, 0, src.Width(), src.Height())
	if rect != nil {
		area = *rect
	}
	img, err := NewFull(device, src.Format(), area.Width, area.Height)
	if err != nil {
		return nil, err
	}
	if err := img.UploadBitmap(src, area, 0, 0); err != nil {
		img.DiscardBuffers()
		return nil, err
	}
	return img, nil
}

// Format returns the image's pixel format.
func (img *Image) Format() pixfmt.Format { return img.format }

// LogicalSize returns (width, height): the meaningful extent of the image.
func (img *Image) LogicalSize() (int, int) { return img.logicalWidth, img.logicalHeight }

// PaddedSize returns (paddedWidth, paddedHeight): the next TileSize
// multiple enclosing the logical size.
func (img *Image) PaddedSize() (int, int) { return img.paddedWidth, img.paddedHeight }

// TileGrid returns (horizontalTiles, verticalTiles).
func (img *Image) TileGrid() (int, int) { return img.horizontalTiles, img.verticalTiles }

// IsStreamlined reports whether this image uses the Streamlined variant.
func (img *Image) IsStreamlined() bool { return img.streamlined }

// TileAt returns the tile at grid index (tx,ty) for a Full image, or nil
// for a Streamlined image (use SwitchTile instead).
func (img *Image) TileAt(tx, ty int) *Tile {
	if img.streamlined || tx < 0 || ty < 0 || tx >= img.horizontalTiles || ty >= img.verticalTiles {
		return nil
	}
	return img.tiles[ty*img.horizontalTiles+tx]
}

// DiscardBuffers forcibly releases all tile resources back to the device
// pool. Subsequent operations on this Image require re-creation.
func (img *Image) DiscardBuffers() {
	for i, t := range img.tiles {
		if t != nil {
			img.pool.release(t)
			img.tiles[i] = nil
		}
	}
	if img.activeTile != nil {
		img.pool.release(img.activeTile)
		img.activeTile = nil
	}
	img.pool.discardAll()
	img.hasActiveTile = false
}
