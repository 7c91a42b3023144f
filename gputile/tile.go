// Package gputile implements the tiled GPU-resident image representation:
// fixed-size textured patches backed by a per-device pool, composed into a
// GpuImageObject at arbitrary logical dimensions.
package gputile

import (
	"errors"

	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/pixfmt"
)

// TileSize is the fixed interior dimension of every tile's texture, per the
// data model's Tile invariant.
const TileSize = 1024

var (
	ErrInvalidDimensions = errors.New("gputile: invalid dimensions")
	ErrMonoRenderTarget  = errors.New("gputile: mono-format images have no render target")
	ErrBuffersDiscarded  = errors.New("gputile: image buffers have been discarded")
)

// Tile is one 1024x1024-padded textured patch of a GpuImageObject, aligned
// to a TileSize grid. realWidth/realHeight are the meaningful extent inside
// the padded texture: interior tiles are full (1024,1024); right/bottom
// edge tiles carry the image's leftover extent.
type Tile struct {
	X, Y                 int // grid-aligned origin, in pixels
	RealWidth, RealHeight int

	texture      backend.Texture
	renderTarget backend.RenderTarget // nil when the format is Mono or no target was requested
}

// Texture returns the tile's backing texture.
func (t *Tile) Texture() backend.Texture { return t.texture }

// RenderTarget returns the tile's render target, or nil if none exists
// (mono-format tiles never have one).
func (t *Tile) RenderTarget() backend.RenderTarget { return t.renderTarget }

// release returns the tile's GPU resources and clears its texture and
// render-target handles; the tile must not be reused.
func (t *Tile) release() {
	if t.texture != nil {
		t.texture.Destroy()
	}
	t.texture = nil
	t.renderTarget = nil
}

// tilePool acquires and releases tiles for a single device, falling back
// to creation when nothing pooled fits. Pools are per-device, matching the
// concurrency model's "texture/render-target pools are per-device, not
// per-thread" policy.
type tilePool struct {
	device backend.Device
	free   []*Tile
}

func newTilePool(device backend.Device) *tilePool {
	return &tilePool{device: device}
}

func (p *tilePool) tryAcquire(format pixfmt.Format, wantRenderTarget bool) *Tile {
	for i, t := range p.free {
		if t.texture.Format() != format {
			continue
		}
		if wantRenderTarget && t.renderTarget == nil {
			continue
		}
		p.free = append(p.free[:i], p.free[i+1:]...)
		return t
	}
	return nil
}

func (p *tilePool) createAndAcquire(format pixfmt.Format, wantRenderTarget bool) (*Tile, error) {
	asRenderTarget := wantRenderTarget && !format.IsMono()
	tex, err := p.device.CreateTexture(format, TileSize, TileSize, asRenderTarget)
	if err != nil {
		return nil, err
	}
	tile := &Tile{texture: tex}
	if asRenderTarget {
		if rt, ok := tex.(backend.RenderTarget); ok {
			tile.renderTarget = rt
		}
	}
	return tile, nil
}

func (p *tilePool) acquire(format pixfmt.Format, wantRenderTarget bool) (*Tile, error) {
	if t := p.tryAcquire(format, wantRenderTarget); t != nil {
		return t, nil
	}
	return p.createAndAcquire(format, wantRenderTarget)
}

func (p *tilePool) release(t *Tile) {
	p.free = append(p.free, t)
}

func (p *tilePool) discardAll() {
	for _, t := range p.free {
		t.release()
	}
	p.free = nil
}

// tileGridSize returns ceil(extent/TileSize).
func tileGridSize(extent int) int {
	return (extent + TileSize - 1) / TileSize
}

// realExtent returns the meaningful extent of the tile whose grid index is
// idx along an axis of the given logical size.
func realExtent(idx, tileCount, logicalSize int) int {
	if idx < tileCount-1 {
		return TileSize
	}
	leftover := logicalSize - (tileCount-1)*TileSize
	if leftover <= 0 {
		return TileSize
	}
	return leftover
}
