package gputile

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/tonefx/tonefx/backend/gl"
	"github.com/tonefx/tonefx/pixfmt"
)

type nullProvider struct{}

func (nullProvider) Device() gpucontext.Device             { return nil }
func (nullProvider) Queue() gpucontext.Queue                { return nil }
func (nullProvider) Adapter() gpucontext.Adapter            { return nil }
func (nullProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func newTestDevice() *gl.Device {
	return gl.NewDevice(nullProvider{})
}

func TestTileGridSize(t *testing.T) {
	cases := []struct {
		extent, want int
	}{
		{0, 0}, {1, 1}, {TileSize, 1}, {TileSize + 1, 2}, {2 * TileSize, 2},
	}
	for _, c := range cases {
		if got := tileGridSize(c.extent); got != c.want {
			t.Errorf("tileGridSize(%d) = %d, want %d", c.extent, got, c.want)
		}
	}
}

func TestRealExtent(t *testing.T) {
	if got := realExtent(0, 2, TileSize+100); got != TileSize {
		t.Errorf("interior tile realExtent = %d, want %d", got, TileSize)
	}
	if got := realExtent(1, 2, TileSize+100); got != 100 {
		t.Errorf("edge tile realExtent = %d, want 100", got)
	}
}

func TestTilePool_AcquireReleaseReuse(t *testing.T) {
	dev := newTestDevice()
	pool := newTilePool(dev)

	tile, err := pool.acquire(pixfmt.RGBA8, true)
	if err != nil {
		t.Fatalf("acquire() = %v", err)
	}
	if dev.LiveTextureCount() != 1 {
		t.Fatalf("LiveTextureCount() = %d, want 1", dev.LiveTextureCount())
	}
	pool.release(tile)

	reused, err := pool.acquire(pixfmt.RGBA8, true)
	if err != nil {
		t.Fatalf("acquire() after release = %v", err)
	}
	if reused != tile {
		t.Error("acquire() after release should reuse the freed tile, not create a new one")
	}
	if dev.LiveTextureCount() != 1 {
		t.Errorf("LiveTextureCount() after reuse = %d, want 1", dev.LiveTextureCount())
	}
}

func TestTilePool_MonoNeverRenderTarget(t *testing.T) {
	dev := newTestDevice()
	pool := newTilePool(dev)

	tile, err := pool.acquire(pixfmt.Mono8, true)
	if err != nil {
		t.Fatalf("acquire(Mono8, true) = %v", err)
	}
	if tile.RenderTarget() != nil {
		t.Error("Mono8 tile should never have a render target")
	}
}

func TestTilePool_DiscardAll(t *testing.T) {
	dev := newTestDevice()
	pool := newTilePool(dev)
	tile, _ := pool.acquire(pixfmt.RGBA8, false)
	pool.release(tile)
	pool.discardAll()
	if len(pool.free) != 0 {
		t.Errorf("discardAll() left %d free tiles, want 0", len(pool.free))
	}
	if dev.LiveTextureCount() != 0 {
		t.Errorf("LiveTextureCount() after discardAll = %d, want 0", dev.LiveTextureCount())
	}
}
