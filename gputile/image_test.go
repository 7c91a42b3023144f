package gputile

import (
	"bytes"
	"testing"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/bitmap"
	"github.com/tonefx/tonefx/pixfmt"
)

// pattern builds a deterministic, tightly packed RGBA8 plane of w*h pixels
// so round-trip tests can detect misplaced or corrupted bytes.
func pattern(w, h int) []byte {
	buf := make([]byte, w*h*4)
	for i := range buf {
		buf[i] = byte(i * 7)
	}
	return buf
}

func TestNewFull_Basic(t *testing.T) {
	dev := newTestDevice()
	img, err := NewFull(dev, pixfmt.RGBA8, 100, 80)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer img.DiscardBuffers()

	if w, h := img.LogicalSize(); w != 100 || h != 80 {
		t.Errorf("LogicalSize() = (%d,%d), want (100,80)", w, h)
	}
	if w, h := img.PaddedSize(); w != TileSize || h != TileSize {
		t.Errorf("PaddedSize() = (%d,%d), want (%d,%d)", w, h, TileSize, TileSize)
	}
	if hx, vt := img.TileGrid(); hx != 1 || vt != 1 {
		t.Errorf("TileGrid() = (%d,%d), want (1,1)", hx, vt)
	}
	tile := img.TileAt(0, 0)
	if tile == nil {
		t.Fatal("TileAt(0,0) = nil")
	}
	if tile.RealWidth != 100 || tile.RealHeight != 80 {
		t.Errorf("tile real size = (%d,%d), want (100,80)", tile.RealWidth, tile.RealHeight)
	}
	if img.IsStreamlined() {
		t.Error("NewFull image reports IsStreamlined() = true")
	}
}

func TestNewStreamlined_Basic(t *testing.T) {
	dev := newTestDevice()
	img, err := NewStreamlined(dev, pixfmt.RGBA8, 100, 80)
	if err != nil {
		t.Fatalf("NewStreamlined() = %v", err)
	}
	defer img.DiscardBuffers()

	if !img.IsStreamlined() {
		t.Error("NewStreamlined image reports IsStreamlined() = false")
	}
	if img.TileAt(0, 0) != nil {
		t.Error("TileAt() on a Streamlined image should return nil")
	}
	if img.ActiveTile() != nil {
		t.Error("ActiveTile() before any SwitchTile should be nil")
	}
}

func TestNewFull_InvalidDimensions(t *testing.T) {
	dev := newTestDevice()
	if _, err := NewFull(dev, pixfmt.RGBA8, 0, 10); err != ErrInvalidDimensions {
		t.Errorf("NewFull(w=0) = %v, want ErrInvalidDimensions", err)
	}
}

func TestFull_UploadRetrieveRoundTrip(t *testing.T) {
	dev := newTestDevice()
	img, err := NewFull(dev, pixfmt.RGBA8, 50, 40)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer img.DiscardBuffers()

	data := pattern(50, 40)
	full := tonefx.NewRect(0, 0, 50, 40)
	if err := img.Upload(data, pixfmt.RGBA8, 50, 40, full, 0, 0); err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	got, err := img.Retrieve(full)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("Retrieve() after full-rect Upload() did not round-trip")
	}
}

func TestFull_UploadPartialRect(t *testing.T) {
	dev := newTestDevice()
	img, err := NewFull(dev, pixfmt.RGBA8, 50, 40)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer img.DiscardBuffers()

	sub := pattern(10, 8)
	subRect := tonefx.NewRect(0, 0, 10, 8)
	if err := img.Upload(sub, pixfmt.RGBA8, 10, 8, subRect, 20, 15); err != nil {
		t.Fatalf("Upload() = %v", err)
	}

	got, err := img.Retrieve(tonefx.NewRect(20, 15, 10, 8))
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, sub) {
		t.Error("Retrieve() of the uploaded sub-rect did not match")
	}

	untouched, err := img.Retrieve(tonefx.NewRect(0, 0, 4, 4))
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	for _, b := range untouched {
		if b != 0 {
			t.Fatal("region outside the uploaded sub-rect should remain zero")
		}
	}
}

func TestFull_MultiTileUpload(t *testing.T) {
	dev := newTestDevice()
	width, height := TileSize+100, 50
	img, err := NewFull(dev, pixfmt.RGBA8, width, height)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer img.DiscardBuffers()

	if hx, _ := img.TileGrid(); hx != 2 {
		t.Fatalf("TileGrid() horizontal = %d, want 2", hx)
	}

	data := pattern(width, height)
	full := tonefx.NewRect(0, 0, width, height)
	if err := img.Upload(data, pixfmt.RGBA8, width, height, full, 0, 0); err != nil {
		t.Fatalf("Upload() across tile boundary = %v", err)
	}
	got, err := img.Retrieve(full)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("Retrieve() across tile boundary did not round-trip")
	}
}

func TestFull_FormatConversionOnUpload(t *testing.T) {
	dev := newTestDevice()
	img, err := NewFull(dev, pixfmt.Mono8, 16, 16)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer img.DiscardBuffers()

	src := make([]byte, 16*16*4)
	for i := 0; i < 16*16; i++ {
		src[i*4], src[i*4+1], src[i*4+2], src[i*4+3] = 10, 20, 30, 255
	}
	full := tonefx.NewRect(0, 0, 16, 16)
	if err := img.Upload(src, pixfmt.RGBA8, 16, 16, full, 0, 0); err != nil {
		t.Fatalf("Upload() with conversion = %v", err)
	}
	got, err := img.Retrieve(full)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if len(got) != 16*16 {
		t.Fatalf("Retrieve() returned %d bytes, want %d", len(got), 16*16)
	}
}

func TestCreateFromData(t *testing.T) {
	dev := newTestDevice()
	data := pattern(12, 9)
	img, err := CreateFromData(dev, pixfmt.RGBA8, 12, 9, data)
	if err != nil {
		t.Fatalf("CreateFromData() = %v", err)
	}
	defer img.DiscardBuffers()

	got, err := img.Retrieve(tonefx.NewRect(0, 0, 12, 9))
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("CreateFromData() did not preserve the source plane")
	}
}

func TestCreateFromBitmap(t *testing.T) {
	dev := newTestDevice()
	src := bitmap.New()
	data := pattern(10, 10)
	if err := src.Reset(pixfmt.RGBA8, 10, 10, data); err != nil {
		t.Fatalf("src.Reset() = %v", err)
	}

	img, err := CreateFromBitmap(dev, src, nil)
	if err != nil {
		t.Fatalf("CreateFromBitmap() = %v", err)
	}
	defer img.DiscardBuffers()

	dst := bitmap.New()
	if err := img.RetrieveBitmap(dst, tonefx.NewRect(0, 0, 10, 10)); err != nil {
		t.Fatalf("RetrieveBitmap() = %v", err)
	}
	if !bytes.Equal(dst.Buffer(), data) {
		t.Error("RetrieveBitmap() did not round-trip CreateFromBitmap()'s data")
	}
}

func TestImage_Copy(t *testing.T) {
	dev := newTestDevice()
	src, err := CreateFromData(dev, pixfmt.RGBA8, 20, 20, pattern(20, 20))
	if err != nil {
		t.Fatalf("CreateFromData() = %v", err)
	}
	defer src.DiscardBuffers()

	dst, err := NewFull(dev, pixfmt.RGBA8, 20, 20)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer dst.DiscardBuffers()

	if err := dst.Copy(src, tonefx.NewRect(0, 0, 20, 20), 0, 0); err != nil {
		t.Fatalf("Copy() = %v", err)
	}

	want, _ := src.Retrieve(tonefx.NewRect(0, 0, 20, 20))
	got, _ := dst.Retrieve(tonefx.NewRect(0, 0, 20, 20))
	if !bytes.Equal(got, want) {
		t.Error("Copy() did not transfer source pixels to destination")
	}
}

func TestStreamlined_UploadWithoutActiveTile(t *testing.T) {
	dev := newTestDevice()
	img, err := NewStreamlined(dev, pixfmt.RGBA8, 30, 20)
	if err != nil {
		t.Fatalf("NewStreamlined() = %v", err)
	}
	defer img.DiscardBuffers()

	data := pattern(30, 20)
	full := tonefx.NewRect(0, 0, 30, 20)
	if err := img.Upload(data, pixfmt.RGBA8, 30, 20, full, 0, 0); err != nil {
		t.Fatalf("Upload() = %v", err)
	}
	got, err := img.Retrieve(full)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("Streamlined Upload()/Retrieve() without an active tile did not round-trip via the mirror")
	}
}

func TestStreamlined_SwitchTileAndSynchronize(t *testing.T) {
	dev := newTestDevice()
	width, height := TileSize+100, 50
	img, err := NewStreamlined(dev, pixfmt.RGBA8, width, height)
	if err != nil {
		t.Fatalf("NewStreamlined() = %v", err)
	}
	defer img.DiscardBuffers()

	data := pattern(width, height)
	full := tonefx.NewRect(0, 0, width, height)
	if err := img.Upload(data, pixfmt.RGBA8, width, height, full, 0, 0); err != nil {
		t.Fatalf("Upload() = %v", err)
	}

	if err := img.SwitchTile(0, 0); err != nil {
		t.Fatalf("SwitchTile(0,0) = %v", err)
	}
	if tile := img.ActiveTile(); tile == nil || tile.X != 0 {
		t.Fatalf("ActiveTile() after SwitchTile(0,0) = %+v", tile)
	}

	if err := img.SwitchTile(1, 0); err != nil {
		t.Fatalf("SwitchTile(1,0) = %v", err)
	}
	if tile := img.ActiveTile(); tile == nil || tile.X != TileSize {
		t.Fatalf("ActiveTile() after SwitchTile(1,0) = %+v", tile)
	}

	if err := img.Synchronize(); err != nil {
		t.Fatalf("Synchronize() = %v", err)
	}

	got, err := img.Retrieve(full)
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("Retrieve() after switching to another tile did not preserve uploaded data")
	}
}

func TestSwitchTile_RequiresStreamlined(t *testing.T) {
	dev := newTestDevice()
	img, err := NewFull(dev, pixfmt.RGBA8, 10, 10)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer img.DiscardBuffers()

	if err := img.SwitchTile(0, 0); err != ErrNotStreamlined {
		t.Errorf("SwitchTile() on a Full image = %v, want ErrNotStreamlined", err)
	}
}

func TestUpload_RectOutOfBounds(t *testing.T) {
	dev := newTestDevice()
	img, err := NewFull(dev, pixfmt.RGBA8, 10, 10)
	if err != nil {
		t.Fatalf("NewFull() = %v", err)
	}
	defer img.DiscardBuffers()

	data := pattern(10, 10)
	oob := tonefx.NewRect(0, 0, 10, 10)
	if err := img.Upload(data, pixfmt.RGBA8, 10, 10, oob, 5, 5); err != ErrRectOutOfBounds {
		t.Errorf("Upload() past image bounds = %v, want ErrRectOutOfBounds", err)
	}
}
