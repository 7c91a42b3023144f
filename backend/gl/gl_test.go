package gl

import (
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/tonefx/tonefx/pixfmt"
)

type nullProvider struct{}

func (nullProvider) Device() gpucontext.Device           { return nil }
func (nullProvider) Queue() gpucontext.Queue             { return nil }
func (nullProvider) Adapter() gpucontext.Adapter         { return nil }
func (nullProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func TestCreateTexture_Basic(t *testing.T) {
	dev := NewDevice(nullProvider{})
	tex, err := dev.CreateTexture(pixfmt.RGBA8, 64, 64, true)
	if err != nil {
		t.Fatalf("CreateTexture() = %v", err)
	}
	if tex.Width() != 64 || tex.Height() != 64 {
		t.Errorf("texture dims = (%d,%d), want (64,64)", tex.Width(), tex.Height())
	}
	if rt, ok := tex.(interface{ IsRenderTarget() bool }); !ok || !rt.IsRenderTarget() {
		t.Error("texture created with asRenderTarget=true should report IsRenderTarget()=true")
	}
}

func TestCreateTexture_MonoRejectsRenderTarget(t *testing.T) {
	dev := NewDevice(nullProvider{})
	if _, err := dev.CreateTexture(pixfmt.Mono8, 32, 32, true); err != ErrMonoNotRenderable {
		t.Errorf("CreateTexture(Mono8, renderTarget=true) = %v, want ErrMonoNotRenderable", err)
	}
	if _, err := dev.CreateTexture(pixfmt.Mono8, 32, 32, false); err != nil {
		t.Errorf("CreateTexture(Mono8, renderTarget=false) = %v, want nil", err)
	}
}

func TestCreateTexture_InvalidSize(t *testing.T) {
	dev := NewDevice(nullProvider{})
	if _, err := dev.CreateTexture(pixfmt.RGBA8, 0, 10, false); err != ErrInvalidTextureSize {
		t.Errorf("CreateTexture(w=0) = %v, want ErrInvalidTextureSize", err)
	}
}

func TestCreateTexture_HandlesStartZeroValue(t *testing.T) {
	dev := NewDevice(nullProvider{})
	tex, err := dev.CreateTexture(pixfmt.RGBA8, 8, 8, false)
	if err != nil {
		t.Fatalf("CreateTexture() = %v", err)
	}
	glTex, ok := tex.(*Texture)
	if !ok {
		t.Fatalf("CreateTexture() returned %T, want *Texture", tex)
	}
	var zeroID core.TextureID
	var zeroViewID core.TextureViewID
	if glTex.TextureID() != zeroID {
		t.Errorf("TextureID() = %v, want zero value until driver-backed creation is wired in", glTex.TextureID())
	}
	if glTex.ViewID() != zeroViewID {
		t.Errorf("ViewID() = %v, want zero value until driver-backed creation is wired in", glTex.ViewID())
	}
}

func TestTexture_DestroyIsIdempotent(t *testing.T) {
	dev := NewDevice(nullProvider{})
	tex, _ := dev.CreateTexture(pixfmt.RGBA8, 16, 16, false)
	if dev.LiveTextureCount() != 1 {
		t.Fatalf("LiveTextureCount() = %d, want 1", dev.LiveTextureCount())
	}
	tex.Destroy()
	tex.Destroy()
	if dev.LiveTextureCount() != 0 {
		t.Errorf("LiveTextureCount() after double Destroy = %d, want 0", dev.LiveTextureCount())
	}
}
