package layer

import (
	"bytes"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend/cpu"
	"github.com/tonefx/tonefx/backend/gl"
	"github.com/tonefx/tonefx/pixfmt"
)

type nullProvider struct{}

func (nullProvider) Device() gpucontext.Device             { return nil }
func (nullProvider) Queue() gpucontext.Queue                { return nil }
func (nullProvider) Adapter() gpucontext.Adapter            { return nil }
func (nullProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func newGLDevice() *gl.Device {
	return gl.NewDevice(nullProvider{})
}

func rgbaPattern(w, h int) []byte {
	buf := make([]byte, w*h*4)
	for i := range buf {
		buf[i] = byte(i)
	}
	return buf
}

func TestNew_CPU(t *testing.T) {
	data := rgbaPattern(2, 2)
	l, err := New("base", cpu.Device{}, pixfmt.RGBA8, 2, 2, data)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	if !l.ContainsDataForBackend(1) {
		t.Errorf("ContainsDataForBackend(CPU) = false")
	}
	got, err := l.Retrieve(tonefx.NewRect(0, 0, 2, 2))
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Retrieve() = %v, want %v", got, data)
	}
}

func TestUpdateDataForBackend_IdempotentAndGPU(t *testing.T) {
	data := rgbaPattern(4, 4)
	l, err := New("base", cpu.Device{}, pixfmt.RGBA8, 4, 4, data)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	dev := newGLDevice()
	if err := l.UpdateDataForBackend(dev); err != nil {
		t.Fatalf("UpdateDataForBackend() = %v", err)
	}
	if !l.ContainsDataForBackend(dev.ID()) {
		t.Errorf("ContainsDataForBackend(gl) = false after UpdateDataForBackend")
	}
	if err := l.UpdateDataForBackend(dev); err != nil {
		t.Fatalf("UpdateDataForBackend() second call = %v", err)
	}

	got, err := l.Retrieve(tonefx.NewRect(0, 0, 4, 4))
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Retrieve() after GPU sync = %v, want %v", got, data)
	}
}

func TestDeleteDataForBackend(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 2, 2, rgbaPattern(2, 2))
	dev := newGLDevice()
	if err := l.UpdateDataForBackend(dev); err != nil {
		t.Fatalf("UpdateDataForBackend() = %v", err)
	}
	l.DeleteDataForDevice(dev)
	if l.ContainsDataForBackend(dev.ID()) {
		t.Errorf("ContainsDataForBackend(gl) = true after delete")
	}
	if !l.ContainsDataForBackend(1) {
		t.Errorf("ContainsDataForBackend(CPU) = false, CPU object should be untouched")
	}
}

func TestReset(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 2, 2, rgbaPattern(2, 2))
	l.Reset()
	if l.Width() != 0 || l.Height() != 0 {
		t.Errorf("Width/Height after Reset = %d/%d, want 0/0", l.Width(), l.Height())
	}
	if l.ContainsDataForBackend(1) {
		t.Errorf("ContainsDataForBackend(CPU) = true after Reset")
	}
}

func TestFill(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 2, 2, nil)
	if err := l.Fill([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Fill() = %v", err)
	}
	got, err := l.Retrieve(tonefx.NewRect(0, 0, 2, 2))
	if err != nil {
		t.Fatalf("Retrieve() = %v", err)
	}
	want := bytes.Repeat([]byte{1, 2, 3, 4}, 4)
	if !bytes.Equal(got, want) {
		t.Errorf("Retrieve() after Fill = %v, want %v", got, want)
	}
}

func TestFillChannel_RequiresCPUBackend(t *testing.T) {
	l, _ := New("base", newGLDevice(), pixfmt.RGBA8, 2, 2, rgbaPattern(2, 2))
	if err := l.FillChannel(0, []byte{9}); err != ErrNoCPUBackend {
		t.Errorf("FillChannel() without CPU backend = %v, want ErrNoCPUBackend", err)
	}
}

func TestFillChannel(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 1, 1, []byte{1, 2, 3, 4})
	if err := l.FillChannel(1, []byte{99}); err != nil {
		t.Fatalf("FillChannel() = %v", err)
	}
	got, _ := l.Retrieve(tonefx.NewRect(0, 0, 1, 1))
	if !bytes.Equal(got, []byte{1, 99, 3, 4}) {
		t.Errorf("Retrieve() after FillChannel = %v, want [1 99 3 4]", got)
	}
}

func TestCopy(t *testing.T) {
	src, _ := New("src", cpu.Device{}, pixfmt.RGBA8, 2, 2, rgbaPattern(2, 2))
	dst, _ := New("dst", cpu.Device{}, pixfmt.RGBA8, 2, 2, nil)
	if err := dst.Copy(src, tonefx.NewRect(0, 0, 2, 2), 0, 0); err != nil {
		t.Fatalf("Copy() = %v", err)
	}
	got, _ := dst.Retrieve(tonefx.NewRect(0, 0, 2, 2))
	want, _ := src.Retrieve(tonefx.NewRect(0, 0, 2, 2))
	if !bytes.Equal(got, want) {
		t.Errorf("Retrieve() after Copy = %v, want %v", got, want)
	}
}

func TestCopy_FormatMismatch(t *testing.T) {
	src, _ := New("src", cpu.Device{}, pixfmt.RGBA8, 2, 2, rgbaPattern(2, 2))
	dst, _ := New("dst", cpu.Device{}, pixfmt.RGB8, 2, 2, nil)
	if err := dst.Copy(src, tonefx.NewRect(0, 0, 2, 2), 0, 0); err != ErrFormatMismatch {
		t.Errorf("Copy() with mismatched formats = %v, want ErrFormatMismatch", err)
	}
}

func TestCopyChannel(t *testing.T) {
	src, _ := New("src", cpu.Device{}, pixfmt.Mono8, 1, 1, []byte{200})
	dst, _ := New("dst", cpu.Device{}, pixfmt.RGBA8, 1, 1, []byte{1, 2, 3, 4})
	if err := dst.CopyChannel(0, 3, src, tonefx.NewRect(0, 0, 1, 1), 0, 0); err != nil {
		t.Fatalf("CopyChannel() = %v", err)
	}
	got, _ := dst.Retrieve(tonefx.NewRect(0, 0, 1, 1))
	if !bytes.Equal(got, []byte{1, 2, 3, 200}) {
		t.Errorf("Retrieve() after CopyChannel = %v, want [1 2 3 200]", got)
	}
}

func TestAddAndRemoveAlphaChannel(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGB8, 1, 1, []byte{10, 20, 30})
	if err := l.AddAlphaChannel(); err != nil {
		t.Fatalf("AddAlphaChannel() = %v", err)
	}
	if l.Format() != pixfmt.RGBA8 {
		t.Fatalf("Format() after AddAlphaChannel = %v, want RGBA8", l.Format())
	}
	changed, err := l.RemoveAlphaChannel()
	if err != nil || !changed {
		t.Fatalf("RemoveAlphaChannel() = (%v, %v), want (true, nil)", changed, err)
	}
	if l.Format() != pixfmt.RGB8 {
		t.Fatalf("Format() after RemoveAlphaChannel = %v, want RGB8", l.Format())
	}
}

func TestRemoveAlphaChannel_NoAlphaIsNoop(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGB8, 1, 1, []byte{10, 20, 30})
	changed, err := l.RemoveAlphaChannel()
	if err != nil || changed {
		t.Errorf("RemoveAlphaChannel() on non-alpha format = (%v, %v), want (false, nil)", changed, err)
	}
}

func TestDuplicate(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 2, 2, rgbaPattern(2, 2))
	dup, err := l.Duplicate()
	if err != nil {
		t.Fatalf("Duplicate() = %v", err)
	}
	got, _ := dup.Retrieve(tonefx.NewRect(0, 0, 2, 2))
	want, _ := l.Retrieve(tonefx.NewRect(0, 0, 2, 2))
	if !bytes.Equal(got, want) {
		t.Errorf("Duplicate().Retrieve() = %v, want %v", got, want)
	}
}

func TestDuplicateChannel(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 1, 1, []byte{1, 2, 3, 4})
	dup, err := l.DuplicateChannel(2, nil)
	if err != nil {
		t.Fatalf("DuplicateChannel() = %v", err)
	}
	if dup.Format() != pixfmt.Mono8 {
		t.Fatalf("DuplicateChannel().Format() = %v, want Mono8", dup.Format())
	}
	got, _ := dup.Retrieve(tonefx.NewRect(0, 0, 1, 1))
	if !bytes.Equal(got, []byte{3}) {
		t.Errorf("DuplicateChannel().Retrieve() = %v, want [3]", got)
	}
}

func TestApplyMask_NoMaskOrMode(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 1, 1, []byte{1, 2, 3, 4})
	applied, err := l.ApplyMask()
	if err != nil || applied {
		t.Errorf("ApplyMask() with no mask/mode = (%v, %v), want (false, nil)", applied, err)
	}
}

func TestApplyMask_Alpha(t *testing.T) {
	target, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 1, 1, []byte{1, 2, 3, 0})
	mask, _ := New("mask", cpu.Device{}, pixfmt.Mono8, 1, 1, []byte{128})
	target.SetMask(mask)
	target.SetMaskMode(AlphaMaskMode)

	applied, err := target.ApplyMask()
	if err != nil || !applied {
		t.Fatalf("ApplyMask() = (%v, %v), want (true, nil)", applied, err)
	}
	got, _ := target.Retrieve(tonefx.NewRect(0, 0, 1, 1))
	if !bytes.Equal(got, []byte{1, 2, 3, 128}) {
		t.Errorf("Retrieve() after ApplyMask = %v, want [1 2 3 128]", got)
	}
}

func TestApplyMask_SizeMismatch(t *testing.T) {
	target, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 2, 2, rgbaPattern(2, 2))
	mask, _ := New("mask", cpu.Device{}, pixfmt.Mono8, 1, 1, []byte{128})
	target.SetMask(mask)
	target.SetMaskMode(AlphaMaskMode)

	if _, err := target.ApplyMask(); err != ErrSizeMismatch {
		t.Errorf("ApplyMask() with mismatched sizes = %v, want ErrSizeMismatch", err)
	}
}

func TestRetrieveChannel_OutOfRange(t *testing.T) {
	l, _ := New("base", cpu.Device{}, pixfmt.RGBA8, 1, 1, []byte{1, 2, 3, 4})
	if _, err := l.RetrieveChannel(9, tonefx.NewRect(0, 0, 1, 1)); err != ErrChannelOutOfRange {
		t.Errorf("RetrieveChannel(9) = %v, want ErrChannelOutOfRange", err)
	}
}

func TestNew_InvalidDimensions(t *testing.T) {
	if _, err := New("base", cpu.Device{}, pixfmt.RGBA8, 0, 1, nil); err != ErrInvalidDimensions {
		t.Errorf("New() with zero width = %v, want ErrInvalidDimensions", err)
	}
}
