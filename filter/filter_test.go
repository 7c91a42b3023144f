package filter

import (
	"testing"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/backend/cpu"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/ops"
	"github.com/tonefx/tonefx/pixfmt"
	"github.com/tonefx/tonefx/preset"
)

// negateFilter is a minimal Filter used to exercise Stack.Render's ping-pong
// protocol independent of any one concrete filter's kernel math.
type negateFilter struct{}

func (negateFilter) Name() string { return "negate" }
func (negateFilter) Tag() Tag { return TagOther }

func (negateFilter) Process(device backend.Device, dst, src *layer.ImageLayer) (bool, error) {
	format := src.Format()
	return processBytes(device, dst, src, func(dstBytes, srcBytes []byte, w, h int) {
		ops.ApplyNegate(dstBytes, srcBytes, format, w*h)
	})
}

func (negateFilter) Clone() Filter { return negateFilter{} }

func (negateFilter) ToPreset(name string) preset.FilterPreset { return preset.New("negate", name) }

func (negateFilter) FromPreset(p preset.FilterPreset) error { return nil }

func newTestLayer(t *testing.T, device backend.Device, value byte, w, h int) *layer.ImageLayer {
	t.Helper()
	data := make([]byte, w*h)
	for i := range data {
		data[i] = value
	}
	l, err := layer.New("test", device, pixfmt.Mono8, w, h, data)
	if err != nil {
		t.Fatalf("layer.New: %v", err)
	}
	return l
}

func firstByte(t *testing.T, l *layer.ImageLayer) byte {
	t.Helper()
	data, err := l.Retrieve(tonefx.NewRect(0, 0, l.Width(), l.Height()))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	return data[0]
}

// TestRenderThreeNegatesPingPongsBackToDst exercises the testable property
// from the ping-pong render protocol: three enabled negate filters over a
// constant 64x64 Mono8 plane starting at 30 yield 225 -> 30 -> 225, and the
// final result lands back in dst regardless of parity.
func TestRenderThreeNegatesPingPongsBackToDst(t *testing.T) {
	device := cpu.Device{}
	src := newTestLayer(t, device, 30, 64, 64)
	dst := newTestLayer(t, device, 0, 64, 64)

	renderable := []Filter{negateFilter{}, negateFilter{}, negateFilter{}}
	if err := Render(device, dst, src, renderable); err != nil {
		t.Fatalf("Render: %v", err)
	}

	got := firstByte(t, dst)
	if got != 225 {
		t.Fatalf("after 3 negates: got %d, want 225", got)
	}
}

func TestRenderEmptyBlitsSourceIntoDst(t *testing.T) {
	device := cpu.Device{}
	src := newTestLayer(t, device, 77, 8, 8)
	dst := newTestLayer(t, device, 0, 8, 8)

	if err := Render(device, dst, src, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := firstByte(t, dst); got != 77 {
		t.Fatalf("empty render: got %d, want 77", got)
	}
}

func TestRenderSingleFilterWritesDirectlyToDst(t *testing.T) {
	device := cpu.Device{}
	src := newTestLayer(t, device, 10, 8, 8)
	dst := newTestLayer(t, device, 0, 8, 8)

	if err := Render(device, dst, src, []Filter{negateFilter{}}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := firstByte(t, dst); got != 245 {
		t.Fatalf("single negate: got %d, want 245", got)
	}
}

func TestStackAppendRemove(t *testing.T) {
	s := NewStack()
	f1, f2 := negateFilter{}, negateFilter{}
	s.Append(f1)
	s.Append(f2)
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if err := s.Remove(f1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after remove = %d, want 1", s.Len())
	}
	if err := s.Remove(f1); err != ErrNotFound {
		t.Fatalf("Remove of absent filter = %v, want ErrNotFound", err)
	}
}

func TestBWAdaptiveMixerFlattensColorChannels(t *testing.T) {
	device := cpu.Device{}
	data := []byte{200, 50, 10, 255}
	src, err := layer.New("src", device, pixfmt.RGBA8, 1, 1, data)
	if err != nil {
		t.Fatalf("layer.New: %v", err)
	}
	dst, err := layer.New("dst", device, pixfmt.RGBA8, 1, 1, nil)
	if err != nil {
		t.Fatalf("layer.New: %v", err)
	}

	mixer := NewBWAdaptiveMixer("BWAdaptiveMixer")
	if _, err := mixer.Process(device, dst, src); err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := dst.Retrieve(tonefx.NewRect(0, 0, 1, 1))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if out[0] != out[1] || out[1] != out[2] {
		t.Fatalf("expected R=G=B after mixing, got %v", out[:3])
	}
	if out[3] != 255 {
		t.Fatalf("alpha should pass through unchanged, got %d", out[3])
	}
}

func TestBWAdaptiveMixerPresetRoundTrip(t *testing.T) {
	mixer := NewBWAdaptiveMixer("BWAdaptiveMixer")
	mixer.ShadowBalance = -4
	mixer.HighlightBalance = 6

	p := mixer.ToPreset("warm")
	restored := NewBWAdaptiveMixer("BWAdaptiveMixer")
	if err := restored.FromPreset(p); err != nil {
		t.Fatalf("FromPreset: %v", err)
	}
	if *restored != *mixer {
		t.Fatalf("round trip mismatch: got %+v, want %+v", restored, mixer)
	}
}

func TestCurvesIdentityIsNoOp(t *testing.T) {
	device := cpu.Device{}
	src := newTestLayer(t, device, 123, 4, 4)
	dst := newTestLayer(t, device, 0, 4, 4)

	curves := NewCurves("Curves")
	if _, err := curves.Process(device, dst, src); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := firstByte(t, dst); got != 123 {
		t.Fatalf("identity curve changed value: got %d, want 123", got)
	}
}

func TestCurvesPresetRoundTrip(t *testing.T) {
	curves := NewCurves("Curves")
	curves.Master = []tonefx.Point{tonefx.Pt(0, 0), tonefx.Pt(0.5, 0.8), tonefx.Pt(1, 1)}
	curves.rebuildLUTs()

	p := curves.ToPreset("contrasty")
	restored := NewCurves("Curves")
	if err := restored.FromPreset(p); err != nil {
		t.Fatalf("FromPreset: %v", err)
	}
	if restored.lutMaster != curves.lutMaster {
		t.Fatalf("restored LUT does not match original after round trip")
	}
}

func TestCascadedSharpenUpdateCascadesTruncates(t *testing.T) {
	f := NewCascadedSharpen("CascadedSharpen")
	many := make([]sharpenCascade, 12)
	for i := range many {
		many[i] = sharpenCascade{BlurRadius: float64(i), Strength: 1}
	}
	f.updateCascades(many)
	if len(f.Cascades) != maxCascades {
		t.Fatalf("len(Cascades) = %d, want %d", len(f.Cascades), maxCascades)
	}
}

func TestCascadedSharpenPresetRoundTrip(t *testing.T) {
	f := NewCascadedSharpen("CascadedSharpen")
	f.updateCascades([]sharpenCascade{
		{BlurRadius: 0.5, Strength: 0.3},
		{BlurRadius: 2.0, Strength: 0.9},
	})
	p := f.ToPreset("crisp")

	restored := NewCascadedSharpen("CascadedSharpen")
	if err := restored.FromPreset(p); err != nil {
		t.Fatalf("FromPreset: %v", err)
	}
	if len(restored.Cascades) != 2 {
		t.Fatalf("len(Cascades) = %d, want 2", len(restored.Cascades))
	}
	for i, c := range restored.Cascades {
		if c != f.Cascades[i] {
			t.Fatalf("cascade %d = %+v, want %+v", i, c, f.Cascades[i])
		}
	}
}

func TestVignetteDarkensCorners(t *testing.T) {
	device := cpu.Device{}
	src := newTestLayer(t, device, 200, 16, 16)
	dst := newTestLayer(t, device, 0, 16, 16)

	v := NewVignette("Vignette")
	v.Radius = 0.1
	v.Strength = 1.0
	if _, err := v.Process(device, dst, src); err != nil {
		t.Fatalf("Process: %v", err)
	}

	out, err := dst.Retrieve(tonefx.NewRect(0, 0, 16, 16))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	center := out[8*16+8]
	corner := out[0]
	if corner >= center {
		t.Fatalf("corner (%d) should be darker than center (%d)", corner, center)
	}
}

func TestVignettePresetRoundTrip(t *testing.T) {
	v := NewVignette("Vignette")
	v.Center = tonefx.Pt(0.3, 0.7)
	v.Radius = 0.9
	v.Strength = 0.4

	p := v.ToPreset("edge")
	restored := NewVignette("Vignette")
	if err := restored.FromPreset(p); err != nil {
		t.Fatalf("FromPreset: %v", err)
	}
	if restored.Center != v.Center || restored.Radius != v.Radius || restored.Strength != v.Strength {
		t.Fatalf("round trip mismatch: got %+v, want %+v", restored, v)
	}
}

func TestSplitToneNeutralIsNoOp(t *testing.T) {
	device := cpu.Device{}
	data := []byte{128, 128, 128}
	l, err := layer.New("rgb", device, pixfmt.RGB8, 1, 1, data)
	if err != nil {
		t.Fatalf("layer.New: %v", err)
	}
	out, err := layer.New("out", device, pixfmt.RGB8, 1, 1, nil)
	if err != nil {
		t.Fatalf("layer.New: %v", err)
	}

	st := NewSplitTone("SplitTone")
	if _, err := st.Process(device, out, l); err != nil {
		t.Fatalf("Process: %v", err)
	}
	result, err := out.Retrieve(tonefx.NewRect(0, 0, 1, 1))
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for i, v := range result {
		if v != 128 {
			t.Fatalf("channel %d = %d, want 128 (neutral gray tints should not shift a mid-gray pixel)", i, v)
		}
	}
}

func TestSplitTonePresetRoundTrip(t *testing.T) {
	st := NewSplitTone("SplitTone")
	st.ShadowColor = tonefx.RGB(0.1, 0.2, 0.6)
	st.HighlightColor = tonefx.RGB(0.9, 0.8, 0.5)
	st.Balance = 0.35

	p := st.ToPreset("teal-orange")
	restored := NewSplitTone("SplitTone")
	if err := restored.FromPreset(p); err != nil {
		t.Fatalf("FromPreset: %v", err)
	}
	if restored.ShadowColor != st.ShadowColor || restored.HighlightColor != st.HighlightColor || restored.Balance != st.Balance {
		t.Fatalf("round trip mismatch: got %+v, want %+v", restored, st)
	}
}

func TestFilmGrainDeterministicForSameSeed(t *testing.T) {
	device := cpu.Device{}
	src1 := newTestLayer(t, device, 128, 32, 32)
	src2 := newTestLayer(t, device, 128, 32, 32)
	dst1 := newTestLayer(t, device, 0, 32, 32)
	dst2 := newTestLayer(t, device, 0, 32, 32)

	g1 := NewFilmGrain("FilmGrain")
	g1.GrainSeed = 42
	g2 := NewFilmGrain("FilmGrain")
	g2.GrainSeed = 42

	if _, err := g1.Process(device, dst1, src1); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, err := g2.Process(device, dst2, src2); err != nil {
		t.Fatalf("Process: %v", err)
	}

	out1, _ := dst1.Retrieve(tonefx.NewRect(0, 0, 32, 32))
	out2, _ := dst2.Retrieve(tonefx.NewRect(0, 0, 32, 32))
	for i := range out1 {
		if out1[i] != out2[i] {
			t.Fatalf("grain field differs at byte %d for identical seeds: %d vs %d", i, out1[i], out2[i])
		}
	}
}

func TestFilmGrainPresetRoundTrip(t *testing.T) {
	g := NewFilmGrain("FilmGrain")
	g.GrainSeed = 7
	g.GrainScale = 0.25
	g.Curve = []tonefx.Point{tonefx.Pt(0, 0.2), tonefx.Pt(1, 0.8)}

	p := g.ToPreset("fine")
	restored := NewFilmGrain("FilmGrain")
	if err := restored.FromPreset(p); err != nil {
		t.Fatalf("FromPreset: %v", err)
	}
	if restored.GrainSeed != g.GrainSeed || restored.GrainScale != g.GrainScale {
		t.Fatalf("round trip mismatch: got %+v, want %+v", restored, g)
	}
}

func TestTagString(t *testing.T) {
	cases := map[Tag]string{
		TagOther:           "Other",
		TagBWMixer:         "BWAdaptiveMixer",
		TagCurves:          "Curves",
		TagCascadedSharpen: "CascadedSharpen",
		TagVignette:        "Vignette",
		TagSplitTone:       "SplitTone",
		TagFilmGrain:       "FilmGrain",
	}
	for tag, want := range cases {
		if got := tag.String(); got != want {
			t.Errorf("Tag(%d).String() = %q, want %q", tag, got, want)
		}
	}
}
