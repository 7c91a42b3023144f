package filter

import (
	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/pixfmt"
	"github.com/tonefx/tonefx/preset"
)

// SplitTone tints shadows and highlights with independent colors, blended
// in proportion to a luminance-derived weight and an overall Balance factor
// that shifts the shadow/highlight crossover point, per spec §4.6.
type SplitTone struct {
	name string

	ShadowColor, HighlightColor tonefx.Color
	Balance                     float64
}

// NewSplitTone creates a neutral SplitTone (both tint colors neutral gray,
// so Process is a no-op until colors are set).
func NewSplitTone(name string) *SplitTone {
	neutral := tonefx.RGB(0.5, 0.5, 0.5)
	return &SplitTone{
		name:           name,
		ShadowColor:    neutral,
		HighlightColor: neutral,
		Balance:        0.5,
	}
}

func (f *SplitTone) Name() string { return f.name }
func (f *SplitTone) Tag() Tag { return TagSplitTone }

func (f *SplitTone) Clone() Filter {
	c := *f
	return &c
}

func (f *SplitTone) Process(device backend.Device, dst, src *layer.ImageLayer) (bool, error) {
	format := src.Format()
	return processBytes(device, dst, src, func(dstBytes, srcBytes []byte, w, h int) {
		f.apply(dstBytes, srcBytes, w*h, format)
	})
}

func (f *SplitTone) apply(dst, src []byte, pixels int, format pixfmt.Format) {
	pixelSize := format.PixelSize()
	chSize := format.ChannelSize()
	alphaIdx := format.AlphaIndex()
	if chSize != 1 || format.ChannelCount < 3 {
		copy(dst, src)
		return
	}

	// Deltas from neutral gray (0.5): a tint color of (0.5,0.5,0.5) leaves
	// the image unchanged regardless of shadow/highlight weighting.
	shadow := [3]float64{(f.ShadowColor.R - 0.5) * 255, (f.ShadowColor.G - 0.5) * 255, (f.ShadowColor.B - 0.5) * 255}
	highlight := [3]float64{(f.HighlightColor.R - 0.5) * 255, (f.HighlightColor.G - 0.5) * 255, (f.HighlightColor.B - 0.5) * 255}

	for p := 0; p < pixels; p++ {
		base := p * pixelSize
		luma := 0.0
		colorChannels := 0
		for c := 0; c < format.ChannelCount; c++ {
			if c == alphaIdx {
				continue
			}
			luma += float64(src[base+c*chSize])
			colorChannels++
		}
		if colorChannels > 0 {
			luma /= float64(colorChannels) * 255
		}

		shadowWeight := 1 - luma
		if f.Balance != 0.5 {
			shadowWeight = clamp01(shadowWeight + (0.5 - f.Balance))
		}
		highlightWeight := 1 - shadowWeight

		ci := 0
		for c := 0; c < format.ChannelCount; c++ {
			off := base + c*chSize
			if c == alphaIdx {
				dst[off] = src[off]
				continue
			}
			if ci >= 3 {
				dst[off] = src[off]
				ci++
				continue
			}
			tint := shadowWeight*shadow[ci] + highlightWeight*highlight[ci]
			dst[off] = clampByte(float64(src[off]) + tint)
			ci++
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (f *SplitTone) ToPreset(presetName string) preset.FilterPreset {
	p := preset.New(f.name, presetName)
	p.Floats["shadowR"] = f.ShadowColor.R
	p.Floats["shadowG"] = f.ShadowColor.G
	p.Floats["shadowB"] = f.ShadowColor.B
	p.Floats["highlightR"] = f.HighlightColor.R
	p.Floats["highlightG"] = f.HighlightColor.G
	p.Floats["highlightB"] = f.HighlightColor.B
	p.Floats["balance"] = f.Balance
	return p
}

func (f *SplitTone) FromPreset(p preset.FilterPreset) error {
	if p.FilterName != f.name {
		return ErrUnknownPreset
	}
	f.ShadowColor = tonefx.RGB(p.Floats["shadowR"], p.Floats["shadowG"], p.Floats["shadowB"])
	f.HighlightColor = tonefx.RGB(p.Floats["highlightR"], p.Floats["highlightG"], p.Floats["highlightB"])
	f.Balance = p.Floats["balance"]
	return nil
}
