package filter

import (
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/pixfmt"
	"github.com/tonefx/tonefx/preset"
)

// BWAdaptiveMixer converts a color layer to monochrome via per-channel
// weights plus a highlight/shadow balance adjustment, per spec §4.6.
type BWAdaptiveMixer struct {
	name string

	WeightR, WeightG, WeightB float64
	ShadowBalance             float64
	HighlightBalance          float64
}

// NewBWAdaptiveMixer creates a mixer with the conventional luma weights and
// neutral balance.
func NewBWAdaptiveMixer(name string) *BWAdaptiveMixer {
	return &BWAdaptiveMixer{
		name:    name,
		WeightR: 0.299, WeightG: 0.587, WeightB: 0.114,
		ShadowBalance: 0, HighlightBalance: 0,
	}
}

func (f *BWAdaptiveMixer) Name() string { return f.name }
func (f *BWAdaptiveMixer) Tag() Tag { return TagBWMixer }

func (f *BWAdaptiveMixer) Clone() Filter {
	c := *f
	return &c
}

func (f *BWAdaptiveMixer) Process(device backend.Device, dst, src *layer.ImageLayer) (bool, error) {
	format := src.Format()
	return processBytes(device, dst, src, func(dstBytes, srcBytes []byte, w, h int) {
		f.mix(dstBytes, srcBytes, w*h, format)
	})
}

// mix computes a weighted luminance per pixel and writes it back into
// every non-alpha channel (a monochrome-in-place representation, matching
// how BWAdaptiveMixer in a non-destructive pipeline keeps the original
// channel count so later filters in the stack still see a consistent
// format).
func (f *BWAdaptiveMixer) mix(dst, src []byte, pixels int, format pixfmt.Format) {
	pixelSize := format.PixelSize()
	chSize := format.ChannelSize()
	alphaIdx := format.AlphaIndex()
	if chSize != 1 || format.ChannelCount < 3 {
		copy(dst, src)
		return
	}

	colorIdx := make([]int, 0, 3)
	for c := 0; c < format.ChannelCount; c++ {
		if c != alphaIdx {
			colorIdx = append(colorIdx, c)
		}
	}
	weights := []float64{f.WeightR, f.WeightG, f.WeightB}

	for p := 0; p < pixels; p++ {
		base := p * pixelSize
		luma := 0.0
		for i, c := range colorIdx {
			if i >= len(weights) {
				break
			}
			luma += weights[i] * float64(src[base+c*chSize])
		}
		if luma < 128 {
			luma += f.ShadowBalance
		} else {
			luma += f.HighlightBalance
		}
		v := clampByte(luma)
		for _, c := range colorIdx {
			dst[base+c*chSize] = v
		}
		if alphaIdx >= 0 {
			dst[base+alphaIdx*chSize] = src[base+alphaIdx*chSize]
		}
	}
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func (f *BWAdaptiveMixer) ToPreset(presetName string) preset.FilterPreset {
	p := preset.New(f.name, presetName)
	p.Floats["weightR"] = f.WeightR
	p.Floats["weightG"] = f.WeightG
	p.Floats["weightB"] = f.WeightB
	p.Floats["shadowBalance"] = f.ShadowBalance
	p.Floats["highlightBalance"] = f.HighlightBalance
	return p
}

func (f *BWAdaptiveMixer) FromPreset(p preset.FilterPreset) error {
	if p.FilterName != f.name {
		return ErrUnknownPreset
	}
	f.WeightR = p.Floats["weightR"]
	f.WeightG = p.Floats["weightG"]
	f.WeightB = p.Floats["weightB"]
	f.ShadowBalance = p.Floats["shadowBalance"]
	f.HighlightBalance = p.Floats["highlightBalance"]
	return nil
}
