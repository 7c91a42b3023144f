package filter

import (
	"math"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/pixfmt"
	"github.com/tonefx/tonefx/preset"
)

// Vignette darkens pixels radially outward from Center, per spec §4.6:
// {center Point in [0,1]^2, radius in (0,inf), strength}.
type Vignette struct {
	name string

	Center   tonefx.Point
	Radius   float64
	Strength float64
}

// NewVignette creates a Vignette centered on the image with a moderate
// falloff.
func NewVignette(name string) *Vignette {
	return &Vignette{
		name:     name,
		Center:   tonefx.Pt(0.5, 0.5),
		Radius:   0.75,
		Strength: 0.5,
	}
}

func (f *Vignette) Name() string { return f.name }
func (f *Vignette) Tag() Tag { return TagVignette }

func (f *Vignette) Clone() Filter {
	c := *f
	return &c
}

func (f *Vignette) Process(device backend.Device, dst, src *layer.ImageLayer) (bool, error) {
	format := src.Format()
	return processBytes(device, dst, src, func(dstBytes, srcBytes []byte, w, h int) {
		f.apply(dstBytes, srcBytes, w, h, format)
	})
}

func (f *Vignette) apply(dst, src []byte, w, h int, format pixfmt.Format) {
	pixelSize := format.PixelSize()
	chSize := format.ChannelSize()
	alphaIdx := format.AlphaIndex()
	if chSize != 1 {
		copy(dst, src)
		return
	}

	radius := f.Radius
	if radius <= 0 {
		radius = 1e-6
	}
	aspect := float64(w) / float64(h)

	for y := 0; y < h; y++ {
		ny := float64(y) / float64(h)
		for x := 0; x < w; x++ {
			nx := float64(x) / float64(w)
			dx := (nx - f.Center.X) * aspect
			dy := ny - f.Center.Y
			dist := math.Sqrt(dx*dx + dy*dy)

			falloff := 1.0
			if dist > radius {
				over := (dist - radius) / radius
				falloff = 1.0 - f.Strength*over
				if falloff < 0 {
					falloff = 0
				}
			}

			base := (y*w + x) * pixelSize
			for c := 0; c < format.ChannelCount; c++ {
				off := base + c*chSize
				if c == alphaIdx {
					dst[off] = src[off]
					continue
				}
				dst[off] = clampByte(float64(src[off]) * falloff)
			}
		}
	}
}

func (f *Vignette) ToPreset(presetName string) preset.FilterPreset {
	p := preset.New(f.name, presetName)
	p.Points["center"] = f.Center
	p.Floats["radius"] = f.Radius
	p.Floats["strength"] = f.Strength
	return p
}

func (f *Vignette) FromPreset(p preset.FilterPreset) error {
	if p.FilterName != f.name {
		return ErrUnknownPreset
	}
	if c, ok := p.Points["center"]; ok {
		f.Center = c
	}
	f.Radius = p.Floats["radius"]
	f.Strength = p.Floats["strength"]
	return nil
}
