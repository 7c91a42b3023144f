package filter

import (
	"sort"

	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/pixfmt"
	"github.com/tonefx/tonefx/preset"
)

// Curves applies an independent monotonic piecewise curve to the master
// luminance and each of the red/green/blue channels, per spec §4.6.
type Curves struct {
	name string

	Master, Red, Green, Blue []tonefx.Point

	lutMaster, lutRed, lutGreen, lutBlue [256]byte
}

// NewCurves creates a Curves filter with every channel reset to identity.
func NewCurves(name string) *Curves {
	c := &Curves{name: name}
	c.resetCurve()
	return c
}

// resetCurve restores every channel to the identity line {(0,0), (1,1)} and
// rebuilds the cached lookup tables.
func (f *Curves) resetCurve() {
	identity := []tonefx.Point{tonefx.Pt(0, 0), tonefx.Pt(1, 1)}
	f.Master = append([]tonefx.Point(nil), identity...)
	f.Red = append([]tonefx.Point(nil), identity...)
	f.Green = append([]tonefx.Point(nil), identity...)
	f.Blue = append([]tonefx.Point(nil), identity...)
	f.rebuildLUTs()
}

func (f *Curves) rebuildLUTs() {
	buildLUT(&f.lutMaster, f.Master)
	buildLUT(&f.lutRed, f.Red)
	buildLUT(&f.lutGreen, f.Green)
	buildLUT(&f.lutBlue, f.Blue)
}

// buildLUT samples a monotonic piecewise-linear curve (control points sorted
// by X, each in [0,1]) at every one of the 256 U8 input levels.
func buildLUT(lut *[256]byte, points []tonefx.Point) {
	pts := append([]tonefx.Point(nil), points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	if len(pts) == 0 {
		for i := range lut {
			lut[i] = byte(i)
		}
		return
	}
	if len(pts) == 1 {
		v := clampByte(pts[0].Y * 255)
		for i := range lut {
			lut[i] = v
		}
		return
	}

	for i := 0; i < 256; i++ {
		x := float64(i) / 255
		lut[i] = clampByte(sampleCurve(pts, x) * 255)
	}
}

// sampleCurve linearly interpolates y at x between the bracketing control
// points, clamping to the end points' Y outside the X range the control
// points span.
func sampleCurve(pts []tonefx.Point, x float64) float64 {
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 0; i < len(pts)-1; i++ {
		a, b := pts[i], pts[i+1]
		if x >= a.X && x <= b.X {
			if b.X == a.X {
				return a.Y
			}
			t := (x - a.X) / (b.X - a.X)
			return a.Y + t*(b.Y-a.Y)
		}
	}
	return last.Y
}

func (f *Curves) Name() string { return f.name }
func (f *Curves) Tag() Tag { return TagCurves }

func (f *Curves) Clone() Filter {
	c := &Curves{
		name:   f.name,
		Master: append([]tonefx.Point(nil), f.Master...),
		Red:    append([]tonefx.Point(nil), f.Red...),
		Green:  append([]tonefx.Point(nil), f.Green...),
		Blue:   append([]tonefx.Point(nil), f.Blue...),
	}
	c.rebuildLUTs()
	return c
}

func (f *Curves) Process(device backend.Device, dst, src *layer.ImageLayer) (bool, error) {
	format := src.Format()
	return processBytes(device, dst, src, func(dstBytes, srcBytes []byte, w, h int) {
		f.apply(dstBytes, srcBytes, w*h, format)
	})
}

func (f *Curves) apply(dst, src []byte, pixels int, format pixfmt.Format) {
	pixelSize := format.PixelSize()
	chSize := format.ChannelSize()
	alphaIdx := format.AlphaIndex()
	if chSize != 1 {
		copy(dst, src)
		return
	}

	perChannelLUT := func(c int) *[256]byte {
		switch {
		case format.ChannelCount >= 3 && c == 0:
			return &f.lutRed
		case format.ChannelCount >= 3 && c == 1:
			return &f.lutGreen
		case format.ChannelCount >= 3 && c == 2:
			return &f.lutBlue
		default:
			return &f.lutMaster
		}
	}

	for p := 0; p < pixels; p++ {
		base := p * pixelSize
		for c := 0; c < format.ChannelCount; c++ {
			off := base + c*chSize
			if c == alphaIdx {
				dst[off] = src[off]
				continue
			}
			lut := perChannelLUT(c)
			masterApplied := f.lutMaster[src[off]]
			dst[off] = lut[masterApplied]
		}
	}
}

func (f *Curves) ToPreset(presetName string) preset.FilterPreset {
	p := preset.New(f.name, presetName)
	p.CurveTables["master"] = append([]tonefx.Point(nil), f.Master...)
	p.CurveTables["red"] = append([]tonefx.Point(nil), f.Red...)
	p.CurveTables["green"] = append([]tonefx.Point(nil), f.Green...)
	p.CurveTables["blue"] = append([]tonefx.Point(nil), f.Blue...)
	return p
}

func (f *Curves) FromPreset(p preset.FilterPreset) error {
	if p.FilterName != f.name {
		return ErrUnknownPreset
	}
	if v, ok := p.CurveTables["master"]; ok {
		f.Master = append([]tonefx.Point(nil), v...)
	}
	if v, ok := p.CurveTables["red"]; ok {
		f.Red = append([]tonefx.Point(nil), v...)
	}
	if v, ok := p.CurveTables["green"]; ok {
		f.Green = append([]tonefx.Point(nil), v...)
	}
	if v, ok := p.CurveTables["blue"]; ok {
		f.Blue = append([]tonefx.Point(nil), v...)
	}
	f.rebuildLUTs()
	return nil
}
