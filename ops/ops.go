// Package ops implements the per-pixel combinators filters are built from:
// arithmetic blends (add/sub/mul/div/min/max), blend modes (alpha blend,
// overlay, screen, grain merge, difference), negate, a separable gaussian
// blur, the unsharp-mask kernel cascaded sharpening and standalone sharpen
// both use, and the area-sample downscaler the preview controller uses to
// build a bounded preview plane. Per spec §1 the concrete per-effect kernel
// math (BWAdaptiveMixer's weighting, Curves' LUT application, and so on) is
// specified as an opaque process(src,dst) operation; this package supplies
// the shared byte-level primitives those opaque operations are written
// against, the way a real renderer would factor a small "blend modes"
// library out from its filter implementations.
//
// All combinators operate on 8-bit-per-channel buffers; channels of other
// depths are passed through unchanged (documented per-function) since every
// concrete filter in this runtime targets U8 preview/export planes.
package ops

import "github.com/tonefx/tonefx/pixfmt"

// Combine computes one output channel byte from the corresponding source
// bytes in two same-sized buffers.
type Combine func(a, b byte) byte

func clamp8(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// Add is saturating per-channel addition.
func Add(a, b byte) byte { return clamp8(int(a) + int(b)) }

// Sub is saturating per-channel subtraction.
func Sub(a, b byte) byte { return clamp8(int(a) - int(b)) }

// Mul is per-channel multiplication normalized to [0,255].
func Mul(a, b byte) byte { return clamp8(int(a) * int(b) / 255) }

// Div is per-channel division normalized to [0,255]; b=0 saturates to 255.
func Div(a, b byte) byte {
	if b == 0 {
		return 255
	}
	return clamp8(int(a) * 255 / int(b))
}

// Min returns the smaller of the two channel values.
func Min(a, b byte) byte {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of the two channel values.
func Max(a, b byte) byte {
	if a > b {
		return a
	}
	return b
}

// Difference is the absolute per-channel difference.
func Difference(a, b byte) byte {
	if a > b {
		return a - b
	}
	return b - a
}

// Screen is the standard "screen" blend mode: 255 - (255-a)*(255-b)/255.
func Screen(a, b byte) byte {
	return clamp8(255 - (255-int(a))*(255-int(b))/255)
}

// Overlay is the standard "overlay" blend mode, a contrast-preserving
// combination of Mul and Screen keyed on a's brightness.
func Overlay(a, b byte) byte {
	if a < 128 {
		return clamp8(2 * int(a) * int(b) / 255)
	}
	return clamp8(255 - 2*(255-int(a))*(255-int(b))/255)
}

// GrainMerge is the blend mode film grain compositing uses: a+b-128,
// saturating.
func GrainMerge(a, b byte) byte { return clamp8(int(a) + int(b) - 128) }

// Negate inverts a single channel value: 255-a. Used directly (rather than
// through Combine, which takes two operands) by filters that invert without
// a second source.
func Negate(a byte) byte { return 255 - a }

// AlphaBlend linearly interpolates from a to b by alpha/255.
func AlphaBlend(a, b, alpha byte) byte {
	return clamp8(int(a) + (int(b)-int(a))*int(alpha)/255)
}

// Apply runs combine over every non-alpha channel of two pixel buffers of
// the given format, writing pixels results into dst. The alpha channel, if
// the format has one, passes through from a unchanged: blend-mode math
// operates on color, not coverage, per how every named filter in §4.6 uses
// these combinators (compositing onto dst's existing alpha is the caller's
// separate concern via layer masks). Channels wider than one byte pass
// through unchanged from a.
func Apply(dst, a, b []byte, format pixfmt.Format, pixels int, combine Combine) {
	pixelSize := format.PixelSize()
	chSize := format.ChannelSize()
	alphaIdx := format.AlphaIndex()
	for p := 0; p < pixels; p++ {
		base := p * pixelSize
		for c := 0; c < format.ChannelCount; c++ {
			off := base + c*chSize
			if chSize != 1 || c == alphaIdx {
				copy(dst[off:off+chSize], a[off:off+chSize])
				continue
			}
			dst[off] = combine(a[off], b[off])
		}
	}
}

// ApplyNegate runs Negate over every non-alpha channel of a single pixel
// buffer of the given format, writing the result into dst (which may alias
// a).
func ApplyNegate(dst, a []byte, format pixfmt.Format, pixels int) {
	pixelSize := format.PixelSize()
	chSize := format.ChannelSize()
	alphaIdx := format.AlphaIndex()
	for p := 0; p < pixels; p++ {
		base := p * pixelSize
		for c := 0; c < format.ChannelCount; c++ {
			off := base + c*chSize
			if chSize != 1 || c == alphaIdx {
				copy(dst[off:off+chSize], a[off:off+chSize])
				continue
			}
			dst[off] = Negate(a[off])
		}
	}
}
