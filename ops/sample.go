package ops

import (
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/tonefx/tonefx/pixfmt"
)

// AreaSample resizes src (srcW x srcH, in format) into dst (dstW x dstH),
// the resampler the preview controller uses to build its bounded preview
// plane (spec §4.8's "downsampled preview layer via a 2x2 area sampler").
// For pixfmt.RGBA8 — the format every preview plane in this runtime
// actually uses — it is built directly on golang.org/x/image/draw's
// area-averaging scaler (draw.BiLinear), matching how the rest of the
// ecosystem in this corpus reaches for x/image rather than hand-rolling
// resampling. Other formats fall back to a hand-rolled per-destination-
// pixel box average, since x/image/draw operates on image.Image color
// models tied to a handful of standard layouts, not arbitrary pixfmt
// buffers.
func AreaSample(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, format pixfmt.Format) {
	if format == pixfmt.RGBA8 {
		areaSampleRGBA8ViaXImage(dst, dstW, dstH, src, srcW, srcH)
		return
	}
	areaSampleGeneric(dst, dstW, dstH, src, srcW, srcH, format)
}

func areaSampleRGBA8ViaXImage(dst []byte, dstW, dstH int, src []byte, srcW, srcH int) {
	srcImg := &image.RGBA{
		Pix:    src,
		Stride: srcW * 4,
		Rect:   image.Rect(0, 0, srcW, srcH),
	}
	dstImg := &image.RGBA{
		Pix:    dst,
		Stride: dstW * 4,
		Rect:   image.Rect(0, 0, dstW, dstH),
	}
	xdraw.BiLinear.Scale(dstImg, dstImg.Rect, srcImg, srcImg.Rect, xdraw.Src, nil)
}

func areaSampleGeneric(dst []byte, dstW, dstH int, src []byte, srcW, srcH int, format pixfmt.Format) {
	pixelSize := format.PixelSize()
	chSize := format.ChannelSize()

	for dy := 0; dy < dstH; dy++ {
		sy0 := dy * srcH / dstH
		sy1 := (dy + 1) * srcH / dstH
		if sy1 <= sy0 {
			sy1 = sy0 + 1
		}
		for dx := 0; dx < dstW; dx++ {
			sx0 := dx * srcW / dstW
			sx1 := (dx + 1) * srcW / dstW
			if sx1 <= sx0 {
				sx1 = sx0 + 1
			}

			dstOff := (dy*dstW + dx) * pixelSize
			for c := 0; c < format.ChannelCount; c++ {
				chOff := c * chSize
				if chSize != 1 {
					// Non-byte channels: nearest-sample instead of averaging.
					srcOff := (sy0*srcW+sx0)*pixelSize + chOff
					copy(dst[dstOff+chOff:dstOff+chOff+chSize], src[srcOff:srcOff+chSize])
					continue
				}
				sum, count := 0, 0
				for sy := sy0; sy < sy1 && sy < srcH; sy++ {
					for sx := sx0; sx < sx1 && sx < srcW; sx++ {
						sum += int(src[(sy*srcW+sx)*pixelSize+chOff])
						count++
					}
				}
				if count == 0 {
					count = 1
				}
				dst[dstOff+chOff] = byte(sum / count)
			}
		}
	}
}
