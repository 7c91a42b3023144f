package pixfmt

import "math"

// Converter copies one pixel from src to dst at the given byte offsets.
// Both slices are guaranteed by the caller to have at least the converter's
// declared pixel size remaining from the offset.
type Converter func(dst []byte, dstOff int, src []byte, srcOff int)

// converterKey identifies a registered direct converter.
type converterKey struct {
	from, to Format
}

var converterTable = map[converterKey]Converter{}

// register adds a direct from->to converter. Called from init() for every
// swizzle/remap pair the runtime knows about.
func register(from, to Format, conv Converter) {
	converterTable[converterKey{from, to}] = conv
}

// Lookup resolves a converter for from->to following the three-step
// resolution order: identity, direct table entry, two-hop through RGBA32.
// ok is false when no path exists, matching the UnsupportedConversion error
// kind.
func Lookup(from, to Format) (conv func(dst, src []byte, pixels int), ok bool) {
	if from == to {
		return identityConvert(from), true
	}
	if c, found := converterTable[converterKey{from, to}]; found {
		return expand(c, from.PixelSize(), to.PixelSize()), true
	}
	toPivot, ok1 := converterTable[converterKey{from, RGBA32}]
	fromPivot, ok2 := converterTable[converterKey{RGBA32, to}]
	if !ok1 || !ok2 {
		return nil, false
	}
	return twoHop(toPivot, fromPivot, from.PixelSize(), to.PixelSize()), true
}

func identityConvert(f Format) func(dst, src []byte, pixels int) {
	size := f.PixelSize()
	return func(dst, src []byte, pixels int) {
		copy(dst[:pixels*size], src[:pixels*size])
	}
}

func expand(conv Converter, srcSize, dstSize int) func(dst, src []byte, pixels int) {
	return func(dst, src []byte, pixels int) {
		for i := 0; i < pixels; i++ {
			conv(dst, i*dstSize, src, i*srcSize)
		}
	}
}

func twoHop(toPivot, fromPivot Converter, srcSize, dstSize int) func(dst, src []byte, pixels int) {
	pivotSize := RGBA32.PixelSize()
	return func(dst, src []byte, pixels int) {
		pivot := make([]byte, pixels*pivotSize)
		for i := 0; i < pixels; i++ {
			toPivot(pivot, i*pivotSize, src, i*srcSize)
		}
		for i := 0; i < pixels; i++ {
			fromPivot(dst, i*dstSize, pivot, i*pivotSize)
		}
	}
}

func init() {
	register(RGBA8, ARGB8, swizzleRGBAtoARGB)
	register(ARGB8, RGBA8, swizzleARGBtoRGBA)
	register(RGBA8, BGRA8, swapRedBlue4)
	register(BGRA8, RGBA8, swapRedBlue4)
	register(RGB8, BGR8, swapRedBlue3)
	register(BGR8, RGB8, swapRedBlue3)
	register(Mono8, RGBA32, mono8ToRGBA32)
	register(Mono16, RGBA32, mono16ToRGBA32)
	register(RGBA32, Mono8, rgba32ToMono8)
	register(RGBA32, Mono16, rgba32ToMono16)
	register(RGBA8, RGBA32, rgba8ToRGBA32)
	register(RGBA32, RGBA8, rgba32ToRGBA8)
	register(RGB8, RGBA32, rgb8ToRGBA32)
	register(RGBA32, RGB8, rgba32ToRGB8)
}

func swizzleRGBAtoARGB(dst []byte, dstOff int, src []byte, srcOff int) {
	r, g, b, a := src[srcOff], src[srcOff+1], src[srcOff+2], src[srcOff+3]
	dst[dstOff], dst[dstOff+1], dst[dstOff+2], dst[dstOff+3] = a, r, g, b
}

func swizzleARGBtoRGBA(dst []byte, dstOff int, src []byte, srcOff int) {
	a, r, g, b := src[srcOff], src[srcOff+1], src[srcOff+2], src[srcOff+3]
	dst[dstOff], dst[dstOff+1], dst[dstOff+2], dst[dstOff+3] = r, g, b, a
}

func swapRedBlue4(dst []byte, dstOff int, src []byte, srcOff int) {
	r, g, b, a := src[srcOff], src[srcOff+1], src[srcOff+2], src[srcOff+3]
	dst[dstOff], dst[dstOff+1], dst[dstOff+2], dst[dstOff+3] = b, g, r, a
}

func swapRedBlue3(dst []byte, dstOff int, src []byte, srcOff int) {
	r, g, b := src[srcOff], src[srcOff+1], src[srcOff+2]
	dst[dstOff], dst[dstOff+1], dst[dstOff+2] = b, g, r
}

func mono8ToRGBA32(dst []byte, dstOff int, src []byte, srcOff int) {
	v := float32(src[srcOff]) / 255
	putF32(dst, dstOff, v)
	putF32(dst, dstOff+4, v)
	putF32(dst, dstOff+8, v)
	putF32(dst, dstOff+12, 1)
}

func mono16ToRGBA32(dst []byte, dstOff int, src []byte, srcOff int) {
	raw := uint16(src[srcOff]) | uint16(src[srcOff+1])<<8
	v := float32(raw) / 65535
	putF32(dst, dstOff, v)
	putF32(dst, dstOff+4, v)
	putF32(dst, dstOff+8, v)
	putF32(dst, dstOff+12, 1)
}

func rgba32ToMono8(dst []byte, dstOff int, src []byte, srcOff int) {
	r := getF32(src, srcOff)
	g := getF32(src, srcOff+4)
	b := getF32(src, srcOff+8)
	lum := 0.299*r + 0.587*g + 0.114*b
	dst[dstOff] = clampByte(lum * 255)
}

func rgba32ToMono16(dst []byte, dstOff int, src []byte, srcOff int) {
	r := getF32(src, srcOff)
	g := getF32(src, srcOff+4)
	b := getF32(src, srcOff+8)
	lum := 0.299*r + 0.587*g + 0.114*b
	v := clampU16(lum * 65535)
	dst[dstOff] = byte(v)
	dst[dstOff+1] = byte(v >> 8)
}

func rgba8ToRGBA32(dst []byte, dstOff int, src []byte, srcOff int) {
	for c := 0; c < 4; c++ {
		putF32(dst, dstOff+c*4, float32(src[srcOff+c])/255)
	}
}

func rgba32ToRGBA8(dst []byte, dstOff int, src []byte, srcOff int) {
	for c := 0; c < 4; c++ {
		dst[dstOff+c] = clampByte(getF32(src, srcOff+c*4) * 255)
	}
}

func rgb8ToRGBA32(dst []byte, dstOff int, src []byte, srcOff int) {
	for c := 0; c < 3; c++ {
		putF32(dst, dstOff+c*4, float32(src[srcOff+c])/255)
	}
	putF32(dst, dstOff+12, 1)
}

func rgba32ToRGB8(dst []byte, dstOff int, src []byte, srcOff int) {
	for c := 0; c < 3; c++ {
		dst[dstOff+c] = clampByte(getF32(src, srcOff+c*4) * 255)
	}
}

func clampByte(v float32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func clampU16(v float32) uint16 {
	if v < 0 {
		return 0
	}
	if v > 65535 {
		return 65535
	}
	return uint16(v)
}

func putF32(b []byte, off int, v float32) {
	bits := math.Float32bits(v)
	b[off] = byte(bits)
	b[off+1] = byte(bits >> 8)
	b[off+2] = byte(bits >> 16)
	b[off+3] = byte(bits >> 24)
}

func getF32(b []byte, off int) float32 {
	bits := uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24
	return math.Float32frombits(bits)
}

// RemapChannel maps a single source channel value into the destination
// depth's range: dst = clamp((src-srcMin)/(srcMax-srcMin) * dstMax), the
// integer range remapping rule used by per-channel depth conversions.
func RemapChannel(src float64, from, to ChannelDepth) float64 {
	srcMin, srcMax := from.Range()
	_, dstMax := to.Range()
	if srcMax == srcMin {
		return 0
	}
	v := (src - srcMin) / (srcMax - srcMin) * dstMax
	if v > dstMax {
		v = dstMax
	}
	if v < 0 {
		v = 0
	}
	return v
}
