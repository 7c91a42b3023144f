// Package pixfmt provides the pixel format registry shared by every plane
// representation in the imaging runtime: CPU bitmaps, GPU tiles, and the
// multi-backend image layers built on top of them.
package pixfmt

import "fmt"

// Family identifies the channel arrangement of a pixel format.
type Family uint8

const (
	Mono Family = iota
	RGB
	RGBA
	ARGB
	BGR
	BGRA

	familyCount
)

func (f Family) String() string {
	switch f {
	case Mono:
		return "Mono"
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	case ARGB:
		return "ARGB"
	case BGR:
		return "BGR"
	case BGRA:
		return "BGRA"
	default:
		return "Unknown"
	}
}

// channelCount is the number of channels the family demands; a Format whose
// ChannelCount disagrees with this table is invalid per the family invariant.
func (f Family) channelCount() int {
	switch f {
	case Mono:
		return 1
	case RGB, BGR:
		return 3
	case RGBA, ARGB, BGRA:
		return 4
	default:
		return 0
	}
}

// hasAlpha reports whether the family carries a dedicated alpha channel.
func (f Family) hasAlpha() bool {
	switch f {
	case RGBA, ARGB, BGRA:
		return true
	default:
		return false
	}
}

// alphaIndex returns the channel index of the alpha lane for families that
// have one; ARGB carries alpha first, RGBA/BGRA carry it last.
func (f Family) alphaIndex() int {
	switch f {
	case ARGB:
		return 0
	case RGBA, BGRA:
		return 3
	default:
		return -1
	}
}

// ChannelDepth identifies the storage type of a single channel.
type ChannelDepth uint8

const (
	U8 ChannelDepth = iota
	U16
	S16
	U32
	S32
	F32

	channelDepthCount
)

func (d ChannelDepth) String() string {
	switch d {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case S16:
		return "s16"
	case U32:
		return "u32"
	case S32:
		return "s32"
	case F32:
		return "f32"
	default:
		return "unknown"
	}
}

// Bytes returns the storage size of one channel of this depth.
func (d ChannelDepth) Bytes() int {
	switch d {
	case U8:
		return 1
	case U16, S16:
		return 2
	case U32, S32, F32:
		return 4
	default:
		return 0
	}
}

// Range reports the integer range [min,max] this depth can hold; floating
// depths report [0,1] since every format conversion table treats F32
// channels as normalized.
func (d ChannelDepth) Range() (min, max float64) {
	switch d {
	case U8:
		return 0, 255
	case U16:
		return 0, 65535
	case S16:
		return -32768, 32767
	case U32:
		return 0, 4294967295
	case S32:
		return -2147483648, 2147483647
	case F32:
		return 0, 1
	default:
		return 0, 0
	}
}

// Format is the tagged pixel-format value used throughout the runtime:
// family, channel storage depth, and channel count, with pixelSize and
// channelSize derived on demand.
type Format struct {
	Family       Family
	ChannelDepth ChannelDepth
	ChannelCount int
}

// New builds a Format, validating the family/channelCount invariant from the
// data model: channelCount must match what the family requires.
func New(family Family, depth ChannelDepth, channelCount int) (Format, error) {
	f := Format{Family: family, ChannelDepth: depth, ChannelCount: channelCount}
	if !f.Valid() {
		return Format{}, fmt.Errorf("pixfmt: invalid format %s/%s/%d channels", family, depth, channelCount)
	}
	return f, nil
}

// Valid reports whether the format's channelCount matches its family and its
// family/depth are both in the enumerated range.
func (f Format) Valid() bool {
	if f.Family >= familyCount || f.ChannelDepth >= channelDepthCount {
		return false
	}
	return f.ChannelCount == f.Family.channelCount()
}

// PixelSize returns the number of bytes a single pixel of this format
// occupies: channelCount * channelDepth.Bytes().
func (f Format) PixelSize() int {
	return f.ChannelCount * f.ChannelDepth.Bytes()
}

// ChannelSize returns the number of bytes a single channel of this format
// occupies.
func (f Format) ChannelSize() int {
	return f.ChannelDepth.Bytes()
}

// RowBytes returns the byte pitch of a row of the given pixel width, with no
// padding (row-major, tightly packed per the Bitmap invariant).
func (f Format) RowBytes(width int) int {
	return width * f.PixelSize()
}

// PlaneBytes returns the total byte size of a width x height plane of this
// format.
func (f Format) PlaneBytes(width, height int) int {
	return f.RowBytes(width) * height
}

// HasAlpha reports whether this format's family carries a dedicated alpha
// channel (ARGB, RGBA, BGRA).
func (f Format) HasAlpha() bool {
	return f.Family.hasAlpha()
}

// AlphaIndex returns the channel index of the alpha lane, or -1 if the
// format has none.
func (f Format) AlphaIndex() int {
	return f.Family.alphaIndex()
}

// IsMono reports whether this format's family is Mono. Mono-format tiles
// have no render target and textures only, per the GPU tile invariant.
func (f Format) IsMono() bool {
	return f.Family == Mono
}

// NonAlphaFamily returns the family obtained by stripping f's alpha channel,
// used by discardAlphaChannel / removeAlphaChannel.
func (f Family) NonAlphaFamily() (Family, bool) {
	switch f {
	case ARGB, RGBA:
		return RGB, true
	case BGRA:
		return BGR, true
	default:
		return f, false
	}
}

// WithAlpha returns the family obtained by appending an alpha channel to f,
// used by addAlphaChannel. RGB gains a trailing alpha lane (RGBA); BGR gains
// one too (BGRA). Mono and the already-alpha families have no well-defined
// target and report ok=false.
func (f Family) WithAlpha() (Family, bool) {
	switch f {
	case RGB:
		return RGBA, true
	case BGR:
		return BGRA, true
	default:
		return f, false
	}
}

func (f Format) String() string {
	return fmt.Sprintf("%s%d%s", f.Family, f.ChannelDepth.Bytes()*8, depthSuffix(f.ChannelDepth))
}

func depthSuffix(d ChannelDepth) string {
	switch d {
	case S16, S32:
		return "s"
	case F32:
		return "f"
	default:
		return ""
	}
}

// Well-known formats used pervasively across the runtime (bitmaps, presets,
// the two-hop conversion target).
var (
	Mono8    = Format{Family: Mono, ChannelDepth: U8, ChannelCount: 1}
	Mono16   = Format{Family: Mono, ChannelDepth: U16, ChannelCount: 1}
	RGB8     = Format{Family: RGB, ChannelDepth: U8, ChannelCount: 3}
	RGBA8    = Format{Family: RGBA, ChannelDepth: U8, ChannelCount: 4}
	ARGB8    = Format{Family: ARGB, ChannelDepth: U8, ChannelCount: 4}
	BGR8     = Format{Family: BGR, ChannelDepth: U8, ChannelCount: 3}
	BGRA8    = Format{Family: BGRA, ChannelDepth: U8, ChannelCount: 4}
	RGBA32F  = Format{Family: RGBA, ChannelDepth: F32, ChannelCount: 4}
)

// RGBA32 is the pivot format used by the two-hop conversion fallback
// (from -> RGBA32 -> to) when no direct converter is registered.
var RGBA32 = RGBA32F
