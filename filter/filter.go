// Package filter implements the Filter/FilterStack abstraction and the six
// concrete photographic filters from spec §4.6: the black-and-white
// adaptive mixer, curves, cascaded unsharp sharpening, vignette, split
// tone, and film grain. Each filter's process(device,dst,src) kernel math is
// deliberately simple per spec §1 ("concrete filter kernel math... treated
// as opaque"): it is built from the ops package's shared per-pixel
// combinators rather than a production-grade image-processing kernel.
package filter

import (
	"errors"

	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/preset"
)

// Errors returned by filter operations.
var (
	ErrFormatMismatch  = errors.New("filter: source and destination formats differ")
	ErrSizeMismatch    = errors.New("filter: source and destination dimensions differ")
	ErrNoBackendObject = errors.New("filter: source or destination lacks a backend object on device")
	ErrUnknownPreset   = errors.New("filter: preset does not match this filter's name")
)

// Tag enumerates filter identity for preset routing (spec §4.9's "preset
// tag"), distinct from the taxonomy's polymorphic Process/Clone contract:
// a Session looks up a filter's FilterPreset subcollection by Tag, not by
// Go type.
type Tag uint8

const (
	TagOther Tag = iota
	TagBWMixer
	TagCurves
	TagCascadedSharpen
	TagVignette
	TagSplitTone
	TagFilmGrain
)

func (t Tag) String() string {
	switch t {
	case TagBWMixer:
		return "BWAdaptiveMixer"
	case TagCurves:
		return "Curves"
	case TagCascadedSharpen:
		return "CascadedSharpen"
	case TagVignette:
		return "Vignette"
	case TagSplitTone:
		return "SplitTone"
	case TagFilmGrain:
		return "FilmGrain"
	default:
		return "Other"
	}
}

// Filter is the capability trait every concrete filter implements: opaque
// per-pixel processing plus cloning and preset round-tripping. The stack
// holds these values directly (no handle indirection needed in Go, unlike
// the raw-pointer original the redesign note in spec §9 flags).
type Filter interface {
	// Name returns the filter's display/preset-lookup name.
	Name() string

	// Tag returns the enumerated preset-routing identity for this filter.
	Tag() Tag

	// Process renders src into dst on device. Both layers must already
	// share (format, width, height) and carry a backend object on
	// device.
	Process(device backend.Device, dst, src *layer.ImageLayer) (bool, error)

	// Clone returns a deep copy of the filter's parameters, independent
	// of this instance.
	Clone() Filter

	// ToPreset serializes the filter's current parameters into a named
	// FilterPreset.
	ToPreset(presetName string) preset.FilterPreset

	// FromPreset applies p's parameters to this filter. Fails with
	// ErrUnknownPreset if p.FilterName does not match Name().
	FromPreset(p preset.FilterPreset) error
}

// checkCompatible validates the Process precondition shared by every
// concrete filter: matching format/size, and a resident backend object on
// device for both layers.
func checkCompatible(device backend.Device, dst, src *layer.ImageLayer) error {
	if dst.Format() != src.Format() {
		return ErrFormatMismatch
	}
	if dst.Width() != src.Width() || dst.Height() != src.Height() {
		return ErrSizeMismatch
	}
	if !src.ContainsDataForBackend(device.ID()) || !dst.ContainsDataForBackend(device.ID()) {
		return ErrNoBackendObject
	}
	return nil
}

// processBytes is the common plumbing every concrete filter's Process
// method uses: retrieve src's full plane, run fn over the bytes, then
// write the result back into every one of dst's backend objects via a
// throwaway source layer and layer.ImageLayer.Copy. This collapses the
// spec's "CPU path vs GPU path" branching into one code path because, per
// this implementation's backend/gl and gputile packages, the GPU backend
// already round-trips pixel data through plain bytes rather than real
// driver-level compute (the "GL shader source and GPU driver interactions"
// spec §1 places out of scope) — so there is no divergent GPU kernel to
// run separately.
func processBytes(device backend.Device, dst, src *layer.ImageLayer, fn func(dstBytes, srcBytes []byte, w, h int)) (bool, error) {
	if err := checkCompatible(device, dst, src); err != nil {
		return false, err
	}
	w, h := src.Width(), src.Height()
	rect := fullRect(w, h)

	srcBytes, err := src.Retrieve(rect)
	if err != nil {
		return false, err
	}
	dstBytes := make([]byte, len(srcBytes))
	fn(dstBytes, srcBytes, w, h)

	tmp, err := layer.New("", device, dst.Format(), w, h, dstBytes)
	if err != nil {
		return false, err
	}
	if err := dst.Copy(tmp, rect, 0, 0); err != nil {
		return false, err
	}
	return true, nil
}
