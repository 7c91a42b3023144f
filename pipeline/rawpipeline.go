package pipeline

import (
	"os"

	"github.com/tonefx/tonefx/pixfmt"
)

// RawPipeline is a minimal Pipeline backed by bitmap.SaveRawData's
// headerless convention: it can only round-trip images of one
// pre-configured (format, width, height), since raw dumps carry no
// embedded metadata. It exists so cmd/tonefxctl and tests have a working
// Pipeline without pulling in a real image codec, which spec §1 places out
// of scope for this module.
type RawPipeline struct {
	Format pixfmt.Format
	Width  int
	Height int
}

// NewRawPipeline creates a RawPipeline for the given fixed plane shape.
func NewRawPipeline(format pixfmt.Format, width, height int) *RawPipeline {
	return &RawPipeline{Format: format, Width: width, Height: height}
}

// Import reads path as a headerless raw dump of the pipeline's configured
// shape.
func (p *RawPipeline) Import(path string) (ImageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImageData{}, err
	}
	want := p.Format.PlaneBytes(p.Width, p.Height)
	if len(data) < want {
		return ImageData{}, ErrTruncatedSource
	}
	return ImageData{Format: p.Format, Width: p.Width, Height: p.Height, Pixels: data[:want]}, nil
}

// Export writes data.Pixels to path headerlessly; format is accepted for
// interface conformance but not applied (no codec is implemented).
func (p *RawPipeline) Export(path string, format Format, data ImageData) error {
	return os.WriteFile(path, data.Pixels, 0o644)
}

// LoadIOPluginFromPath always fails: RawPipeline has no plugin mechanism.
func (p *RawPipeline) LoadIOPluginFromPath(path string) (Importer, Exporter, error) {
	return nil, nil, ErrPluginsUnsupported
}

// LoadIOImporterFromPath always fails: RawPipeline has no plugin mechanism.
func (p *RawPipeline) LoadIOImporterFromPath(path string) (Importer, error) {
	return nil, ErrPluginsUnsupported
}

// LoadIOExporterFromPath always fails: RawPipeline has no plugin mechanism.
func (p *RawPipeline) LoadIOExporterFromPath(path string) (Exporter, error) {
	return nil, ErrPluginsUnsupported
}
