package session

import (
	"github.com/tonefx/tonefx"
	"github.com/tonefx/tonefx/action"
	"github.com/tonefx/tonefx/bitmap"
	"github.com/tonefx/tonefx/canvas"
	"github.com/tonefx/tonefx/filter"
	"github.com/tonefx/tonefx/layer"
	"github.com/tonefx/tonefx/pipeline"
	"github.com/tonefx/tonefx/pixfmt"
)

// ImportImageFromPath decodes path via the session's Pipeline and installs
// the result as the original image, per spec §4.7.
func (s *Session) ImportImageFromPath(path string) error {
	if s.pipeline == nil {
		return ErrPipelineRequired
	}
	data, err := s.pipeline.Import(path)
	if err != nil {
		return tonefx.NewError(tonefx.KindPipelineFailure, err)
	}
	if err := s.importImageData(data); err != nil {
		return err
	}
	s.mu.Lock()
	s.imagePath = path
	s.mu.Unlock()
	return nil
}

// ImportImageFromData installs pixels (tightly packed, in format, w x h) as
// the original image without going through the Pipeline.
func (s *Session) ImportImageFromData(pixels []byte, format pixfmt.Format, width, height int) error {
	return s.importImageData(pipeline.ImageData{
		Format: format,
		Width:  width,
		Height: height,
		Pixels: pixels,
	})
}

func (s *Session) importImageData(data pipeline.ImageData) error {
	device := s.device

	var newOriginal *canvas.Image
	var newAlpha *bitmap.Bitmap

	a := action.NewImport(
		func() error {
			img := canvas.New(data.Format)
			l, err := layer.New("Original", device, data.Format, data.Width, data.Height, data.Pixels)
			if err != nil {
				return err
			}
			if err := img.AppendLayer(l); err != nil {
				return err
			}
			newOriginal = img

			if data.AlphaPlane != nil {
				b := bitmap.New()
				if err := b.Reset(pixfmt.Mono8, data.Width, data.Height, data.AlphaPlane); err != nil {
					return err
				}
				newAlpha = b
			}
			return nil
		},
		func() error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.originalImage = newOriginal
			s.alphaPlane = newAlpha
			s.cachedAlphaPlane = newAlpha != nil
			s.markAllDirtyLocked()
			return nil
		},
	)
	if err := a.Process(); err != nil {
		return err
	}
	if err := a.Commit(); err != nil {
		return err
	}

	preview, err := s.previewCtl.BuildPreview(s.renderDevice(), newOriginal)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.previewImage = preview
	s.mu.Unlock()
	return nil
}

// ExportImage renders the current filter stack and hands the result to the
// session's Pipeline. When fromPreview is true, the source is the preview
// image's bottom (rendered) layer and the preview must currently be at
// full resolution (spec §4.8's export policy: a scaled-down preview always
// exports via the original, so Session.ExportImage rejects a direct
// fromPreview export while scaled down rather than leaving alpha
// re-attachment ambiguous, per the DESIGN.md Open Question decision). When
// fromPreview is false, the source is the original image's top layer.
// forceCPU selects the CPU backend for the render regardless of any
// configured GL preview device; spec §1 notes final output always goes
// through the CPU backend, so callers exporting for real output should
// pass true.
func (s *Session) ExportImage(path string, format pipeline.Format, fromPreview, forceCPU bool) (bool, error) {
	if s.pipeline == nil {
		return false, ErrPipelineRequired
	}

	var src *layer.ImageLayer
	if fromPreview {
		if s.previewCtl.IsScaledDown() {
			return false, ErrExportFromScaled
		}
		s.mu.Lock()
		preview := s.previewImage
		s.mu.Unlock()
		if preview == nil {
			return false, ErrNoPreviewImage
		}
		bottom, ok := preview.BottomLayer()
		if !ok {
			bottom, ok = preview.TopLayer()
		}
		if !ok {
			return false, ErrNoPreviewImage
		}
		src = bottom
	} else {
		s.mu.Lock()
		original := s.originalImage
		s.mu.Unlock()
		if original == nil {
			return false, ErrNoOriginalImage
		}
		top, ok := original.TopLayer()
		if !ok {
			return false, ErrNoOriginalImage
		}
		src = top
	}

	device := s.device
	if !forceCPU {
		device = s.renderDevice()
	}
	renderable := s.Renderable()

	var out pipeline.ImageData
	a := action.NewExport(
		func() error {
			if err := src.UpdateDataForBackend(device); err != nil {
				return err
			}
			dst, err := layer.New("export-dst", device, src.Format(), src.Width(), src.Height(), nil)
			if err != nil {
				return err
			}
			if err := filter.Render(device, dst, src, renderable); err != nil {
				return err
			}
			pixels, err := dst.Retrieve(fullRect(dst.Width(), dst.Height()))
			if err != nil {
				return err
			}
			out = pipeline.ImageData{
				Format: dst.Format(),
				Width:  dst.Width(),
				Height: dst.Height(),
				Pixels: pixels,
			}
			s.mu.Lock()
			if s.cachedAlphaPlane && s.alphaPlane != nil {
				out.AlphaPlane = append([]byte(nil), s.alphaPlane.Buffer()...)
			}
			s.mu.Unlock()
			return nil
		},
		func() error {
			if err := s.pipeline.Export(path, format, out); err != nil {
				return tonefx.NewError(tonefx.KindPipelineFailure, err)
			}
			return nil
		},
	)
	if err := a.Process(); err != nil {
		return false, err
	}
	if err := a.Commit(); err != nil {
		return false, err
	}
	return true, nil
}
