// Package pipeline declares the out-of-core importer/exporter collaborator
// contract from spec §6: file-format codecs are deliberately out of scope
// for this module (spec §1), so only the session-facing surface is
// specified here. A real Pipeline is supplied by the embedding application;
// tonefx never implements BMP/JPEG/TIFF/PNG/WEBP codecs itself.
package pipeline

import "github.com/tonefx/tonefx/pixfmt"

// Format enumerates the export formats spec §6 names.
type Format uint8

const (
	BMP Format = iota
	JPEG
	TIFF
	PNG
	WEBP
)

func (f Format) String() string {
	switch f {
	case BMP:
		return "bmp"
	case JPEG:
		return "jpeg"
	case TIFF:
		return "tiff"
	case PNG:
		return "png"
	case WEBP:
		return "webp"
	default:
		return "unknown"
	}
}

// ImageData is the decoded result of an Importer call: tightly packed
// pixels in format, plus an optional separately-carried alpha plane when
// the importer stripped alpha from the source file.
type ImageData struct {
	Format     pixfmt.Format
	Width      int
	Height     int
	Pixels     []byte
	AlphaPlane []byte
}

// Importer decodes an encoded image file into ImageData.
type Importer interface {
	Import(path string) (ImageData, error)
}

// Exporter encodes pixels (plus an optional alpha plane) to path in format.
type Exporter interface {
	Export(path string, format Format, data ImageData) error
}

// Pipeline is the combined import/export/plugin-discovery port a Session
// is constructed with. Plugin discovery is out of core per spec §6; the
// three LoadXxxFromPath methods are provided for API completeness and may
// return ErrPluginsUnsupported from an embedding application that has no
// plugin mechanism.
type Pipeline interface {
	Importer
	Exporter

	LoadIOPluginFromPath(path string) (Importer, Exporter, error)
	LoadIOImporterFromPath(path string) (Importer, error)
	LoadIOExporterFromPath(path string) (Exporter, error)
}
