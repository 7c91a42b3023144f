// Command tonefxctl is a small command-line harness over the tonefx
// session: import an image, optionally apply a preset collection and a
// fixed demo filter stack, render a preview, and export the result.
//
// File-format codecs are out of scope for this module (spec §1), so this
// command reads and writes headerless raw RGBA8 planes via
// pipeline.RawPipeline rather than a real image format; an embedding
// application supplies its own Pipeline for PNG/JPEG/etc.
package main

import (
	"flag"
	"log"

	"github.com/tonefx/tonefx/filter"
	"github.com/tonefx/tonefx/pipeline"
	"github.com/tonefx/tonefx/pixfmt"
	"github.com/tonefx/tonefx/session"
)

func main() {
	var (
		input    = flag.String("input", "", "source raw RGBA8 image path")
		output   = flag.String("output", "out.raw", "destination raw RGBA8 image path")
		width    = flag.Int("width", 0, "source image width in pixels")
		height   = flag.Int("height", 0, "source image height in pixels")
		presets  = flag.String("presets", "", "optional preset collection text file")
		vignette = flag.Float64("vignette", 0, "vignette strength, 0 disables the filter")
		grain    = flag.Float64("grain", 0, "film grain strength, 0 disables the filter")
	)
	flag.Parse()

	if *input == "" || *width <= 0 || *height <= 0 {
		log.Fatal("tonefxctl: -input, -width, and -height are required")
	}

	pl := pipeline.NewRawPipeline(pixfmt.RGBA8, *width, *height)
	s, err := session.New(pl)
	if err != nil {
		log.Fatalf("session.New: %v", err)
	}

	if err := s.ImportImageFromPath(*input); err != nil {
		log.Fatalf("ImportImageFromPath: %v", err)
	}

	bw := filter.NewBWAdaptiveMixer("bw")
	curve := filter.NewCurves("curves")
	sharpen := filter.NewCascadedSharpen("sharpen")
	vig := filter.NewVignette("vignette")
	split := filter.NewSplitTone("split-tone")
	fg := filter.NewFilmGrain("film-grain")

	for _, f := range []filter.Filter{bw, curve, sharpen, vig, split, fg} {
		if err := s.AddFilter(f); err != nil {
			log.Fatalf("AddFilter(%s): %v", f.Name(), err)
		}
	}
	if err := s.SetMandatoryFilterByTag(filter.TagCurves); err != nil {
		log.Fatalf("SetMandatoryFilterByTag(curves): %v", err)
	}

	if *presets != "" {
		collection, err := session.LoadPresetFromPath(*presets)
		if err != nil {
			log.Fatalf("LoadPresetFromPath: %v", err)
		}
		if err := s.UsePresets(collection); err != nil {
			log.Fatalf("UsePresets: %v", err)
		}
	}

	if *vignette > 0 {
		vig.Strength = *vignette
		if err := s.EnableFilterByTag(filter.TagVignette); err != nil {
			log.Fatalf("EnableFilterByTag(vignette): %v", err)
		}
	}
	if *grain > 0 {
		fg.GrainScale = *grain
		if err := s.EnableFilterByTag(filter.TagFilmGrain); err != nil {
			log.Fatalf("EnableFilterByTag(film-grain): %v", err)
		}
	}

	if err := s.UpdatePreview(true); err != nil {
		log.Fatalf("UpdatePreview: %v", err)
	}

	if _, err := s.ExportImage(*output, pipeline.BMP, false, true); err != nil {
		log.Fatalf("ExportImage: %v", err)
	}

	log.Printf("wrote %s", *output)
}
