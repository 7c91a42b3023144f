// Package tonefx provides the imaging runtime for a non-destructive,
// tile-based photographic filter engine.
//
// # Overview
//
// tonefx maintains a full-resolution "original" image alongside a
// bounded-size "preview" used for interactive editing. A configurable stack
// of filters (black-and-white mixer, curves, cascaded unsharp mask,
// vignette, split-tone, film grain) is re-rendered through a ping-pong
// protocol across a CPU backend and, when available, a GPU backend.
//
// # Architecture
//
// The module is organized by concern, leaves first:
//
//   - pixfmt: pixel format registry (byte/channel sizes, conversion lookup)
//   - blobpool: pooled byte-blob allocator backing bitmaps and GPU staging
//   - bitmap: CPU-resident pixel plane with sub-rect copy and format transform
//   - gputile: GPU tiled image storage (full-tiled and streamlined variants)
//   - backend/cpu, backend/gl: device-specific image and filter executors
//   - layer: ImageLayer, a logical plane mirrored across backends
//   - canvas: an ordered list of layers sharing one pixel format
//   - filter: Filter, FilterStack, and the concrete photographic filters
//   - preset: named, serializable filter parameter sets
//   - action: one-shot render/import/export/serialize work items
//   - session: the application core tying backends, images, and filters
//     together
//   - preview: preview-image scaling and frame-rate-limited re-rendering
//   - pipeline: the import/export collaborator interface
//
// # Coordinate system
//
// Rect uses top-left-origin, signed integer coordinates, with width growing
// right and height growing down, matching the rest of the gogpu ecosystem.
package tonefx
