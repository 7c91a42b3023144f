// Package session implements Session, the application core from spec §4.7:
// it owns the backend device handles, the original and preview images, the
// filter stack and its per-filter meta-info, the preset library, and the
// bounded worker pool that drives rendering.
//
// Grounded on gogpu-gg's gg.Context (the teacher's top-level façade object
// that owns a device, a scene, and a thread pool, constructed via
// functional options) generalized from a single immediate-mode canvas to
// tonefx's original/preview image pair plus filter stack.
package session

import (
	"sync"

	"github.com/tonefx/tonefx/action"
	"github.com/tonefx/tonefx/backend"
	"github.com/tonefx/tonefx/backend/cpu"
	"github.com/tonefx/tonefx/bitmap"
	"github.com/tonefx/tonefx/canvas"
	"github.com/tonefx/tonefx/filter"
	"github.com/tonefx/tonefx/internal/parallel"
	"github.com/tonefx/tonefx/pipeline"
	"github.com/tonefx/tonefx/preset"
	"github.com/tonefx/tonefx/preview"
)

// defaultMaxThreads is the platform default thread-pool size named in
// spec §4.7.
const defaultMaxThreads = 4

// filterMeta is FilterMetaInfo from the data model: {filterRef,
// filterTypeTag, mandatory, enabled, dirty}. The filter reference itself is
// the Session.meta map key, collapsing the data model's three parallel
// collections (filterStack, filterCollection, filterMetaInfo) into one
// map plus the authoritative filter.Stack ordering — the invariant
// |filterStack| = |filterMetaInfo| = |filterCollection| holds by
// construction rather than needing separate bookkeeping.
type filterMeta struct {
	tag       filter.Tag
	mandatory bool
	enabled   bool
	dirty     bool
}

// Session is the imaging runtime's application core (spec §3/§4.7).
// Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	name string

	device        backend.Device // CPU, always present
	previewDevice backend.Device // GL, nil until configured

	pipeline pipeline.Pipeline

	originalImage *canvas.Image
	previewImage  *canvas.Image

	stack *filter.Stack
	meta  map[filter.Filter]*filterMeta

	presets    *preset.Collection
	previewCtl *preview.Controller

	pool       *parallel.WorkerPool
	maxThreads int

	imagePath   string
	sessionPath string

	alphaPlane       *bitmap.Bitmap
	cachedAlphaPlane bool

	previewOpts []preview.Option

	pendingPreview *action.Base
}

// Option configures a Session at construction.
type Option func(*Session)

// WithName sets the session's display name.
func WithName(name string) Option {
	return func(s *Session) { s.name = name }
}

// WithMaxThreads overrides the default thread-pool size (4).
func WithMaxThreads(n int) Option {
	return func(s *Session) { s.maxThreads = n }
}

// WithGLDevice configures the GPU-accelerated preview backend. Without
// this option, previews render on the CPU backend like final export.
func WithGLDevice(dev backend.Device) Option {
	return func(s *Session) { s.previewDevice = dev }
}

// WithPreviewOptions forwards options to the embedded preview.Controller
// (budget, quality, max-FPS).
func WithPreviewOptions(opts ...preview.Option) Option {
	return func(s *Session) { s.previewOpts = append(s.previewOpts, opts...) }
}

// New constructs a Session. The CPU backend is instantiated unconditionally
// (spec §4.7); the GPU backend is only attached via WithGLDevice.
func New(pl pipeline.Pipeline, opts ...Option) (*Session, error) {
	dev, ok, err := backend.Get(backend.CPU)
	if err != nil {
		return nil, err
	}
	if !ok {
		dev = cpu.Device{}
	}

	s := &Session{
		pipeline:   pl,
		device:     dev,
		stack:      filter.NewStack(),
		meta:       map[filter.Filter]*filterMeta{},
		presets:    preset.NewCollection(),
		maxThreads: defaultMaxThreads,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pool = parallel.New(s.maxThreads)
	s.previewCtl = preview.NewController(s.previewOpts...)
	return s, nil
}

// Name returns the session's display name.
func (s *Session) Name() string { return s.name }

// Device returns the CPU backend device.
func (s *Session) Device() backend.Device { return s.device }

// PreviewDevice returns the configured GPU preview device, or nil if none
// was attached.
func (s *Session) PreviewDevice() backend.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewDevice
}

// renderDevice is the device preview rendering executes on: the GL device
// if attached, otherwise the CPU device (spec §1: "renders previews on a
// GPU backend when available").
func (s *Session) renderDevice() backend.Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.previewDevice != nil {
		return s.previewDevice
	}
	return s.device
}

// OriginalImage returns the full-resolution original image, or nil before
// any import.
func (s *Session) OriginalImage() *canvas.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.originalImage
}

// PreviewImage returns the bounded-size preview image, or nil before any
// import.
func (s *Session) PreviewImage() *canvas.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewImage
}

// PreviewController returns the embedded preview controller.
func (s *Session) PreviewController() *preview.Controller { return s.previewCtl }

// Presets returns the session's active preset library.
func (s *Session) Presets() *preset.Collection { return s.presets }

// ThreadPool returns the session's bounded worker pool.
func (s *Session) ThreadPool() *parallel.WorkerPool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool
}
